// SPDX-License-Identifier: EPL-2.0

// Package config loads batch conversion jobs from YAML:
//
//	log_level: info
//	workers: 2
//	defaults:
//	  sample_rate: 44100
//	  filter: volume=0.9
//	jobs:
//	  - input: downloads/track01.mp3
//	    output: library/track01.flac
//	    cover_art: downloads/cover.jpg
//	    metadata:
//	      title: Intro
//	      artist: [Alice, Bob]
//	      track_number: 1
//
// Tags keep their order and are written verbatim. List values are joined
// with ", ".
package config
