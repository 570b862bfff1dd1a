// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides an Ogg Vorbis demuxer.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
// The library only exposes decoded audio, so packets carry pcm_f32le samples,
// PacketSamples per channel, timed in 1/sample rate ticks.
//
// Vorbis comments become container tags. A key that appears more than once
// has its values joined with ", ":
//
//	ARTIST=Alice
//	ARTIST=Bob   ->   ARTIST: "Alice, Bob"
//
// The nominal bit rate from the identification header is reported as the
// stream bit rate, which is what best stream selection compares.
//
// Encoding is not supported.
package vorbis
