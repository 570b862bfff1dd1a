// SPDX-License-Identifier: EPL-2.0

package container

import (
	"sync"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/aiff"
	"github.com/ik5/audpipe/formats/flac"
	"github.com/ik5/audpipe/formats/mp3"
	"github.com/ik5/audpipe/formats/picture"
	"github.com/ik5/audpipe/formats/vorbis"
	"github.com/ik5/audpipe/formats/wav"
)

var (
	defaultRegistry *audio.Registry
	initOnce        sync.Once
)

// Init registers every built-in format once and returns the shared registry.
// It is safe to call from any goroutine.
//
// MP3 is probed last: its frame sync check is the weakest magic.
func Init() *audio.Registry {
	initOnce.Do(func() {
		reg := audio.NewRegistry()
		wav.Register(reg)
		aiff.Register(reg)
		flac.Register(reg)
		vorbis.Register(reg)
		picture.Register(reg)
		mp3.Register(reg)
		defaultRegistry = reg
	})
	return defaultRegistry
}
