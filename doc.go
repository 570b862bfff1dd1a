// SPDX-License-Identifier: EPL-2.0

// Package audpipe converts audio between container formats in process.
//
// The work is done by a pipeline of five stages:
//
//	container.Reader  probes the input and hands out packets
//	codec.Decoder     turns packets into frames of float32 samples
//	filter.Graph      resamples, remixes and requantizes the frames
//	codec.Encoder     packs frames into packets for the output codec
//	container.Writer  writes the header, the packets and the trailer
//
// The pipeline package wires them together. This package has shortcuts
// for the common cases:
//
//	stats, err := audpipe.TranscodeFile(ctx, "in.mp3", "out.flac", pipeline.Options{
//	    SampleRate: 44100,
//	    Metadata:   md,
//	    CoverArt:   &audio.Attachment{Data: cover, Ext: "jpeg"},
//	})
//
// # Supported Formats
//
// Input:
//   - WAV (PCM 8/16/24/32-bit, 32-bit float) via formats/wav
//   - AIFF (PCM 16/24/32-bit) via formats/aiff
//   - FLAC via formats/flac
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// Output:
//   - WAV (PCM 16/24/32-bit) with RIFF INFO tags
//   - AIFF (PCM 16/24/32-bit)
//   - FLAC (16/24-bit) with Vorbis comments and cover art
//
// Images (PNG, JPEG, GIF) are recognized as inputs without audio and are
// rejected with audio.ErrNoAudioStream.
//
// # Errors
//
// Every failure wraps one of the error kinds in the audio package, such as
// audio.ErrUnreadableContainer or audio.ErrUnwritableDestination, inside a
// *pipeline.Error naming the stage that failed.
package audpipe
