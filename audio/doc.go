// SPDX-License-Identifier: EPL-2.0

// Package audio holds the data model shared by every pipeline stage.
//
// # Timestamps
//
// Every timestamp travels with the time base it is expressed in. A
// Rational of 1/48000 means one tick per sample at 48 kHz. Moving a
// timestamp between time bases always goes through Rescale, which rounds
// to the nearest tick (halves away from zero):
//
//	pts := audio.Rescale(48000, audio.SampleTimeBase(48000), audio.SampleTimeBase(44100))
//	// pts == 44100
//
// # Packets and Frames
//
// A Packet is an opaque payload taken from, or destined to, a container.
// Its CodecID says how to interpret the bytes.
//
// A Frame is decoded audio. Samples are interleaved float32 values in the
// range [-1.0, 1.0] held in a go-audio Float32Buffer:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// The Frame's SampleFormat records the precision the samples will be
// quantized to when they are packed again.
//
// # Formats
//
// Container support is pluggable. An InputFormat probes magic bytes and
// opens a Demuxer, an OutputFormat creates a Muxer and advertises the
// CodecInfo its encoder accepts. Both are kept in a Registry:
//
//	reg := audio.NewRegistry()
//	reg.RegisterInput(wav.InputFormat)
//	reg.RegisterOutput(wav.OutputFormat)
//	f, ok := reg.Output("flac")
//
// # Error Handling
//
// Failures wrap one of the kind sentinels (ErrNoAudioStream,
// ErrWriterMisuse, ...), so callers test them with errors.Is:
//
//	if errors.Is(err, audio.ErrNoAudioStream) {
//	    // input had no audio
//	}
package audio
