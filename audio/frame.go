// SPDX-License-Identifier: EPL-2.0

package audio

import (
	goaudio "github.com/go-audio/audio"
)

// Frame carries decoded samples between the decoder, the filter and the encoder.
// Samples are interleaved float32 values in [-1,1]; Format records the precision
// they are meant to be stored with.
type Frame struct {
	PTS      int64
	TimeBase Rational
	Format   SampleFormat
	Layout   ChannelLayout
	Buf      *goaudio.Float32Buffer
}

// NewFrame allocates a frame for n samples per channel.
func NewFrame(format SampleFormat, layout ChannelLayout, rate, n int) *Frame {
	return &Frame{
		PTS:      NoPTS,
		TimeBase: SampleTimeBase(rate),
		Format:   format,
		Layout:   layout,
		Buf: &goaudio.Float32Buffer{
			Format: &goaudio.Format{NumChannels: layout.Channels(), SampleRate: rate},
			Data:   make([]float32, n*layout.Channels()),
		},
	}
}

// NumSamples is the number of samples per channel.
func (f *Frame) NumSamples() int {
	if f == nil || f.Buf == nil {
		return 0
	}
	return f.Buf.NumFrames()
}

func (f *Frame) SampleRate() int {
	if f == nil || f.Buf == nil || f.Buf.Format == nil {
		return 0
	}
	return f.Buf.Format.SampleRate
}

func (f *Frame) Channels() int { return f.Layout.Channels() }

// Samples returns the interleaved sample slice.
func (f *Frame) Samples() []float32 {
	if f == nil || f.Buf == nil {
		return nil
	}
	return f.Buf.Data
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Buf = &goaudio.Float32Buffer{
		Format:         &goaudio.Format{NumChannels: f.Buf.Format.NumChannels, SampleRate: f.Buf.Format.SampleRate},
		Data:           append([]float32(nil), f.Buf.Data...),
		SourceBitDepth: f.Buf.SourceBitDepth,
	}
	return &c
}
