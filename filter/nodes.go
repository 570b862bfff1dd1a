// SPDX-License-Identifier: EPL-2.0

package filter

import (
	"fmt"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/utils"
)

// node is one filter in the chain. process may hold samples back; flush
// returns whatever is still held once the input has ended.
type node interface {
	process(f *audio.Frame) []*audio.Frame
	flush() []*audio.Frame
	String() string
}

type passthrough struct{}

func (passthrough) process(f *audio.Frame) []*audio.Frame { return []*audio.Frame{f} }
func (passthrough) flush() []*audio.Frame                 { return nil }
func (passthrough) String() string                        { return "anull" }

type volume struct {
	gain float32
}

func (v volume) String() string { return fmt.Sprintf("volume(%g)", v.gain) }
func (volume) flush() []*audio.Frame {
	return nil
}

func (v volume) process(f *audio.Frame) []*audio.Frame {
	out := f.Clone()
	for i := range out.Buf.Data {
		out.Buf.Data[i] *= v.gain
	}
	return []*audio.Frame{out}
}

// quantizer tags frames with the sink sample format and rounds the samples to
// what that format can hold.
type quantizer struct {
	format audio.SampleFormat
}

func (q quantizer) String() string        { return fmt.Sprintf("aformat(%s)", q.format) }
func (quantizer) flush() []*audio.Frame { return nil }

func (q quantizer) process(f *audio.Frame) []*audio.Frame {
	out := f.Clone()
	out.Format = q.format
	out.Buf.SourceBitDepth = q.format.BitDepth()

	data := out.Buf.Data
	switch q.format {
	case audio.SampleFormatF32:
		for i, s := range data {
			data[i] = utils.Clamp(s)
		}
	case audio.SampleFormatU8:
		for i, s := range data {
			data[i] = utils.Uint8ToFloat32(utils.Float32ToUint8(s))
		}
	default:
		bits := q.format.BitDepth()
		for i, s := range data {
			data[i] = utils.IntToFloat32(utils.Float32ToInt(s, bits), bits)
		}
	}
	return []*audio.Frame{out}
}

// framer regroups samples into frames of exactly size samples per channel.
// The last frame of the stream may be shorter.
type framer struct {
	size     int
	fifo     []float32
	fifoPTS  int64
	template *audio.Frame
}

func (fr *framer) String() string { return fmt.Sprintf("asetnsamples(%d)", fr.size) }

func (fr *framer) process(f *audio.Frame) []*audio.Frame {
	if f.NumSamples() == 0 {
		return nil
	}
	if fr.template == nil || len(fr.fifo) == 0 {
		fr.fifoPTS = f.PTS
	}
	fr.template = f

	fr.fifo = append(fr.fifo, f.Samples()...)

	var out []*audio.Frame
	for len(fr.fifo)/f.Channels() >= fr.size {
		out = append(out, fr.take(fr.size))
	}
	return out
}

func (fr *framer) flush() []*audio.Frame {
	if fr.template == nil || len(fr.fifo) == 0 {
		return nil
	}
	return []*audio.Frame{fr.take(len(fr.fifo) / fr.template.Channels())}
}

func (fr *framer) take(n int) *audio.Frame {
	t := fr.template
	ch := t.Channels()

	data := make([]float32, n*ch)
	copy(data, fr.fifo)
	rest := copy(fr.fifo, fr.fifo[n*ch:])
	fr.fifo = fr.fifo[:rest]

	pts := fr.fifoPTS
	if pts != audio.NoPTS {
		fr.fifoPTS += int64(n)
	}

	return &audio.Frame{
		PTS:      pts,
		TimeBase: t.TimeBase,
		Format:   t.Format,
		Layout:   t.Layout,
		Buf: &goaudio.Float32Buffer{
			Format:         &goaudio.Format{NumChannels: ch, SampleRate: t.SampleRate()},
			Data:           data,
			SourceBitDepth: t.Buf.SourceBitDepth,
		},
	}
}
