// SPDX-License-Identifier: EPL-2.0

package filter

import (
	"fmt"
	"math/bits"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
)

// minus3dB is the gain of a channel folded into two others.
const minus3dB = 0.70710677

// remixer converts frames between channel layouts with a mixing matrix built
// from the speaker positions of both layouts.
//
// Positions present in both layouts are copied. Down to mono every channel is
// averaged. Otherwise a missing position is folded into its neighbours: the
// centre into front left and right at -3dB, back and side channels into each
// other or into the front pair at -3dB, mono into the front pair. LFE is
// dropped when the output has none. Output positions nothing maps to are silent.
type remixer struct {
	from, to audio.ChannelLayout
	inCh     int
	outCh    int
	// matrix[o*inCh+i] is the gain of input channel i in output channel o.
	matrix []float32
}

func newRemixer(from, to audio.ChannelLayout) *remixer {
	m := &remixer{
		from:  from,
		to:    to,
		inCh:  from.Channels(),
		outCh: to.Channels(),
	}
	if m.outCh > 1 {
		m.matrix = mixMatrix(from, to)
	}
	return m
}

// channelIndex returns the interleaved index of position pos in l, or -1.
func channelIndex(l, pos audio.ChannelLayout) int {
	if l&pos == 0 {
		return -1
	}
	return bits.OnesCount64(uint64(l & (pos - 1)))
}

// folds lists where a position goes when the output lacks it, tried in order.
// Each target is a set of positions that all receive the given gain.
var folds = map[audio.ChannelLayout][]struct {
	to   audio.ChannelLayout
	gain float32
}{
	audio.ChannelFrontCenter: {
		{audio.ChannelFrontLeft | audio.ChannelFrontRight, minus3dB},
	},
	audio.ChannelFrontLeft: {
		{audio.ChannelFrontCenter, minus3dB},
	},
	audio.ChannelFrontRight: {
		{audio.ChannelFrontCenter, minus3dB},
	},
	audio.ChannelBackLeft: {
		{audio.ChannelSideLeft, 1},
		{audio.ChannelBackCenter, minus3dB},
		{audio.ChannelFrontLeft, minus3dB},
	},
	audio.ChannelBackRight: {
		{audio.ChannelSideRight, 1},
		{audio.ChannelBackCenter, minus3dB},
		{audio.ChannelFrontRight, minus3dB},
	},
	audio.ChannelSideLeft: {
		{audio.ChannelBackLeft, 1},
		{audio.ChannelFrontLeft, minus3dB},
	},
	audio.ChannelSideRight: {
		{audio.ChannelBackRight, 1},
		{audio.ChannelFrontRight, minus3dB},
	},
	audio.ChannelBackCenter: {
		{audio.ChannelBackLeft | audio.ChannelBackRight, minus3dB},
		{audio.ChannelSideLeft | audio.ChannelSideRight, minus3dB},
		{audio.ChannelFrontLeft | audio.ChannelFrontRight, minus3dB * minus3dB},
	},
}

func mixMatrix(from, to audio.ChannelLayout) []float32 {
	inCh, outCh := from.Channels(), to.Channels()
	matrix := make([]float32, outCh*inCh)

	// mono feeds the front pair at full scale
	if from == audio.LayoutMono && to&audio.ChannelFrontCenter == 0 {
		for _, pos := range []audio.ChannelLayout{audio.ChannelFrontLeft, audio.ChannelFrontRight} {
			if o := channelIndex(to, pos); o >= 0 {
				matrix[o*inCh] = 1
			}
		}
		return matrix
	}

	for rest := uint64(from); rest != 0; rest &= rest - 1 {
		pos := audio.ChannelLayout(rest & -rest)
		i := channelIndex(from, pos)

		if o := channelIndex(to, pos); o >= 0 {
			matrix[o*inCh+i] = 1
			continue
		}
		for _, fold := range folds[pos] {
			if to&fold.to != fold.to {
				continue
			}
			for t := uint64(fold.to); t != 0; t &= t - 1 {
				o := channelIndex(to, audio.ChannelLayout(t&-t))
				matrix[o*inCh+i] += fold.gain
			}
			break
		}
	}
	return matrix
}

func (m *remixer) String() string {
	return fmt.Sprintf("remix(%s->%s)", m.from, m.to)
}

func (m *remixer) flush() []*audio.Frame { return nil }

func (m *remixer) process(f *audio.Frame) []*audio.Frame {
	if m.from == m.to {
		return []*audio.Frame{f}
	}

	src := f.Samples()
	frames := len(src) / m.inCh
	dst := make([]float32, frames*m.outCh)

	if m.outCh == 1 {
		downmixMono(dst, src, m.inCh, frames)
	} else {
		for i := range frames {
			in := src[i*m.inCh : (i+1)*m.inCh]
			out := dst[i*m.outCh : (i+1)*m.outCh]
			for o := range out {
				row := m.matrix[o*m.inCh : (o+1)*m.inCh]
				var sum float32
				for c, g := range row {
					sum += g * in[c]
				}
				out[o] = sum
			}
		}
	}

	return []*audio.Frame{{
		PTS:      f.PTS,
		TimeBase: f.TimeBase,
		Format:   f.Format,
		Layout:   m.to,
		Buf: &goaudio.Float32Buffer{
			Format:         &goaudio.Format{NumChannels: m.outCh, SampleRate: f.SampleRate()},
			Data:           dst,
			SourceBitDepth: f.Buf.SourceBitDepth,
		},
	}}
}

func downmixMono(dst, src []float32, channels, frames int) {
	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1 // f * 2
			dst[f] = (src[idx] + src[idx+1]) * 0.5
		}
	case 4: // Quad
		for f := range frames {
			idx := f << 2 // f * 4
			sum := src[idx] + src[idx+1] + src[idx+2] + src[idx+3]
			dst[f] = sum * 0.25
		}
	default: // Generic path
		for f := range frames {
			sum := float32(0)
			baseIdx := f * channels
			for c := range channels {
				sum += src[baseIdx+c]
			}
			dst[f] = sum * invChannels
		}
	}
}
