// SPDX-License-Identifier: EPL-2.0

package filter

import (
	"fmt"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/utils"
)

// resampler converts the sample rate of pushed frames using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// Output sample k sits at source position k*src/dst. Interpolating it needs
// two source frames past that position, so up to two frames are held back
// until more input arrives or the node is flushed. Past the last frame the
// edge frame is repeated. A stream of n frames yields ceil(n*dst/src) frames.
type resampler struct {
	channels int
	srcRate  int64
	dstRate  int64

	// history of interleaved input frames, buf[0] is frame number base
	buf      []float32
	base     int64
	received int64
	produced int64

	started  bool
	startPTS int64
	format   audio.SampleFormat
	layout   audio.ChannelLayout

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func newResampler(srcRate, dstRate int, layout audio.ChannelLayout) *resampler {
	channels := layout.Channels()

	// One-pole low-pass when downsampling
	useFilter := srcRate > dstRate
	var filterAlpha float32
	if useFilter {
		filterAlpha = 0.5
	}

	return &resampler{
		channels:    channels,
		srcRate:     int64(srcRate),
		dstRate:     int64(dstRate),
		layout:      layout,
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}
}

func (r *resampler) String() string {
	return fmt.Sprintf("aresample(%d->%d)", r.srcRate, r.dstRate)
}

func (r *resampler) process(f *audio.Frame) []*audio.Frame {
	n := f.NumSamples()
	if n == 0 {
		return nil
	}

	if !r.started {
		r.started = true
		r.format = f.Format
		r.startPTS = audio.NoPTS
		if f.PTS != audio.NoPTS {
			r.startPTS = audio.Rescale(f.PTS, f.TimeBase, audio.SampleTimeBase(int(r.dstRate)))
		}
		if r.useFilter {
			// Initialize filter state with first sample to avoid warm-up transients
			copy(r.filterState, f.Samples()[:r.channels])
		}
	}

	start := len(r.buf)
	r.buf = append(r.buf, f.Samples()...)
	if r.useFilter {
		in := r.buf[start:]
		for i := 0; i < len(in); i += r.channels {
			for c := range r.channels {
				// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
				in[i+c] = r.filterAlpha*in[i+c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = in[i+c]
			}
		}
	}
	r.received += int64(n)

	return r.produce(false)
}

func (r *resampler) flush() []*audio.Frame {
	return r.produce(true)
}

// at returns channel c of source frame idx, repeating the edge frames.
func (r *resampler) at(idx int64, c int) float32 {
	if idx < 0 {
		idx = 0
	}
	if idx >= r.received {
		idx = r.received - 1
	}
	return r.buf[int(idx-r.base)*r.channels+c]
}

func (r *resampler) produce(final bool) []*audio.Frame {
	if r.received == 0 {
		return nil
	}

	limit := (r.received*r.dstRate + r.srcRate - 1) / r.srcRate
	first := r.produced
	var out []float32

	for {
		pos := r.produced * r.srcRate
		i := pos / r.dstRate
		if final {
			if r.produced >= limit {
				break
			}
		} else if i+2 >= r.received {
			break
		}

		alpha := float32(pos%r.dstRate) / float32(r.dstRate)
		for c := range r.channels {
			out = append(out, utils.CubicInterpolate(
				r.at(i-1, c), r.at(i, c), r.at(i+1, c), r.at(i+2, c), alpha))
		}
		r.produced++
	}

	// keep the frame before the next interpolation point
	keepFrom := r.produced*r.srcRate/r.dstRate - 1
	if drop := keepFrom - r.base; drop > 0 {
		drop = min(drop, int64(len(r.buf)/r.channels))
		rest := copy(r.buf, r.buf[int(drop)*r.channels:])
		r.buf = r.buf[:rest]
		r.base += drop
	}

	if len(out) == 0 {
		return nil
	}

	pts := audio.NoPTS
	if r.startPTS != audio.NoPTS {
		pts = r.startPTS + first
	}
	return []*audio.Frame{{
		PTS:      pts,
		TimeBase: audio.SampleTimeBase(int(r.dstRate)),
		Format:   r.format,
		Layout:   r.layout,
		Buf: &goaudio.Float32Buffer{
			Format: &goaudio.Format{NumChannels: r.channels, SampleRate: int(r.dstRate)},
			Data:   out,
		},
	}}
}
