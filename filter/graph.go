// SPDX-License-Identifier: EPL-2.0

package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
)

// SourceParams describe the frames pushed into a graph.
type SourceParams struct {
	TimeBase   audio.Rational
	SampleRate int
	Format     audio.SampleFormat
	Layout     audio.ChannelLayout
}

// SinkParams describe the frames pulled out of a graph. FrameSize > 0
// makes every frame but the last exactly that long.
type SinkParams struct {
	SampleRate int
	Format     audio.SampleFormat
	Layout     audio.ChannelLayout
	FrameSize  int
}

// Graph is a linear filter chain: the user filters, then the
// conversions needed to reach the sink parameters.
type Graph struct {
	src   SourceParams
	sink  SinkParams
	nodes []node

	out     []*audio.Frame
	flushed bool

	pushed int64
	pulled int64
	log    zerolog.Logger
}

type Option func(*Graph)

func WithLogger(l zerolog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

// NewGraph builds a graph from a spec such as "anull" or "volume=0.8,aresample=22050".
func NewGraph(spec string, src SourceParams, sink SinkParams, opts ...Option) (*Graph, error) {
	if src.SampleRate <= 0 || src.Layout.Channels() == 0 {
		return nil, fmt.Errorf("%w: source %dHz %s", audio.ErrFilterConfigInvalid, src.SampleRate, src.Layout)
	}
	if sink.SampleRate <= 0 || sink.Layout.Channels() == 0 || sink.FrameSize < 0 {
		return nil, fmt.Errorf("%w: sink %dHz %s frame size %d",
			audio.ErrFilterConfigInvalid, sink.SampleRate, sink.Layout, sink.FrameSize)
	}
	if sink.Format.BitDepth() == 0 {
		return nil, fmt.Errorf("%w: sink sample format %s", audio.ErrUnsupportedFormatConversion, sink.Format)
	}
	if !src.TimeBase.IsValid() {
		src.TimeBase = audio.SampleTimeBase(src.SampleRate)
	}

	g := &Graph{src: src, sink: sink, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}

	steps, err := parseSpec(spec)
	if err != nil {
		return nil, err
	}

	rate := src.SampleRate
	for _, s := range steps {
		switch s.name {
		case "anull":
			g.nodes = append(g.nodes, passthrough{})
		case "volume":
			gain, err := parseGain(s.arg)
			if err != nil {
				return nil, fmt.Errorf("%w: volume=%q: %w", audio.ErrFilterConfigInvalid, s.arg, err)
			}
			g.nodes = append(g.nodes, volume{gain: gain})
		case "aresample":
			to, err := strconv.Atoi(s.arg)
			if err != nil || to <= 0 {
				return nil, fmt.Errorf("%w: aresample=%q", audio.ErrFilterConfigInvalid, s.arg)
			}
			if to != rate {
				g.nodes = append(g.nodes, newResampler(rate, to, src.Layout))
				rate = to
			}
		default:
			return nil, fmt.Errorf("%w: unknown filter %q", audio.ErrFilterConfigInvalid, s.name)
		}
	}

	if rate != sink.SampleRate {
		g.nodes = append(g.nodes, newResampler(rate, sink.SampleRate, src.Layout))
	}
	if src.Layout != sink.Layout {
		g.nodes = append(g.nodes, newRemixer(src.Layout, sink.Layout))
	}
	g.nodes = append(g.nodes, quantizer{format: sink.Format})
	if sink.FrameSize > 0 {
		g.nodes = append(g.nodes, &framer{size: sink.FrameSize})
	}

	g.log.Debug().Str("graph", g.String()).Msg("filter graph configured")

	return g, nil
}

// Push feeds one decoded frame into the graph.
func (g *Graph) Push(f *audio.Frame) error {
	if g.flushed {
		return fmt.Errorf("%w: frame pushed after flush", audio.ErrFilterConfigInvalid)
	}
	if f == nil || f.NumSamples() == 0 {
		return nil
	}
	if f.Layout != g.src.Layout || f.SampleRate() != g.src.SampleRate {
		return fmt.Errorf("%w: frame is %dHz %s, graph source is %dHz %s",
			audio.ErrFilterConfigInvalid, f.SampleRate(), f.Layout, g.src.SampleRate, g.src.Layout)
	}

	g.pushed += int64(f.NumSamples())
	g.out = append(g.out, g.run(0, []*audio.Frame{f})...)
	return nil
}

// Flush signals the end of input and releases every sample still buffered.
func (g *Graph) Flush() error {
	if g.flushed {
		return fmt.Errorf("%w: graph flushed twice", audio.ErrFilterConfigInvalid)
	}
	g.flushed = true

	var carry []*audio.Frame
	for _, n := range g.nodes {
		var next []*audio.Frame
		for _, f := range carry {
			next = append(next, n.process(f)...)
		}
		carry = append(next, n.flush()...)
	}
	g.out = append(g.out, carry...)

	g.log.Debug().Int64("pushed", g.pushed).Int64("pulled", g.pulled).Msg("filter graph flushed")
	return nil
}

// Pull returns the next filtered frame, or false when none is ready.
func (g *Graph) Pull() (*audio.Frame, bool) {
	if len(g.out) == 0 {
		return nil, false
	}
	f := g.out[0]
	g.out[0] = nil
	g.out = g.out[1:]
	g.pulled += int64(f.NumSamples())
	return f, true
}

// Sink returns the sink parameters.
func (g *Graph) Sink() SinkParams { return g.sink }

// String describes the chain, for logs.
func (g *Graph) String() string {
	parts := []string{fmt.Sprintf("abuffer(%dHz %s %s)", g.src.SampleRate, g.src.Format, g.src.Layout)}
	for _, n := range g.nodes {
		parts = append(parts, n.String())
	}
	sink := fmt.Sprintf("abuffersink(%dHz %s %s", g.sink.SampleRate, g.sink.Format, g.sink.Layout)
	if g.sink.FrameSize > 0 {
		sink += fmt.Sprintf(" frame_size=%d", g.sink.FrameSize)
	}
	parts = append(parts, sink+")")
	return strings.Join(parts, " -> ")
}

func (g *Graph) run(from int, frames []*audio.Frame) []*audio.Frame {
	for _, n := range g.nodes[from:] {
		var next []*audio.Frame
		for _, f := range frames {
			next = append(next, n.process(f)...)
		}
		frames = next
		if len(frames) == 0 {
			return nil
		}
	}
	return frames
}
