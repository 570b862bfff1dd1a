// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
	"github.com/ik5/audpipe/container"
	"github.com/ik5/audpipe/filter"
)

// State is the drain phase a pipeline is in.
type State int

const (
	StateStreaming State = iota
	StateDecoderDraining
	StateFilterDraining
	StateEncoderDraining
	StateFinalized
	StateFailed
)

var stateNames = [...]string{"streaming", "decoder draining", "filter draining", "encoder draining", "finalized", "failed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats counts what went through the stages.
type Stats struct {
	PacketsRead    int64
	FramesDecoded  int64
	FramesFiltered int64
	PacketsWritten int64
	// SamplesIn and SamplesOut are per channel, at the input and output rates.
	SamplesIn  int64
	SamplesOut int64
}

// Pipeline converts the best audio stream of one input into one output file.
type Pipeline struct {
	reader  *container.Reader
	decoder *codec.Decoder
	graph   *filter.Graph
	encoder *codec.Encoder
	writer  *container.Writer

	srcIndex int
	outIndex int
	inTB     audio.Rational
	outTB    audio.Rational

	state   State
	running bool
	closed  bool
	stats   Stats
	log     zerolog.Logger
}

// New opens in, sets up every stage and writes the output header. The
// output file is created last, so it does not exist when an earlier stage
// cannot be set up.
func New(in container.Input, output string, opts Options) (*Pipeline, error) {
	log := opts.logger().With().Str("component", "pipeline").Str("output", output).Logger()
	copts := opts.containerOptions(log)

	p := &Pipeline{srcIndex: NoStream, log: log}
	if err := p.open(in, output, opts, copts); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) open(in container.Input, output string, opts Options, copts []container.Option) error {
	var err error

	p.reader, err = container.Open(in, copts...)
	if err != nil {
		return &Error{Stage: StageOpen, Stream: NoStream, Err: err}
	}
	src, err := p.reader.BestAudioStream()
	if err != nil {
		return &Error{Stage: StageOpen, Stream: NoStream, Err: err}
	}
	p.srcIndex = src.Index

	decOpts := []codec.DecoderOption{codec.WithDecoderLogger(p.log)}
	if opts.FrameSamples > 0 {
		decOpts = append(decOpts, codec.WithFrameSamples(opts.FrameSamples))
	}
	p.decoder, err = codec.NewDecoder(src, decOpts...)
	if err != nil {
		return &Error{Stage: StageDecode, Stream: p.srcIndex, Err: err}
	}
	p.inTB = p.decoder.TimeBase()

	outFormat, err := container.LookupOutput(output, opts.Format, copts...)
	if err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}

	desc, err := codec.Configure(outFormat.Codec, src, codec.Overrides{
		SampleRate:   opts.SampleRate,
		SampleFormat: opts.SampleFormat,
	})
	if err != nil {
		return &Error{Stage: StageEncode, Stream: p.outIndex, Err: err}
	}
	p.encoder, err = codec.NewEncoder(outFormat.Codec, desc, codec.WithEncoderLogger(p.log))
	if err != nil {
		return &Error{Stage: StageEncode, Stream: p.outIndex, Err: err}
	}

	p.graph, err = filter.NewGraph(opts.Filter,
		filter.SourceParams{
			TimeBase:   p.inTB,
			SampleRate: src.SampleRate,
			Format:     p.decoder.SampleFormat(),
			Layout:     src.Layout,
		},
		filter.SinkParams{
			SampleRate: desc.SampleRate,
			Format:     desc.SampleFormat,
			Layout:     desc.Layout,
			FrameSize:  p.encoder.FrameSize(),
		},
		filter.WithLogger(p.log))
	if err != nil {
		return &Error{Stage: StageFilter, Stream: p.srcIndex, Err: err}
	}

	p.writer, err = container.Create(output, outFormat.Name, copts...)
	if err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}
	p.outIndex, err = p.writer.AddStream(desc)
	if err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}
	if err := p.writer.SetMetadata(p.metadata(opts)); err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}
	if opts.CoverArt != nil {
		err := p.writer.AttachPicture(opts.CoverArt)
		switch {
		case errors.Is(err, audio.ErrAttachmentUnsupported):
			p.log.Warn().Err(err).Msg("cover art skipped")
		case err != nil:
			return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
		}
	}
	if err := p.writer.WriteHeader(); err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}
	p.outTB = p.writer.Stream().TimeBase

	p.log.Debug().
		Str("input", p.reader.Format()).
		Str("source", src.String()).
		Str("sink", desc.String()).
		Str("graph", p.graph.String()).
		Msg("pipeline ready")

	return nil
}

func (p *Pipeline) metadata(opts Options) *audio.Metadata {
	if opts.Metadata.Len() > 0 || !opts.CopyInputMetadata {
		return opts.Metadata
	}
	return p.reader.Metadata()
}

// State returns the current drain phase.
func (p *Pipeline) State() State { return p.state }

// Stats returns the counters collected so far.
func (p *Pipeline) Stats() Stats { return p.stats }

// Input is the stream being converted.
func (p *Pipeline) Input() audio.StreamDescriptor { return p.decoder.Stream() }

// Output is the stream written to the output container.
func (p *Pipeline) Output() audio.StreamDescriptor { return p.writer.Stream() }

// Run converts the whole input and finalizes the output. A pipeline runs
// once; it still has to be closed afterwards.
//
// ctx is checked between input packets. A cancelled run leaves a truncated
// output behind.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.running || p.closed {
		return ErrPipelineDone
	}
	p.running = true
	start := time.Now()

	if err := p.run(ctx); err != nil {
		p.state = StateFailed
		p.log.Error().Err(err).Msg("conversion failed")
		return err
	}

	p.stats.SamplesIn = p.decoder.Decoded()
	p.stats.SamplesOut = p.encoder.Encoded()
	p.log.Info().
		Int64("packets_read", p.stats.PacketsRead).
		Int64("packets_written", p.stats.PacketsWritten).
		Int64("samples_in", p.stats.SamplesIn).
		Int64("samples_out", p.stats.SamplesOut).
		Dur("took", time.Since(start)).
		Msg("conversion finished")
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return &Error{Stage: StageDemux, Stream: p.srcIndex, Err: err}
		}

		pkt, err := p.reader.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &Error{Stage: StageDemux, Stream: p.srcIndex, Err: err}
		}
		p.stats.PacketsRead++
		if pkt.StreamIndex != p.srcIndex {
			continue
		}

		if pkt.TimeBase.IsValid() {
			pkt.RescaleTS(p.inTB)
		}
		if err := p.decoder.SendPacket(pkt); err != nil {
			return &Error{Stage: StageDecode, Stream: p.srcIndex, Err: err}
		}
		if err := p.drainDecoder(); err != nil {
			return err
		}
	}

	p.setState(StateDecoderDraining)
	if err := p.decoder.SendEOF(); err != nil {
		return &Error{Stage: StageDecode, Stream: p.srcIndex, Err: err}
	}
	if err := p.drainDecoder(); err != nil {
		return err
	}

	p.setState(StateFilterDraining)
	if err := p.graph.Flush(); err != nil {
		return &Error{Stage: StageFilter, Stream: p.srcIndex, Err: err}
	}
	if err := p.drainFilter(); err != nil {
		return err
	}

	p.setState(StateEncoderDraining)
	if err := p.encoder.SendEOF(); err != nil {
		return &Error{Stage: StageEncode, Stream: p.outIndex, Err: err}
	}
	if err := p.drainEncoder(); err != nil {
		return err
	}

	if err := p.writer.WriteTrailer(); err != nil {
		return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
	}
	p.setState(StateFinalized)
	return nil
}

func (p *Pipeline) setState(s State) {
	p.log.Debug().Stringer("from", p.state).Stringer("to", s).Msg("pipeline state")
	p.state = s
}

// drainDecoder pushes every frame the decoder has ready through the rest
// of the pipeline.
func (p *Pipeline) drainDecoder() error {
	for f, ok := p.decoder.ReceiveFrame(); ok; f, ok = p.decoder.ReceiveFrame() {
		p.stats.FramesDecoded++
		if err := p.graph.Push(f); err != nil {
			return &Error{Stage: StageFilter, Stream: p.srcIndex, Err: err}
		}
		if err := p.drainFilter(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drainFilter() error {
	for f, ok := p.graph.Pull(); ok; f, ok = p.graph.Pull() {
		p.stats.FramesFiltered++
		if err := p.encoder.SendFrame(f); err != nil {
			return &Error{Stage: StageEncode, Stream: p.outIndex, Err: err}
		}
		if err := p.drainEncoder(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drainEncoder() error {
	for pkt, ok := p.encoder.ReceivePacket(); ok; pkt, ok = p.encoder.ReceivePacket() {
		pkt.RescaleTS(p.outTB)
		pkt.StreamIndex = p.outIndex
		if err := p.writer.WritePacket(pkt); err != nil {
			return &Error{Stage: StageMux, Stream: p.outIndex, Err: err}
		}
		p.stats.PacketsWritten++
	}
	return nil
}

// Close releases the input and the output file. It is safe to call more
// than once, and after a failed New or Run.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.reader != nil {
		errs = append(errs, p.reader.Close())
	}
	if p.writer != nil {
		errs = append(errs, p.writer.Close())
	}
	return errors.Join(errs...)
}
