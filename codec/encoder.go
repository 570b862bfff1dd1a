// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
)

// Encoder packs frames into packets for one output stream.
//
// Codecs with a fixed frame size take frames of exactly that many samples,
// only the last frame may be shorter. Variable frame size codecs with a
// PacketSize hold samples back until a full packet is available, so the
// encoder has to be drained with SendEOF.
type Encoder struct {
	info  audio.CodecInfo
	desc  audio.StreamDescriptor
	codec sampleCodec

	chunk     int
	fifo      []float32
	fifoPTS   int64
	nextPTS   int64
	shortSeen bool

	queue []*audio.Packet
	eof   bool

	encoded int64
	log     zerolog.Logger
}

type EncoderOption func(*Encoder)

func WithEncoderLogger(l zerolog.Logger) EncoderOption {
	return func(e *Encoder) { e.log = l }
}

// NewEncoder opens an encoder producing desc, as returned by Configure.
func NewEncoder(info audio.CodecInfo, desc audio.StreamDescriptor, opts ...EncoderOption) (*Encoder, error) {
	sc, err := lookupSampleCodec(desc.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrEncodeRejected, err)
	}
	if desc.SampleRate <= 0 || desc.Channels() == 0 {
		return nil, fmt.Errorf("%w: rate %d with %d channels",
			audio.ErrEncodeRejected, desc.SampleRate, desc.Channels())
	}
	if !info.VariableFrameSize && info.FrameSize <= 0 {
		return nil, fmt.Errorf("%w: fixed frame size codec without a frame size", audio.ErrEncodeRejected)
	}

	e := &Encoder{
		info:  info,
		desc:  desc,
		codec: sc,
		log:   zerolog.Nop(),
	}
	switch {
	case !info.VariableFrameSize:
		e.chunk = info.FrameSize
	case info.PacketSize > 0:
		e.chunk = info.PacketSize
	}
	for _, opt := range opts {
		opt(e)
	}

	e.log.Debug().
		Str("codec", string(desc.Codec.ID)).
		Int("sample_rate", desc.SampleRate).
		Str("layout", desc.Layout.String()).
		Str("format", desc.SampleFormat.String()).
		Int("frame_size", e.FrameSize()).
		Msg("encoder opened")

	return e, nil
}

func (e *Encoder) Descriptor() audio.StreamDescriptor { return e.desc }

func (e *Encoder) TimeBase() audio.Rational { return e.desc.TimeBase }

// VariableFrameSize reports whether frames of any length are accepted.
func (e *Encoder) VariableFrameSize() bool { return e.info.VariableFrameSize }

// FrameSize is the required frame length, 0 for variable frame size codecs.
func (e *Encoder) FrameSize() int {
	if e.info.VariableFrameSize {
		return 0
	}
	return e.info.FrameSize
}

// Pending is the number of samples per channel held back for the next packet.
func (e *Encoder) Pending() int { return len(e.fifo) / e.desc.Channels() }

// Encoded is the number of samples per channel emitted in packets so far.
func (e *Encoder) Encoded() int64 { return e.encoded }

// SendFrame queues f for encoding.
func (e *Encoder) SendFrame(f *audio.Frame) error {
	if e.eof {
		return fmt.Errorf("%w: frame sent after end of stream", audio.ErrEncodeRejected)
	}
	if f == nil || f.NumSamples() == 0 {
		return nil
	}
	if f.Layout != e.desc.Layout || f.SampleRate() != e.desc.SampleRate || f.Format != e.desc.SampleFormat {
		return fmt.Errorf("%w: frame is %s %dHz %s, encoder expects %s %dHz %s",
			audio.ErrEncodeRejected, f.Format, f.SampleRate(), f.Layout,
			e.desc.SampleFormat, e.desc.SampleRate, e.desc.Layout)
	}

	n := f.NumSamples()
	if !e.info.VariableFrameSize {
		if e.shortSeen {
			return fmt.Errorf("%w: frame after a short final frame", audio.ErrEncodeRejected)
		}
		if n > e.info.FrameSize {
			return fmt.Errorf("%w: frame of %d samples exceeds frame size %d",
				audio.ErrEncodeRejected, n, e.info.FrameSize)
		}
		e.shortSeen = n < e.info.FrameSize
	}

	pts := f.PTS
	if pts == audio.NoPTS {
		pts = e.nextPTS
	} else {
		pts = audio.Rescale(pts, f.TimeBase, e.desc.TimeBase)
	}
	if len(e.fifo) == 0 {
		e.fifoPTS = pts
	}
	e.nextPTS = pts + int64(n)

	e.fifo = append(e.fifo, f.Samples()...)

	if e.chunk == 0 {
		e.emit(e.Pending())
		return nil
	}
	for e.Pending() >= e.chunk {
		e.emit(e.chunk)
	}
	if e.shortSeen && e.Pending() > 0 {
		e.emit(e.Pending())
	}
	return nil
}

// SendEOF flushes the samples still held back.
func (e *Encoder) SendEOF() error {
	if e.eof {
		return fmt.Errorf("%w: end of stream signalled twice", audio.ErrEncodeRejected)
	}
	if p := e.Pending(); p > 0 {
		e.emit(p)
	}
	e.eof = true
	e.log.Debug().Int64("samples", e.encoded).Msg("encoder drained")
	return nil
}

// ReceivePacket returns the next encoded packet, or false when the encoder
// needs more frames or is fully drained.
func (e *Encoder) ReceivePacket() (*audio.Packet, bool) {
	if len(e.queue) == 0 {
		return nil, false
	}
	p := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return p, true
}

func (e *Encoder) emit(n int) {
	ch := e.desc.Channels()
	data := e.codec.pack(make([]byte, 0, n*ch*e.codec.bytes), e.fifo[:n*ch])

	e.queue = append(e.queue, &audio.Packet{
		StreamIndex: 0,
		PTS:         e.fifoPTS,
		Duration:    int64(n),
		TimeBase:    e.desc.TimeBase,
		Data:        data,
	})

	rest := copy(e.fifo, e.fifo[n*ch:])
	e.fifo = e.fifo[:rest]
	e.fifoPTS += int64(n)
	e.encoded += int64(n)
}
