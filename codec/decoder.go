// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
)

// DefaultFrameSamples caps the number of samples per channel in a decoded frame.
const DefaultFrameSamples = 1024

// Decoder turns packets of one stream into frames of normalized samples.
// It is push/pull: SendPacket, then ReceiveFrame until it reports false.
type Decoder struct {
	stream       audio.StreamDescriptor
	format       audio.SampleFormat
	timeBase     audio.Rational
	codec        sampleCodec
	frameSamples int

	queue   []*audio.Frame
	nextPTS int64
	eof     bool

	decoded int64
	log     zerolog.Logger
}

type DecoderOption func(*Decoder)

// WithFrameSamples limits decoded frames to n samples per channel.
func WithFrameSamples(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.frameSamples = n
		}
	}
}

func WithDecoderLogger(l zerolog.Logger) DecoderOption {
	return func(d *Decoder) { d.log = l }
}

// NewDecoder builds a decoder for stream from its codec parameters.
func NewDecoder(stream audio.StreamDescriptor, opts ...DecoderOption) (*Decoder, error) {
	if stream.MediaType != audio.MediaTypeAudio {
		return nil, fmt.Errorf("%w: stream %d is not audio", audio.ErrDecodeRejected, stream.Index)
	}
	if stream.SampleRate <= 0 || stream.Channels() == 0 {
		return nil, fmt.Errorf("%w: stream %d has rate %d and %d channels",
			audio.ErrDecodeRejected, stream.Index, stream.SampleRate, stream.Channels())
	}

	sc, err := lookupSampleCodec(stream.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeRejected, err)
	}

	format := stream.SampleFormat
	if format == audio.SampleFormatNone {
		format = audio.IntegerFormatForDepth(stream.Codec.BitsPerSample)
	}

	d := &Decoder{
		stream:       stream,
		format:       format,
		timeBase:     audio.SampleTimeBase(stream.SampleRate),
		codec:        sc,
		frameSamples: DefaultFrameSamples,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.log.Debug().
		Str("codec", string(stream.Codec.ID)).
		Int("sample_rate", stream.SampleRate).
		Str("layout", stream.Layout.String()).
		Str("format", format.String()).
		Msg("decoder opened")

	return d, nil
}

// TimeBase is the time base of decoded frames, 1/sample_rate.
func (d *Decoder) TimeBase() audio.Rational { return d.timeBase }

func (d *Decoder) Stream() audio.StreamDescriptor { return d.stream }

// SampleFormat is the format decoded frames are tagged with.
func (d *Decoder) SampleFormat() audio.SampleFormat { return d.format }

// Decoded is the number of samples per channel produced so far.
func (d *Decoder) Decoded() int64 { return d.decoded }

// SendPacket decodes pkt. Its timestamps must be in the decoder time base;
// packets in another time base are rescaled first.
func (d *Decoder) SendPacket(pkt *audio.Packet) error {
	if d.eof {
		return fmt.Errorf("%w: packet sent after end of stream", audio.ErrDecodeRejected)
	}
	if pkt == nil || len(pkt.Data) == 0 {
		return nil
	}

	channels := d.stream.Channels()
	frameBytes := d.codec.bytes * channels
	if len(pkt.Data)%frameBytes != 0 {
		return fmt.Errorf("%w: %d byte payload is not a whole number of %d byte sample frames",
			audio.ErrDecodeRejected, len(pkt.Data), frameBytes)
	}

	samples := d.codec.unpack(make([]float32, 0, len(pkt.Data)/d.codec.bytes), pkt.Data)
	n := len(samples) / channels

	pts := pkt.PTS
	if pts == audio.NoPTS {
		pts = d.nextPTS
	} else if pkt.TimeBase.IsValid() && pkt.TimeBase != d.timeBase {
		pts = audio.Rescale(pts, pkt.TimeBase, d.timeBase)
	}

	for off := 0; off < n; off += d.frameSamples {
		count := min(d.frameSamples, n-off)
		d.queue = append(d.queue, &audio.Frame{
			PTS:      pts + int64(off),
			TimeBase: d.timeBase,
			Format:   d.format,
			Layout:   d.stream.Layout,
			Buf: &goaudio.Float32Buffer{
				Format:         &goaudio.Format{NumChannels: channels, SampleRate: d.stream.SampleRate},
				Data:           samples[off*channels : (off+count)*channels],
				SourceBitDepth: d.format.BitDepth(),
			},
		})
	}

	d.nextPTS = pts + int64(n)
	d.decoded += int64(n)
	return nil
}

// SendEOF tells the decoder no more packets follow. Buffered frames remain
// available from ReceiveFrame.
func (d *Decoder) SendEOF() error {
	if d.eof {
		return fmt.Errorf("%w: end of stream signalled twice", audio.ErrDecodeRejected)
	}
	d.eof = true
	d.log.Debug().Int64("samples", d.decoded).Msg("decoder draining")
	return nil
}

// ReceiveFrame returns the next decoded frame. It returns false when the
// decoder needs more input or, after SendEOF, when it is fully drained.
func (d *Decoder) ReceiveFrame() (*audio.Frame, bool) {
	if len(d.queue) == 0 {
		return nil, false
	}
	f := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return f, true
}
