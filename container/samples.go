// SPDX-License-Identifier: EPL-2.0

package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

// SamplesFormat is the format name of readers built by OpenSamples.
const SamplesFormat = "samples"

// OpenSamples exposes a sample source as a container with one pcm_f32le
// stream. Each packet holds one ReadSamples call worth of samples, which must
// be whole frames. The source is closed by Close.
func OpenSamples(src audio.Source, opts ...Option) (*Reader, error) {
	rate, channels := src.SampleRate(), src.Channels()
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: source has %d channels at %dHz",
			audio.ErrUnreadableContainer, channels, rate)
	}

	size := src.BufSize()
	if size < channels {
		size = codec.DefaultFrameSamples * channels
	}
	size -= size % channels

	d := &sourceDemuxer{
		src: src,
		buf: make([]float32, size),
		stream: audio.StreamDescriptor{
			Index:        0,
			MediaType:    audio.MediaTypeAudio,
			TimeBase:     audio.SampleTimeBase(rate),
			SampleRate:   rate,
			SampleFormat: audio.SampleFormatF32,
			Layout:       audio.DefaultLayout(channels),
			Codec:        audio.CodecParameters{ID: audio.CodecPCMF32LE, BitsPerSample: 32},
		},
	}

	return newReader(SamplesFormat, d, buildOptions(opts).log), nil
}

type sourceDemuxer struct {
	src    audio.Source
	stream audio.StreamDescriptor
	buf    []float32
	pts    int64
	done   bool
}

func (d *sourceDemuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *sourceDemuxer) ReadPacket() (*audio.Packet, error) {
	channels := d.stream.Channels()
	for !d.done {
		n, err := d.src.ReadSamples(d.buf)
		if errors.Is(err, io.EOF) {
			d.done = true
		} else if err != nil {
			return nil, err
		}
		if n%channels != 0 {
			return nil, fmt.Errorf("%w: source returned %d samples for %d channels",
				audio.ErrInvalidDstSize, n, channels)
		}
		if n == 0 {
			continue
		}

		data, err := codec.FloatsPayload(make([]byte, 0, n*4), d.stream.Codec, d.buf[:n])
		if err != nil {
			return nil, err
		}
		samples := int64(n / channels)
		pkt := &audio.Packet{
			StreamIndex: 0,
			PTS:         d.pts,
			Duration:    samples,
			TimeBase:    d.stream.TimeBase,
			Data:        data,
		}
		d.pts += samples
		return pkt, nil
	}
	return nil, io.EOF
}

func (d *sourceDemuxer) Close() error {
	d.done = true
	return d.src.Close()
}
