// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audpipe/audio"
)

// PacketSamples is the number of samples per channel in a demuxed packet.
const PacketSamples = 4096

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// Probe reports whether header starts a RIFF/WAVE file.
func Probe(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

type demuxer struct {
	pcm        io.Reader
	stream     audio.StreamDescriptor
	md         *audio.Metadata
	blockAlign int

	buf    []byte
	pts    int64
	closed bool
}

// Open parses the WAV header and info tags of r and positions it on the
// sample data.
func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	d := gowav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if d.NumChans < 1 || d.BitDepth < 8 || d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels, %d bits at %dHz",
			ErrUnsupportedWavLayout, d.NumChans, d.BitDepth, d.SampleRate)
	}

	// tags usually follow the data chunk, so read them first and rewind
	d.ReadMetadata()
	md := metadataFromInfo(d.Metadata)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	d = gowav.NewDecoder(r)
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingWavData, err)
	}
	if d.PCMChunk == nil {
		return nil, ErrMissingWavData
	}

	codec, err := codecFor(int(d.WavAudioFormat), int(d.BitDepth))
	if err != nil {
		return nil, err
	}

	format, _, _ := codec.PCM()
	channels := int(d.NumChans)
	rate := int(d.SampleRate)
	blockAlign := channels * int(d.BitDepth) / 8

	return &demuxer{
		pcm: io.LimitReader(d.PCMChunk, int64(d.PCMChunk.Size)),
		stream: audio.StreamDescriptor{
			Index:        0,
			MediaType:    audio.MediaTypeAudio,
			TimeBase:     audio.SampleTimeBase(rate),
			SampleRate:   rate,
			SampleFormat: format,
			Layout:       audio.DefaultLayout(channels),
			BitRate:      int64(rate) * int64(channels) * int64(d.BitDepth),
			Codec:        audio.CodecParameters{ID: codec, BitsPerSample: int(d.BitDepth)},
			Duration:     int64(d.PCMChunk.Size / blockAlign),
		},
		md:         md,
		blockAlign: blockAlign,
		buf:        make([]byte, PacketSamples*blockAlign),
	}, nil
}

func codecFor(wavFormat, bits int) (audio.CodecID, error) {
	switch wavFormat {
	case formatPCM, formatExtensible:
		switch bits {
		case 8:
			return audio.CodecPCMU8, nil
		case 16:
			return audio.CodecPCMS16LE, nil
		case 24:
			return audio.CodecPCMS24LE, nil
		case 32:
			return audio.CodecPCMS32LE, nil
		}
	case formatFloat:
		if bits == 32 {
			return audio.CodecPCMF32LE, nil
		}
	}
	return "", fmt.Errorf("%w: format %d with %d bits", ErrUnsupportedWavFormat, wavFormat, bits)
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *demuxer) Metadata() *audio.Metadata { return d.md }

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	if d.closed {
		return nil, io.EOF
	}

	n, err := io.ReadFull(d.pcm, d.buf)
	// a truncated file ends on the last whole sample frame
	n -= n % d.blockAlign
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w", err)
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w", err)
	}

	samples := int64(n / d.blockAlign)
	pkt := &audio.Packet{
		StreamIndex: 0,
		PTS:         d.pts,
		Duration:    samples,
		TimeBase:    d.stream.TimeBase,
		Data:        bytes.Clone(d.buf[:n]),
	}
	d.pts += samples

	return pkt, nil
}

func (d *demuxer) Close() error {
	d.closed = true
	return nil
}
