// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

// PacketSamples is the number of samples per channel in a demuxed packet.
const PacketSamples = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Probe reports whether header starts an AIFF or AIFF-C file.
func Probe(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[:4], []byte("FORM")) {
		return false
	}
	kind := string(header[8:12])
	return kind == "AIFF" || kind == "AIFC"
}

type demuxer struct {
	dec    aiffReader
	stream audio.StreamDescriptor
	intBuf *goaudio.IntBuffer
	pts    int64
	done   bool
}

// Open parses the AIFF header of r.
func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, err)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newDemuxer(dec, format.SampleRate, format.NumChannels, int(dec.BitDepth), int64(dec.NumSampleFrames))
}

func newDemuxer(dec aiffReader, rate, channels, bits int, frames int64) (*demuxer, error) {
	var id audio.CodecID
	switch bits {
	case 16:
		id = audio.CodecPCMS16BE
	case 24:
		id = audio.CodecPCMS24BE
	case 32:
		id = audio.CodecPCMS32BE
	default:
		return nil, fmt.Errorf("%w: got %d bits", ErrUnsupportedBitDepth, bits)
	}

	return &demuxer{
		dec: dec,
		stream: audio.StreamDescriptor{
			Index:        0,
			MediaType:    audio.MediaTypeAudio,
			TimeBase:     audio.SampleTimeBase(rate),
			SampleRate:   rate,
			SampleFormat: audio.IntegerFormatForDepth(bits),
			Layout:       audio.DefaultLayout(channels),
			BitRate:      int64(rate) * int64(channels) * int64(bits),
			Codec:        audio.CodecParameters{ID: id, BitsPerSample: bits},
			Duration:     frames,
		},
		intBuf: &goaudio.IntBuffer{
			Data:   make([]int, PacketSamples*channels),
			Format: &goaudio.Format{NumChannels: channels, SampleRate: rate},
		},
	}, nil
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	if d.done {
		return nil, io.EOF
	}

	channels := d.stream.Channels()
	d.intBuf.Data = d.intBuf.Data[:cap(d.intBuf.Data)]

	n, err := d.dec.PCMBuffer(d.intBuf)
	n -= n % channels
	if n == 0 {
		d.done = true
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w", err)
		}
		return nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w", err)
	}

	data, perr := codec.IntsPayload(nil, d.stream.Codec, d.intBuf.Data[:n])
	if perr != nil {
		return nil, perr
	}

	frames := int64(n / channels)
	pkt := &audio.Packet{
		StreamIndex: 0,
		PTS:         d.pts,
		Duration:    frames,
		TimeBase:    d.stream.TimeBase,
		Data:        data,
	}
	d.pts += frames

	return pkt, nil
}

func (d *demuxer) Close() error {
	d.done = true
	return nil
}
