// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/audpipe/audio"
)

// Probe reports whether header starts a native FLAC stream.
func Probe(header []byte) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

type demuxer struct {
	stream   *goflac.Stream
	streams  []audio.StreamDescriptor
	md       *audio.Metadata
	pictures []*audio.Attachment

	channels int
	pts      int64
	done     bool
}

// Open parses the FLAC metadata blocks of r and positions it on the first frame.
func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	s, err := goflac.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := s.Info
	channels := int(info.NChannels)
	rate := int(info.SampleRate)
	bits := int(info.BitsPerSample)
	if channels < 1 || rate <= 0 || bits <= 0 {
		return nil, fmt.Errorf("%w: %d channels, %d bits at %dHz", ErrNotFlacFile, channels, bits, rate)
	}

	audioStream := audio.StreamDescriptor{
		Index:        0,
		MediaType:    audio.MediaTypeAudio,
		TimeBase:     audio.SampleTimeBase(rate),
		SampleRate:   rate,
		SampleFormat: audio.IntegerFormatForDepth(bits),
		Layout:       channelLayout(channels),
		Codec: audio.CodecParameters{
			ID:            audio.CodecFLAC,
			BitsPerSample: bits,
			FrameSize:     fixedBlockSize(info),
		},
		Duration: int64(info.NSamples),
	}
	if info.NSamples > 0 {
		// compressed, so estimate from the file size
		audioStream.BitRate = size * 8 * int64(rate) / int64(info.NSamples)
	}

	d := &demuxer{
		stream:   s,
		streams:  []audio.StreamDescriptor{audioStream},
		channels: channels,
	}
	d.readBlocks(s.Blocks)

	return d, nil
}

func fixedBlockSize(info *meta.StreamInfo) int {
	if info.BlockSizeMin == info.BlockSizeMax {
		return int(info.BlockSizeMax)
	}
	return 0
}

// readBlocks collects Vorbis comments as tags and pictures as attachment
// streams. Repeated tags are joined with ", ".
func (d *demuxer) readBlocks(blocks []*meta.Block) {
	for _, b := range blocks {
		switch body := b.Body.(type) {
		case *meta.VorbisComment:
			if d.md == nil {
				d.md = &audio.Metadata{}
			}
			for _, tag := range body.Tags {
				key, value := tag[0], tag[1]
				if prev, ok := d.md.Get(key); ok {
					value = prev + ", " + value
				}
				d.md.Set(key, value)
			}
		case *meta.Picture:
			att := &audio.Attachment{Data: body.Data, Ext: audio.ExtFromContentType(body.MIME)}
			d.pictures = append(d.pictures, att)
			d.streams = append(d.streams, audio.StreamDescriptor{
				Index:     len(d.streams),
				MediaType: audio.MediaTypeAttachment,
				Codec:     audio.CodecParameters{ID: audio.ImageCodec(att.Ext)},
			})
		}
	}
}

func (d *demuxer) Streams() []audio.StreamDescriptor { return d.streams }

func (d *demuxer) Metadata() *audio.Metadata { return d.md }

func (d *demuxer) Attachments() []*audio.Attachment { return d.pictures }

// ReadPacket returns one FLAC frame as interleaved little-endian int32 samples.
func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	if d.done {
		return nil, io.EOF
	}

	f, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		d.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if len(f.Subframes) != d.channels {
		return nil, fmt.Errorf("%w: frame has %d channels, stream has %d", ErrNotFlacFile, len(f.Subframes), d.channels)
	}

	n := f.Subframes[0].NSamples
	data := make([]byte, 0, n*d.channels*4)
	for i := range n {
		for _, sub := range f.Subframes {
			data = binary.LittleEndian.AppendUint32(data, uint32(sub.Samples[i]))
		}
	}

	pkt := &audio.Packet{
		StreamIndex: 0,
		PTS:         d.pts,
		Duration:    int64(n),
		TimeBase:    d.streams[0].TimeBase,
		Data:        data,
	}
	d.pts += int64(n)

	return pkt, nil
}

func (d *demuxer) Close() error {
	d.done = true
	return nil
}
