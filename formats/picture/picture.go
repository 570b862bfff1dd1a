// SPDX-License-Identifier: EPL-2.0

package picture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // registered for DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/ik5/audpipe/audio"
)

var ErrNotPicture = errors.New("not a supported picture")

var magics = []struct {
	prefix string
	ext    string
}{
	{"\x89PNG\r\n\x1a\n", "png"},
	{"\xFF\xD8\xFF", "jpeg"},
	{"GIF87a", "gif"},
	{"GIF89a", "gif"},
}

// Probe reports whether header starts a PNG, JPEG or GIF image.
func Probe(header []byte) bool {
	return sniff(header) != ""
}

func sniff(header []byte) string {
	for _, m := range magics {
		if bytes.HasPrefix(header, []byte(m.prefix)) {
			return m.ext
		}
	}
	return ""
}

// Info describes an image.
type Info struct {
	Ext    string
	Width  int
	Height int
}

// Inspect decodes the image header of data.
func Inspect(data []byte) (Info, error) {
	ext := sniff(data)
	if ext == "" {
		return Info{}, ErrNotPicture
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrNotPicture, err)
	}
	return Info{Ext: ext, Width: cfg.Width, Height: cfg.Height}, nil
}

// demuxer exposes an image file as a container with a single attachment
// stream and no audio.
type demuxer struct {
	att    *audio.Attachment
	stream audio.StreamDescriptor
}

func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	info, err := Inspect(data)
	if err != nil {
		return nil, err
	}

	return &demuxer{
		att: &audio.Attachment{Data: data, Ext: info.Ext},
		stream: audio.StreamDescriptor{
			Index:     0,
			MediaType: audio.MediaTypeAttachment,
			Codec:     audio.CodecParameters{ID: audio.ImageCodec(info.Ext)},
		},
	}, nil
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *demuxer) Attachments() []*audio.Attachment {
	return []*audio.Attachment{d.att}
}

// ReadPacket always reports the end of the stream: the image is only
// available through Attachments.
func (d *demuxer) ReadPacket() (*audio.Packet, error) { return nil, io.EOF }

func (d *demuxer) Close() error { return nil }

var InputFormat = &audio.InputFormat{
	Name:       "image2",
	Extensions: []string{"png", "jpg", "jpeg", "gif"},
	Probe:      Probe,
	Open:       Open,
}

// Register adds the picture input format to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
}
