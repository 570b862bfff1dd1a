// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

type muxer struct {
	w      io.WriteSeeker
	enc    *aiff.Encoder
	stream audio.StreamDescriptor
	buf    *goaudio.IntBuffer
}

// NewMuxer returns a muxer writing a big-endian PCM AIFF file to w.
func NewMuxer(w io.WriteSeeker) audio.Muxer {
	return &muxer{w: w}
}

func (m *muxer) WriteHeader(h audio.Header) error {
	switch h.Stream.SampleFormat {
	case audio.SampleFormatS16, audio.SampleFormatS24, audio.SampleFormatS32:
	default:
		return fmt.Errorf("%w: got %s", ErrUnsupportedBitDepth, h.Stream.SampleFormat)
	}
	if len(h.Attachments) > 0 {
		return fmt.Errorf("%w: aiff", audio.ErrAttachmentUnsupported)
	}

	bits := h.Stream.SampleFormat.BitDepth()
	m.stream = h.Stream
	m.enc = aiff.NewEncoder(m.w, h.Stream.SampleRate, bits, h.Stream.Channels())
	m.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: h.Stream.Channels(), SampleRate: h.Stream.SampleRate},
		SourceBitDepth: bits,
	}
	return nil
}

func (m *muxer) WritePacket(pkt *audio.Packet) error {
	data, err := codec.PayloadInts(m.buf.Data[:0], m.stream.Codec, pkt.Data)
	if err != nil {
		return err
	}
	m.buf.Data = data
	if err := m.enc.Write(m.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *muxer) WriteTrailer() error {
	if err := m.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// InputFormat opens AIFF files.
var InputFormat = &audio.InputFormat{
	Name:       "aiff",
	Extensions: []string{"aiff", "aif", "aifc"},
	Probe:      Probe,
	Open:       Open,
}

// OutputFormat writes big-endian PCM AIFF files. AIFF carries no tags here.
var OutputFormat = &audio.OutputFormat{
	Name:       "aiff",
	Extensions: []string{"aiff", "aif"},
	Codec: audio.CodecInfo{
		Name:              "pcm",
		Order:             binary.BigEndian,
		SampleFormats:     []audio.SampleFormat{audio.SampleFormatS16, audio.SampleFormatS24, audio.SampleFormatS32},
		ChannelLayouts:    audio.NamedLayouts(),
		VariableFrameSize: true,
		PacketSize:        PacketSamples,
	},
	New: NewMuxer,
}

// Register adds the AIFF formats to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
	reg.RegisterOutput(OutputFormat)
}
