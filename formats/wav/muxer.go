// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

type muxer struct {
	w      io.WriteSeeker
	enc    *gowav.Encoder
	stream audio.StreamDescriptor
	buf    *goaudio.IntBuffer
}

// NewMuxer returns a muxer writing a PCM WAV file to w. The encoder seeks
// back to patch the chunk sizes when the trailer is written.
func NewMuxer(w io.WriteSeeker) audio.Muxer {
	return &muxer{w: w}
}

func (m *muxer) WriteHeader(h audio.Header) error {
	bits := h.Stream.SampleFormat.BitDepth()
	switch h.Stream.SampleFormat {
	case audio.SampleFormatS16, audio.SampleFormatS24, audio.SampleFormatS32:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutputBits, h.Stream.SampleFormat)
	}
	if len(h.Attachments) > 0 {
		return fmt.Errorf("%w: wav", audio.ErrAttachmentUnsupported)
	}

	m.stream = h.Stream
	m.enc = gowav.NewEncoder(m.w, h.Stream.SampleRate, bits, h.Stream.Channels(), formatPCM)
	m.enc.Metadata = infoFromMetadata(h.Metadata)
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

// InputFormat opens WAV files.
var InputFormat = &audio.InputFormat{
	Name:       "wav",
	Extensions: []string{"wav", "wave"},
	Probe:      Probe,
	Open:       Open,
}

// OutputFormat writes little-endian PCM WAV files with RIFF INFO tags.
var OutputFormat = &audio.OutputFormat{
	Name:       "wav",
	Extensions: []string{"wav", "wave"},
	Codec: audio.CodecInfo{
		Name:              "pcm",
		Order:             binary.LittleEndian,
		SampleFormats:     []audio.SampleFormat{audio.SampleFormatS16, audio.SampleFormatS24, audio.SampleFormatS32},
		ChannelLayouts:    audio.NamedLayouts(),
		VariableFrameSize: true,
		PacketSize:        PacketSamples,
	},
	New: NewMuxer,
}

// Register adds the WAV formats to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
	reg.RegisterOutput(OutputFormat)
}
