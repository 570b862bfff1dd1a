// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// CodecID names the encoding of packet payloads.
type CodecID string

const (
	CodecPCMU8    CodecID = "pcm_u8"
	CodecPCMS16LE CodecID = "pcm_s16le"
	CodecPCMS16BE CodecID = "pcm_s16be"
	CodecPCMS24LE CodecID = "pcm_s24le"
	CodecPCMS24BE CodecID = "pcm_s24be"
	CodecPCMS32LE CodecID = "pcm_s32le"
	CodecPCMS32BE CodecID = "pcm_s32be"
	CodecPCMF32LE CodecID = "pcm_f32le"

	// CodecFLAC payloads are interleaved little-endian int32 samples holding
	// CodecParameters.BitsPerSample significant bits, one FLAC frame per packet.
	CodecFLAC CodecID = "flac"

	// Attachment codecs.
	CodecPNG  CodecID = "png"
	CodecJPEG CodecID = "mjpeg"
	CodecGIF  CodecID = "gif"
)

// ImageCodec maps a picture file extension to its attachment codec.
func ImageCodec(ext string) CodecID {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return CodecJPEG
	case "png":
		return CodecPNG
	case "gif":
		return CodecGIF
	}
	return CodecID(strings.ToLower(strings.TrimPrefix(ext, ".")))
}

type pcmCodec struct {
	format SampleFormat
	order  binary.ByteOrder
}

var pcmCodecs = map[CodecID]pcmCodec{
	CodecPCMU8:    {SampleFormatU8, binary.LittleEndian},
	CodecPCMS16LE: {SampleFormatS16, binary.LittleEndian},
	CodecPCMS16BE: {SampleFormatS16, binary.BigEndian},
	CodecPCMS24LE: {SampleFormatS24, binary.LittleEndian},
	CodecPCMS24BE: {SampleFormatS24, binary.BigEndian},
	CodecPCMS32LE: {SampleFormatS32, binary.LittleEndian},
	CodecPCMS32BE: {SampleFormatS32, binary.BigEndian},
	CodecPCMF32LE: {SampleFormatF32, binary.LittleEndian},
}

// PCM reports the sample format and byte order of a PCM codec.
func (c CodecID) PCM() (SampleFormat, binary.ByteOrder, bool) {
	p, ok := pcmCodecs[c]
	if !ok {
		return SampleFormatNone, nil, false
	}
	return p.format, p.order, true
}

// PCMCodec returns the PCM codec storing format in the given byte order.
func PCMCodec(format SampleFormat, order binary.ByteOrder) (CodecID, error) {
	for id, p := range pcmCodecs {
		if p.format != format {
			continue
		}
		if format == SampleFormatU8 || p.order == order {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no pcm codec for %s %v", ErrUnsupportedFormatConversion, format, order)
}

// MediaType tells audio streams apart from attachments such as cover art.
type MediaType int

const (
	MediaTypeAudio MediaType = iota
	MediaTypeAttachment
)

func (m MediaType) String() string {
	if m == MediaTypeAttachment {
		return "attachment"
	}
	return "audio"
}

// CodecParameters are the raw codec settings a decoder is built from.
type CodecParameters struct {
	ID CodecID
	// BitsPerSample is the number of significant bits; 0 means the codec default.
	BitsPerSample int
	// FrameSize is the number of samples per channel in each packet when fixed.
	FrameSize int
}

// StreamDescriptor describes one elementary stream. Treat it as immutable.
type StreamDescriptor struct {
	Index        int
	MediaType    MediaType
	TimeBase     Rational
	SampleRate   int
	SampleFormat SampleFormat
	Layout       ChannelLayout
	BitRate      int64
	MaxBitRate   int64
	Codec        CodecParameters
	// Duration in TimeBase ticks; 0 when unknown.
	Duration int64
}

func (d StreamDescriptor) Channels() int { return d.Layout.Channels() }

func (d StreamDescriptor) String() string {
	if d.MediaType != MediaTypeAudio {
		return fmt.Sprintf("#%d %s %s", d.Index, d.MediaType, d.Codec.ID)
	}
	return fmt.Sprintf("#%d %s %dHz %s %s tb=%s", d.Index, d.Codec.ID, d.SampleRate,
		d.SampleFormat, d.Layout, d.TimeBase)
}

// CodecInfo advertises what an encoder for a container accepts.
type CodecInfo struct {
	ID    CodecID
	Name  string
	Order binary.ByteOrder

	// SampleFormats in order of preference.
	SampleFormats  []SampleFormat
	ChannelLayouts []ChannelLayout
	// SampleRates is empty when any rate is accepted.
	SampleRates []int

	// VariableFrameSize codecs accept frames of any length.
	VariableFrameSize bool
	// FrameSize is the fixed frame size when VariableFrameSize is false.
	FrameSize int
	// PacketSize makes a variable frame size encoder coalesce samples into
	// packets of that many samples per channel. 0 emits one packet per frame.
	PacketSize int

	SupportsBitRate bool
}

// CodecFor returns the payload codec used when encoding format.
func (c CodecInfo) CodecFor(format SampleFormat) (CodecID, error) {
	if c.ID != "" {
		return c.ID, nil
	}
	return PCMCodec(format, c.Order)
}
