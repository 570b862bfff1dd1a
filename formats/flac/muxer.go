// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // decoders for the picture dimensions
	_ "image/jpeg"
	_ "image/png"
	"io"
	"slices"

	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

// BlockSize is the number of samples per channel in every frame but the last.
const BlockSize = 4096

// Vendor is written into the Vorbis comment block.
const Vendor = "audpipe"

// pictureFrontCover is the ID3v2 APIC picture type used for cover art.
const pictureFrontCover = 3

var frameChannels = []frame.Channels{
	1: frame.ChannelsMono,
	2: frame.ChannelsLR,
	3: frame.ChannelsLRC,
	4: frame.ChannelsLRLsRs,
	5: frame.ChannelsLRCLsRs,
	6: frame.ChannelsLRCLfeLsRs,
	7: frame.ChannelsLRCLfeCsSlSr,
	8: frame.ChannelsLRCLfeLsRsSlSr,
}

// channelLayouts holds the speaker positions of each entry of frameChannels.
var channelLayouts = []audio.ChannelLayout{
	1: audio.LayoutMono,
	2: audio.LayoutStereo,
	3: audio.Layout3Point0,
	4: audio.LayoutQuad,
	5: audio.Layout5Point0,
	6: audio.Layout5Point1,
	7: audio.Layout6Point1,
	8: audio.Layout7Point1,
}

// channelLayout returns the layout FLAC assigns to n channels.
func channelLayout(n int) audio.ChannelLayout {
	if n < 1 || n >= len(channelLayouts) {
		return audio.DefaultLayout(n)
	}
	return channelLayouts[n]
}

// noClose hides the Close method of the destination; the encoder would
// otherwise close it on WriteTrailer.
type noClose struct {
	io.WriteSeeker
}

type muxer struct {
	w        io.WriteSeeker
	enc      *goflac.Encoder
	stream   audio.StreamDescriptor
	channels frame.Channels
	ints     []int
	num      uint64
}

// NewMuxer returns a muxer writing a FLAC stream of verbatim subframes to w.
// w is seeked back on WriteTrailer to store the sample count and MD5 sum.
func NewMuxer(w io.WriteSeeker) audio.Muxer {
	return &muxer{w: w}
}

func (m *muxer) WriteHeader(h audio.Header) error {
	st := h.Stream
	switch st.SampleFormat {
	case audio.SampleFormatS16, audio.SampleFormatS24:
	default:
		return fmt.Errorf("%w: got %s", ErrUnsupportedBitDepth, st.SampleFormat)
	}
	n := st.Channels()
	if n < 1 || n >= len(frameChannels) {
		return fmt.Errorf("%w: got %d", ErrUnsupportedChannels, n)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    uint32(st.SampleRate),
		NChannels:     uint8(n),
		BitsPerSample: uint8(st.SampleFormat.BitDepth()),
	}

	var blocks []*meta.Block
	if h.Metadata.Len() > 0 {
		blocks = append(blocks, commentBlock(h.Metadata))
	}
	for _, att := range h.Attachments {
		b, err := pictureBlock(att)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}

	enc, err := goflac.NewEncoder(noClose{m.w}, info, blocks...)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	m.enc = enc
	m.stream = st
	m.channels = frameChannels[n]
	return nil
}

func commentBlock(md *audio.Metadata) *meta.Block {
	vc := &meta.VorbisComment{Vendor: Vendor}
	length := 4 + len(vc.Vendor) + 4
	for _, k := range md.Keys() {
		v, _ := md.Get(k)
		vc.Tags = append(vc.Tags, [2]string{k, v})
		length += 4 + len(k) + 1 + len(v)
	}
	return &meta.Block{
		Header: meta.Header{Type: meta.TypeVorbisComment, Length: int64(length)},
		Body:   vc,
	}
}

func pictureBlock(att *audio.Attachment) (*meta.Block, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(att.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: cover art: %w", audio.ErrAttachmentUnsupported, err)
	}

	pic := &meta.Picture{
		Type:   pictureFrontCover,
		MIME:   att.MIMEType(),
		Width:  uint32(cfg.Width),
		Height: uint32(cfg.Height),
		Depth:  24,
		Data:   att.Data,
	}
	length := 4 + 4 + len(pic.MIME) + 4 + len(pic.Desc) + 4*4 + 4 + len(pic.Data)
	return &meta.Block{
		Header: meta.Header{Type: meta.TypePicture, Length: int64(length)},
		Body:   pic,
	}, nil
}

func (m *muxer) WritePacket(pkt *audio.Packet) error {
	ints, err := codec.PayloadInts(m.ints[:0], m.stream.Codec, pkt.Data)
	if err != nil {
		return err
	}
	m.ints = ints

	channels := m.stream.Channels()
	n := len(ints) / channels
	if n == 0 {
		return nil
	}
	if n > BlockSize {
		return fmt.Errorf("%w: %d samples", ErrBlockTooLarge, n)
	}

	subframes := make([]*frame.Subframe, channels)
	for c := range channels {
		samples := make([]int32, n)
		for i := range n {
			samples[i] = int32(ints[i*channels+c])
		}
		subframes[c] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}
	}

	f := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n),
			SampleRate:        uint32(m.stream.SampleRate),
			Channels:          m.channels,
			BitsPerSample:     uint8(m.stream.SampleFormat.BitDepth()),
			Num:               m.num,
		},
		Subframes: subframes,
	}
	if err := m.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("%w", err)
	}
	m.num++
	return nil
}

func (m *muxer) WriteTrailer() error {
	if err := m.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func layouts() []audio.ChannelLayout {
	return slices.Clone(channelLayouts[1:])
}

// InputFormat opens native FLAC streams.
var InputFormat = &audio.InputFormat{
	Name:       "flac",
	Extensions: []string{"flac"},
	Probe:      Probe,
	Open:       Open,
}

// OutputFormat writes FLAC with every tag as a Vorbis comment and cover art
// as a front cover picture block.
var OutputFormat = &audio.OutputFormat{
	Name:       "flac",
	Extensions: []string{"flac"},
	Codec: audio.CodecInfo{
		ID:             audio.CodecFLAC,
		Name:           "flac",
		SampleFormats:  []audio.SampleFormat{audio.SampleFormatS16, audio.SampleFormatS24},
		ChannelLayouts: layouts(),
		FrameSize:      BlockSize,
	},
	Attachments: true,
	New:         NewMuxer,
}

// Register adds the FLAC formats to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
	reg.RegisterOutput(OutputFormat)
}
