// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jfreymuth/oggvorbis"
	"github.com/jfreymuth/vorbis"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

// PacketSamples is the number of samples per channel in a demuxed packet.
const PacketSamples = 1024

var ErrNotVorbisFile = errors.New("not an Ogg Vorbis file")

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read fills p with interleaved samples and returns how many values it wrote.
	Read(p []float32) (int, error)
	Length() int64
	Bitrate() vorbis.Bitrate
	CommentHeader() vorbis.CommentHeader
}

// Probe reports whether header starts an Ogg page carrying a Vorbis
// identification header.
func Probe(header []byte) bool {
	if !bytes.HasPrefix(header, []byte("OggS")) {
		return false
	}
	return bytes.Contains(header[:min(len(header), 64)], []byte("\x01vorbis"))
}

type demuxer struct {
	dec    oggReader
	stream audio.StreamDescriptor
	md     *audio.Metadata
	buf    []float32
	pts    int64
	done   bool
}

// Open starts decoding r. Packets carry decoded pcm_f32le samples.
func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	return newDemuxer(dec)
}

func newDemuxer(dec oggReader) (*demuxer, error) {
	rate, channels := dec.SampleRate(), dec.Channels()
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %dHz", ErrNotVorbisFile, channels, rate)
	}

	st := audio.StreamDescriptor{
		Index:        0,
		MediaType:    audio.MediaTypeAudio,
		TimeBase:     audio.SampleTimeBase(rate),
		SampleRate:   rate,
		SampleFormat: audio.SampleFormatF32,
		Layout:       audio.DefaultLayout(channels),
		Codec:        audio.CodecParameters{ID: audio.CodecPCMF32LE, BitsPerSample: 32},
	}
	if n := dec.Length(); n > 0 {
		st.Duration = n
	}
	br := dec.Bitrate()
	st.BitRate = int64(br.Nominal)
	if br.Maximum > 0 {
		st.MaxBitRate = int64(br.Maximum)
	}

	return &demuxer{
		dec:    dec,
		stream: st,
		md:     parseComments(dec.CommentHeader().Comments),
		buf:    make([]float32, PacketSamples*channels),
	}, nil
}

// parseComments turns "KEY=value" comments into tags. Repeated keys are
// joined with ", ".
func parseComments(comments []string) *audio.Metadata {
	if len(comments) == 0 {
		return nil
	}
	md := &audio.Metadata{}
	for _, c := range comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok || key == "" {
			continue
		}
		if prev, ok := md.Get(key); ok {
			value = prev + ", " + value
		}
		md.Set(key, value)
	}
	return md
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *demuxer) Metadata() *audio.Metadata { return d.md }

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	if d.done {
		return nil, io.EOF
	}

	channels := d.stream.Channels()
	filled := 0
	var err error
	for filled < len(d.buf) && err == nil {
		var n int
		n, err = d.dec.Read(d.buf[filled:])
		filled += n
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w", err)
	}
	filled -= filled % channels
	if filled == 0 {
		d.done = true
		return nil, io.EOF
	}

	data, perr := codec.FloatsPayload(make([]byte, 0, filled*4), d.stream.Codec, d.buf[:filled])
	if perr != nil {
		return nil, perr
	}

	samples := int64(filled / channels)
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

func (d *demuxer) Close() error {
	d.done = true
	return nil
}

// InputFormat opens Ogg Vorbis files. Output is not supported.
var InputFormat = &audio.InputFormat{
	Name:       "ogg",
	Extensions: []string{"ogg", "oga"},
	Probe:      Probe,
	Open:       Open,
}

// Register adds the Ogg Vorbis input format to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
}
