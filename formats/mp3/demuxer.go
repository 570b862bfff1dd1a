// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audpipe/audio"
)

// PacketSamples is the number of samples per channel in an MPEG-1 Layer III frame.
const PacketSamples = 1152

// TimeBase is a common multiple of every MPEG audio sample rate, so packet
// timestamps are exact whatever the rate.
var TimeBase = audio.NewRational(1, 14112000)

// go-mp3 always decodes to stereo 16-bit little-endian PCM.
const (
	channels   = 2
	frameBytes = channels * 2
)

var ErrNotMP3File = errors.New("not an MP3 file")

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

// Probe reports whether header starts with an ID3v2 tag or a Layer III
// frame sync.
func Probe(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	if len(header) < 2 || header[0] != 0xFF || header[1]&0xE0 != 0xE0 {
		return false
	}
	layer := (header[1] >> 1) & 0x03
	version := (header[1] >> 3) & 0x03
	return layer == 0x01 && version != 0x01
}

type demuxer struct {
	dec    mp3Reader
	stream audio.StreamDescriptor
	buf    []byte
	pos    int64
	done   bool
}

// Open starts decoding r. Packets carry the decoded PCM, since go-mp3 does
// not expose the compressed frames.
func Open(r io.ReadSeeker) (audio.Demuxer, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return newDemuxer(dec, size)
}

func newDemuxer(dec mp3Reader, size int64) (*demuxer, error) {
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrNotMP3File, rate)
	}

	st := audio.StreamDescriptor{
		Index:        0,
		MediaType:    audio.MediaTypeAudio,
		TimeBase:     TimeBase,
		SampleRate:   rate,
		SampleFormat: audio.SampleFormatS16,
		Layout:       audio.LayoutStereo,
		Codec: audio.CodecParameters{
			ID:            audio.CodecPCMS16LE,
			BitsPerSample: 16,
			FrameSize:     PacketSamples,
		},
	}

	if n := dec.Length(); n > 0 {
		samples := n / frameBytes
		st.Duration = audio.Rescale(samples, audio.SampleTimeBase(rate), TimeBase)
		if size > 0 {
			st.BitRate = size * 8 * int64(rate) / samples
		}
	}

	return &demuxer{
		dec:    dec,
		stream: st,
		buf:    make([]byte, PacketSamples*frameBytes),
	}, nil
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	if d.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(d.dec, d.buf)
	n -= n % frameBytes
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w", err)
	}
	if n == 0 {
		d.done = true
		return nil, io.EOF
	}

	samples := int64(n / frameBytes)
	src := audio.SampleTimeBase(d.stream.SampleRate)
	pts := audio.Rescale(d.pos, src, TimeBase)
	d.pos += samples

	return &audio.Packet{
		StreamIndex: 0,
		PTS:         pts,
		Duration:    audio.Rescale(d.pos, src, TimeBase) - pts,
		TimeBase:    TimeBase,
		Data:        bytes.Clone(d.buf[:n]),
	}, nil
}

func (d *demuxer) Close() error {
	d.done = true
	return nil
}

// InputFormat opens MP3 files. Output is not supported.
var InputFormat = &audio.InputFormat{
	Name:       "mp3",
	Extensions: []string{"mp3"},
	Probe:      Probe,
	Open:       Open,
}

// Register adds the MP3 input format to reg.
func Register(reg *audio.Registry) {
	reg.RegisterInput(InputFormat)
}
