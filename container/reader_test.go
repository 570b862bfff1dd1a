// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/internal/audiotest"
)

// fakeDemuxer serves fixed streams and fails after its packets run out
// when err is set.
type fakeDemuxer struct {
	streams []audio.StreamDescriptor
	packets []*audio.Packet
	err     error
	closed  int
}

func (d *fakeDemuxer) Streams() []audio.StreamDescriptor { return d.streams }

func (d *fakeDemuxer) ReadPacket() (*audio.Packet, error) {
	if len(d.packets) == 0 {
		if d.err != nil {
			return nil, d.err
		}
		return nil, io.EOF
	}
	p := d.packets[0]
	d.packets = d.packets[1:]
	return p, nil
}

func (d *fakeDemuxer) Close() error {
	d.closed++
	return nil
}

// fakeRegistry registers an input format matching "FAKE" that opens d.
func fakeRegistry(d *fakeDemuxer) *audio.Registry {
	reg := audio.NewRegistry()
	reg.RegisterInput(&audio.InputFormat{
		Name:  "fake",
		Probe: func(h []byte) bool { return bytes.HasPrefix(h, []byte("FAKE")) },
		Open:  func(io.ReadSeeker) (audio.Demuxer, error) { return d, nil },
	})
	return reg
}

func audioStream(index int, bitRate int64) audio.StreamDescriptor {
	return audio.StreamDescriptor{
		Index:      index,
		MediaType:  audio.MediaTypeAudio,
		TimeBase:   audio.SampleTimeBase(44100),
		SampleRate: 44100,
		Layout:     audio.LayoutStereo,
		BitRate:    bitRate,
		Codec:      audio.CodecParameters{ID: audio.CodecPCMS16LE},
	}
}

func TestOpenBytes_WAV(t *testing.T) {
	t.Parallel()

	r, err := OpenBytes(audiotest.SineWAV16(8000, 1, 10000, 440))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "wav", r.Format())
	require.Len(t, r.Streams(), 1)

	st, err := r.BestAudioStream()
	require.NoError(t, err)
	assert.Equal(t, audio.CodecPCMS16LE, st.Codec.ID)
	assert.Equal(t, audio.LayoutMono, st.Layout)

	var durations []int64
	for pkt, err := range r.Packets() {
		require.NoError(t, err)
		durations = append(durations, pkt.Duration)
	}
	assert.Equal(t, []int64{4096, 4096, 1808}, durations)
}

func TestOpen_Unreadable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
	}{
		{"nothing", Input{}},
		{"empty bytes", Input{Data: []byte{}}},
		{"garbage", Input{Data: []byte("definitely not audio")}},
		{"truncated wav", Input{Data: []byte("RIFF\x04\x00\x00\x00WAVE")}},
		{"missing file", Input{Path: filepath.Join(t.TempDir(), "missing.wav")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Open(tt.in)
			assert.ErrorIs(t, err, audio.ErrUnreadableContainer)
		})
	}
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(path, audiotest.SineWAV16(16000, 2, 500, 440), 0o600))

	r, err := Open(Input{Path: path})
	require.NoError(t, err)

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, 500, pkt.Duration)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.file.Close(), os.ErrClosed)
}

func TestBestAudioStream(t *testing.T) {
	t.Parallel()

	picture := audio.StreamDescriptor{Index: 0, MediaType: audio.MediaTypeAttachment, BitRate: 1 << 30}

	tests := []struct {
		name    string
		streams []audio.StreamDescriptor
		want    int
	}{
		{"single", []audio.StreamDescriptor{audioStream(0, 0)}, 0},
		{"highest bit rate", []audio.StreamDescriptor{audioStream(0, 64000), audioStream(1, 320000), audioStream(2, 128000)}, 1},
		{"tie goes to first", []audio.StreamDescriptor{audioStream(0, 128000), audioStream(1, 128000)}, 0},
		{"attachments ignored", []audio.StreamDescriptor{picture, audioStream(1, 96000)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := OpenBytes([]byte("FAKE"), WithRegistry(fakeRegistry(&fakeDemuxer{streams: tt.streams})))
			require.NoError(t, err)

			st, err := r.BestAudioStream()
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Index)
		})
	}
}

func TestBestAudioStream_PictureOnly(t *testing.T) {
	t.Parallel()

	data := audiotest.PNG(4, 4)
	r, err := OpenBytes(data)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "image2", r.Format())

	_, err = r.BestAudioStream()
	assert.ErrorIs(t, err, audio.ErrNoAudioStream)

	atts := r.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, data, atts[0].Data)
	assert.Nil(t, r.Metadata())
}

func TestReadPacket_DemuxFailure(t *testing.T) {
	t.Parallel()

	d := &fakeDemuxer{
		streams: []audio.StreamDescriptor{audioStream(0, 0)},
		packets: []*audio.Packet{{Duration: 10}},
		err:     errors.New("bad chunk"),
	}
	r, err := OpenBytes([]byte("FAKE"), WithRegistry(fakeRegistry(d)))
	require.NoError(t, err)

	var got int
	var last error
	for _, err := range r.Packets() {
		if err != nil {
			last = err
			continue
		}
		got++
	}
	assert.Equal(t, 1, got)
	assert.ErrorIs(t, last, audio.ErrDemuxFailed)
	assert.ErrorContains(t, last, "bad chunk")
}

func TestReader_Close(t *testing.T) {
	t.Parallel()

	d := &fakeDemuxer{streams: []audio.StreamDescriptor{audioStream(0, 0)}}
	r, err := OpenBytes([]byte("FAKE"), WithRegistry(fakeRegistry(d)))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, d.closed)

	_, err = r.ReadPacket()
	assert.ErrorIs(t, err, audio.ErrDemuxFailed)
	assert.ErrorIs(t, err, audio.ErrInvalidDstSize)
}

func TestOpenSamples(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 1000, 0.5).WithBufSize(256)
	r, err := OpenSamples(src)
	require.NoError(t, err)

	assert.Equal(t, SamplesFormat, r.Format())
	st, err := r.BestAudioStream()
	require.NoError(t, err)
	assert.Equal(t, audio.CodecPCMF32LE, st.Codec.ID)
	assert.Equal(t, audio.LayoutStereo, st.Layout)

	var total, pts int64
	for pkt, err := range r.Packets() {
		require.NoError(t, err)
		assert.Equal(t, pts, pkt.PTS)
		assert.LessOrEqual(t, pkt.Duration, int64(128))
		assert.Len(t, pkt.Data, int(pkt.Duration)*2*4)
		pts += pkt.Duration
		total += pkt.Duration
	}
	assert.EqualValues(t, 1000, total)

	require.NoError(t, r.Close())
	assert.True(t, src.Closed())
}

func TestOpenSamples_Invalid(t *testing.T) {
	t.Parallel()

	_, err := OpenSamples(audiotest.NewSilentSource(0, 2, 10))
	assert.ErrorIs(t, err, audio.ErrUnreadableContainer)
}

func TestInit(t *testing.T) {
	t.Parallel()

	reg := Init()
	assert.Same(t, reg, Init())
	assert.ElementsMatch(t, []string{"wav", "aiff", "flac"}, reg.Outputs())

	for _, name := range []string{"wav", "aiff", "flac", "ogg", "image2", "mp3"} {
		_, ok := reg.Input(name)
		assert.True(t, ok, name)
	}
}

func TestOpen_Source(t *testing.T) {
	t.Parallel()

	in := Input{Source: audiotest.NewSilentSource(16000, 1, 10)}
	assert.Equal(t, "<1 channel source at 16000Hz>", in.String())

	r, err := Open(in)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, SamplesFormat, r.Format())
}

type partialSource struct {
	*audiotest.MockSource
}

func (partialSource) ReadSamples(dst []float32) (int, error) { return 3, nil }

func TestOpenSamples_PartialFrame(t *testing.T) {
	t.Parallel()

	r, err := OpenSamples(partialSource{audiotest.NewSilentSource(8000, 2, 10)})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadPacket()
	assert.ErrorIs(t, err, audio.ErrDemuxFailed)
	assert.ErrorIs(t, err, audio.ErrInvalidDstSize)
}
