// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/internal/audiotest"
)

// outputSamples reopens path and sums the packet durations of its best
// audio stream.
func outputSamples(t *testing.T, path string) (audio.StreamDescriptor, int64) {
	t.Helper()

	r, err := container.OpenFile(path)
	require.NoError(t, err)
	defer r.Close()

	st, err := r.BestAudioStream()
	require.NoError(t, err)

	var total int64
	for pkt, err := range r.Packets() {
		require.NoError(t, err)
		if pkt.StreamIndex == st.Index {
			total += pkt.Duration
		}
	}
	return st, total
}

func convert(t *testing.T, in container.Input, output string, opts Options) *Pipeline {
	t.Helper()

	p, err := New(in, output, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Run(context.Background()))
	return p
}

func TestPipeline_RoundTripDuration(t *testing.T) {
	t.Parallel()

	const n = 44100 + 123
	input := container.Input{Data: audiotest.SineWAV16(44100, 2, n, 440)}

	tests := []struct {
		name string
		ext  string
		opts Options
		rate int
		want int64
	}{
		{"wav", "wav", Options{}, 44100, n},
		{"flac", "flac", Options{}, 44100, n},
		{"aiff", "aiff", Options{}, 44100, n},
		{"wav resampled", "wav", Options{SampleRate: 22050}, 22050, (n*22050 + 44099) / 44100},
		{"flac s24 with volume", "flac", Options{SampleFormat: audio.SampleFormatS24, Filter: "volume=0.5"}, 44100, n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out."+tt.ext)
			p := convert(t, input, path, tt.opts)
			assert.Equal(t, StateFinalized, p.State())
			require.NoError(t, p.Close())

			st, got := outputSamples(t, path)
			assert.Equal(t, tt.rate, st.SampleRate)
			assert.Equal(t, audio.LayoutStereo, st.Layout)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_DrainCompleteness(t *testing.T) {
	t.Parallel()

	const n = 10000

	tests := []struct {
		name  string
		codec audio.CodecInfo
		opts  Options
		want  int
	}{
		{
			name:  "encoder holds packets",
			codec: audio.CodecInfo{VariableFrameSize: true, PacketSize: 4096},
			want:  n,
		},
		{
			name:  "fixed frame size",
			codec: audio.CodecInfo{FrameSize: 1000},
			want:  n,
		},
		{
			name:  "fixed frame size after resampler",
			codec: audio.CodecInfo{FrameSize: 1152},
			opts:  Options{SampleRate: 16000},
			want:  2 * n,
		},
		{
			name:  "small decoder frames",
			codec: audio.CodecInfo{FrameSize: 4096},
			opts:  Options{FrameSamples: 100},
			want:  n,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.codec.SampleFormats = []audio.SampleFormat{audio.SampleFormatS16}
			out, capture := audiotest.CaptureFormat("cap", tt.codec)
			reg := audio.NewRegistry()
			wav.Register(reg)
			reg.RegisterOutput(out)

			opts := tt.opts
			opts.Registry = reg
			path := filepath.Join(t.TempDir(), "out.cap")
			convert(t, container.Input{Data: audiotest.SineWAV16(8000, 1, n, 300)}, path, opts)

			assert.True(t, capture.Trailer)
			assert.Equal(t, tt.want, capture.Samples())

			// timestamps are monotonic and leave no gaps
			var next int64
			for i, pkt := range capture.Packets {
				assert.Equal(t, next, pkt.PTS, "packet %d", i)
				assert.Zero(t, pkt.StreamIndex)
				if !tt.codec.VariableFrameSize && i < len(capture.Packets)-1 {
					assert.EqualValues(t, tt.codec.FrameSize, pkt.Duration, "packet %d", i)
				}
				next = pkt.PTS + pkt.Duration
			}
		})
	}
}

func TestPipeline_Stats(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	p := convert(t, container.Input{Data: audiotest.SineWAV16(8000, 1, 10000, 300)}, path, Options{})

	assert.Equal(t, Stats{
		PacketsRead:    3,
		FramesDecoded:  10,
		FramesFiltered: 10,
		PacketsWritten: 3,
		SamplesIn:      10000,
		SamplesOut:     10000,
	}, p.Stats())
	assert.Equal(t, audio.LayoutMono, p.Input().Layout)
	assert.Equal(t, audio.SampleFormatS16, p.Output().SampleFormat)
}

func TestPipeline_MetadataPassThrough(t *testing.T) {
	t.Parallel()

	md := &audio.Metadata{}
	md.Set("title", "Foo")
	md.Set("artist", "Bar")

	path := filepath.Join(t.TempDir(), "out.flac")
	convert(t, container.Input{Data: audiotest.SineWAV16(44100, 2, 5000, 440)}, path, Options{Metadata: md})

	r, err := container.OpenFile(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, map[string]string{"title": "Foo", "artist": "Bar"}, r.Metadata().Map())
}

func TestPipeline_CopyInputMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	md := &audio.Metadata{}
	md.Set("title", "Foo")

	tagged := filepath.Join(dir, "tagged.flac")
	convert(t, container.Input{Data: audiotest.SineWAV16(8000, 1, 500, 440)}, tagged, Options{Metadata: md})

	copied := filepath.Join(dir, "copied.wav")
	convert(t, container.Input{Path: tagged}, copied, Options{CopyInputMetadata: true})

	plain := filepath.Join(dir, "plain.wav")
	convert(t, container.Input{Path: tagged}, plain, Options{})

	r, err := container.OpenFile(copied)
	require.NoError(t, err)
	defer r.Close()
	title, ok := r.Metadata().Lookup("title")
	assert.True(t, ok)
	assert.Equal(t, "Foo", title)

	r2, err := container.OpenFile(plain)
	require.NoError(t, err)
	defer r2.Close()
	assert.Zero(t, r2.Metadata().Len())
}

func TestPipeline_CoverArt(t *testing.T) {
	t.Parallel()

	input := container.Input{Data: audiotest.SineWAV16(8000, 2, 500, 440)}
	art := &audio.Attachment{Data: audiotest.PNG(8, 8), Ext: "png"}

	t.Run("embedded in flac", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.flac")
		convert(t, input, path, Options{CoverArt: art})

		r, err := container.OpenFile(path)
		require.NoError(t, err)
		defer r.Close()

		atts := r.Attachments()
		require.Len(t, atts, 1)
		assert.Equal(t, art.Data, atts[0].Data)

		st, err := r.BestAudioStream()
		require.NoError(t, err)
		assert.Zero(t, st.Index)
	})

	t.Run("skipped for wav", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.wav")
		convert(t, input, path, Options{CoverArt: art})
		assert.FileExists(t, path)
	})
}

func TestPipeline_Idempotent(t *testing.T) {
	t.Parallel()

	data := audiotest.SineWAV16(22050, 2, 30000, 1000)
	dir := t.TempDir()

	var outputs [][]byte
	for _, name := range []string{"a.flac", "b.flac"} {
		path := filepath.Join(dir, name)
		convert(t, container.Input{Data: data}, path, Options{SampleRate: 48000})

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		outputs = append(outputs, b)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	wavData := audiotest.SineWAV16(8000, 1, 100, 440)

	tests := []struct {
		name   string
		in     container.Input
		output string
		opts   Options
		stage  Stage
		kind   error
	}{
		{"no audio stream", container.Input{Data: audiotest.PNG(4, 4)}, "out.wav", Options{}, StageOpen, audio.ErrNoAudioStream},
		{"unreadable", container.Input{Data: []byte("nothing to see")}, "out.wav", Options{}, StageOpen, audio.ErrUnreadableContainer},
		{"unknown output", container.Input{Data: wavData}, "out.m4a", Options{}, StageMux, audio.ErrUnwritableDestination},
		{"missing directory", container.Input{Data: wavData}, filepath.Join("missing", "out.wav"), Options{}, StageMux, audio.ErrUnwritableDestination},
		{"bad filter", container.Input{Data: wavData}, "out.wav", Options{Filter: "echo=1"}, StageFilter, audio.ErrFilterConfigInvalid},
		{"unsupported sample format", container.Input{Data: wavData}, "out.wav", Options{SampleFormat: audio.SampleFormatU8}, StageEncode, audio.ErrUnsupportedFormatConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.output)
			p, err := New(tt.in, path, tt.opts)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.kind)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.stage, perr.Stage)

			assert.NoFileExists(t, path)
		})
	}
}

func TestRun_Once(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	p := convert(t, container.Input{Data: audiotest.SineWAV16(8000, 1, 100, 440)}, path, Options{})

	assert.ErrorIs(t, p.Run(context.Background()), ErrPipelineDone)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	p, err := New(container.Input{Data: audiotest.SineWAV16(8000, 1, 100000, 440)}, path, Options{})
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageDemux, perr.Stage)
	assert.Equal(t, StateFailed, p.State())
	assert.ErrorIs(t, p.Run(context.Background()), ErrPipelineDone)
}

// failingDemuxer returns the packets of d until limit, then fails.
type failingDemuxer struct {
	audio.Demuxer
	limit int
}

func (f *failingDemuxer) ReadPacket() (*audio.Packet, error) {
	if f.limit == 0 {
		return nil, errors.New("bad chunk")
	}
	f.limit--
	return f.Demuxer.ReadPacket()
}

func TestRun_DemuxFailure(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.RegisterInput(&audio.InputFormat{
		Name:  "broken",
		Probe: wav.Probe,
		Open: func(r io.ReadSeeker) (audio.Demuxer, error) {
			d, err := wav.Open(r)
			return &failingDemuxer{Demuxer: d, limit: 1}, err
		},
	})
	wav.Register(reg)

	path := filepath.Join(t.TempDir(), "out.wav")
	p, err := New(container.Input{Data: audiotest.SineWAV16(8000, 1, 10000, 440)}, path, Options{Registry: reg})
	require.NoError(t, err)
	defer p.Close()

	err = p.Run(context.Background())
	assert.ErrorIs(t, err, audio.ErrDemuxFailed)
	assert.ErrorContains(t, err, "bad chunk")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageDemux, perr.Stage)
	assert.Equal(t, 0, perr.Stream)
	assert.EqualValues(t, 1, p.Stats().PacketsRead)
}

func TestError(t *testing.T) {
	t.Parallel()

	err := &Error{Stage: StageDecode, Stream: 2, Err: audio.ErrDecodeRejected}
	assert.Equal(t, "decode stream 2: decoder rejected input", err.Error())
	assert.ErrorIs(t, err, audio.ErrDecodeRejected)

	err = &Error{Stage: StageOpen, Stream: NoStream, Err: audio.ErrNoAudioStream}
	assert.Equal(t, "open: no audio stream", err.Error())
}

func TestOptions_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	path := filepath.Join(t.TempDir(), "out.wav")
	convert(t, container.Input{Data: audiotest.SineWAV16(8000, 1, 100, 440)}, path, Options{
		Logger:   &log,
		CoverArt: &audio.Attachment{Data: audiotest.PNG(2, 2), Ext: "png"},
	})

	assert.Contains(t, buf.String(), "cover art skipped")
	assert.Contains(t, buf.String(), "conversion finished")
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "filter draining", StateFilterDraining.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.True(t, errors.Is(&Error{Err: ErrPipelineDone}, ErrPipelineDone))
}
