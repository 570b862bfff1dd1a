// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/codec"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := min(len(buf.Data), len(m.samples)-m.offset)

	copy(buf.Data, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead, io.EOF
	}

	return samplesToRead, nil
}

func readAll(t *testing.T, d audio.Demuxer) []*audio.Packet {
	t.Helper()

	var pkts []*audio.Packet
	for {
		pkt, err := d.ReadPacket()
		if errors.Is(err, io.EOF) {
			return pkts
		}
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		pkts = append(pkts, pkt)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"aiff", "FORM\x00\x00\x00\x10AIFF", true},
		{"aifc", "FORM\x00\x00\x00\x10AIFC", true},
		{"other form", "FORM\x00\x00\x00\x10ILBM", false},
		{"wav", "RIFF\x00\x00\x00\x10WAVE", false},
		{"short", "FORM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Probe([]byte(tt.header)); got != tt.want {
				t.Errorf("Probe(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestOpen_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not AIFF data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Open(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Open() error = %v, want %v", err, ErrNotAiffFile)
			}
		})
	}
}

func TestDemuxer_Stream(t *testing.T) {
	t.Parallel()

	d, err := newDemuxer(&mockAiffReader{sampleRate: 44100, channels: 2}, 44100, 2, 24, 1000)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}

	st := d.Streams()[0]
	if st.Codec.ID != audio.CodecPCMS24BE {
		t.Errorf("Codec = %s, want pcm_s24be", st.Codec.ID)
	}
	if st.SampleFormat != audio.SampleFormatS24 {
		t.Errorf("SampleFormat = %s, want s24", st.SampleFormat)
	}
	if st.Layout != audio.LayoutStereo {
		t.Errorf("Layout = %s, want stereo", st.Layout)
	}
	if st.Duration != 1000 {
		t.Errorf("Duration = %d, want 1000", st.Duration)
	}
	if st.BitRate != 44100*2*24 {
		t.Errorf("BitRate = %d, want %d", st.BitRate, 44100*2*24)
	}
}

func TestDemuxer_UnsupportedBitDepth(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{8, 12, 64} {
		_, err := newDemuxer(&mockAiffReader{}, 8000, 1, bits, 0)
		if !errors.Is(err, ErrUnsupportedBitDepth) {
			t.Errorf("newDemuxer(%d bits) error = %v, want %v", bits, err, ErrUnsupportedBitDepth)
		}
	}
}

func TestDemuxer_Packets(t *testing.T) {
	t.Parallel()

	samples := make([]int, 2*(PacketSamples+10))
	for i := range samples {
		samples[i] = i - 1000
	}
	d, err := newDemuxer(&mockAiffReader{sampleRate: 8000, channels: 2, samples: samples}, 8000, 2, 16, 0)
	if err != nil {
		t.Fatal(err)
	}

	pkts := readAll(t, d)
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if pkts[0].PTS != 0 || pkts[0].Duration != PacketSamples {
		t.Errorf("packet 0 pts=%d dur=%d", pkts[0].PTS, pkts[0].Duration)
	}
	if pkts[1].PTS != PacketSamples || pkts[1].Duration != 10 {
		t.Errorf("packet 1 pts=%d dur=%d", pkts[1].PTS, pkts[1].Duration)
	}

	var got []int
	for _, p := range pkts {
		got, err = codec.PayloadInts(got, d.stream.Codec, p.Data)
		if err != nil {
			t.Fatal(err)
		}
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}

	// big-endian payload
	if pkts[0].Data[0] != 0xFC || pkts[0].Data[1] != 0x18 {
		t.Errorf("first sample bytes = % x, want fc 18", pkts[0].Data[:2])
	}
}

func TestDemuxer_Error(t *testing.T) {
	t.Parallel()

	d, err := newDemuxer(&mockAiffReader{returnErrors: true}, 8000, 1, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.ReadPacket()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadPacket() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestDemuxer_Close(t *testing.T) {
	t.Parallel()

	d, err := newDemuxer(&mockAiffReader{samples: make([]int, 10)}, 8000, 1, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := d.ReadPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadPacket() after Close = %v, want EOF", err)
	}
}

func BenchmarkDemuxer_ReadPacket(b *testing.B) {
	samples := make([]int, 44100*2)

	for b.Loop() {
		d, _ := newDemuxer(&mockAiffReader{sampleRate: 44100, channels: 2, samples: samples}, 44100, 2, 16, 0)
		for {
			if _, err := d.ReadPacket(); err != nil {
				break
			}
		}
	}
}
