// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
	"testing"
)

func testInput(name string, magic string) *InputFormat {
	return &InputFormat{
		Name:       name,
		Extensions: []string{name},
		Probe: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte(magic))
		},
		Open: func(r io.ReadSeeker) (Demuxer, error) { return nil, nil },
	}
}

func testOutput(name string, exts ...string) *OutputFormat {
	return &OutputFormat{
		Name:       name,
		Extensions: exts,
		Codec: CodecInfo{
			SampleFormats: []SampleFormat{SampleFormatS16},
		},
	}
}

func TestRegistry_Probe(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wav := testInput("wav", "RIFF")
	flac := testInput("flac", "fLaC")
	registry.RegisterInput(wav)
	registry.RegisterInput(flac)

	tests := []struct {
		name   string
		header []byte
		want   *InputFormat
		wantOK bool
	}{
		{"riff", []byte("RIFF\x00\x00\x00\x00WAVE"), wav, true},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), flac, true},
		{"unknown", []byte("\x89PNG"), nil, false},
		{"empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := registry.Probe(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("Probe() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_ProbeOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := testInput("first", "ID3")
	second := testInput("second", "ID")
	registry.RegisterInput(first)
	registry.RegisterInput(second)

	got, ok := registry.Probe([]byte("ID3\x04"))
	if !ok || got != first {
		t.Errorf("Probe() = %v, want the first registered match", got)
	}
}

func TestRegistry_Output(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	aiff := testOutput("aiff", "aiff", "aif")
	flac := testOutput("flac", "flac")
	registry.RegisterOutput(aiff)
	registry.RegisterOutput(flac)

	tests := []struct {
		key    string
		want   *OutputFormat
		wantOK bool
	}{
		{"aiff", aiff, true},
		{".aif", aiff, true},
		{"AIF", aiff, true},
		{"FLAC", flac, true},
		{"mp3", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			got, ok := registry.Output(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Output(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Output(%q) returned the wrong format", tt.key)
			}
		})
	}

	if names := registry.Outputs(); len(names) != 2 || names[0] != "aiff" || names[1] != "flac" {
		t.Errorf("Outputs() = %v, want [aiff flac]", names)
	}
}

func TestRegistry_Input(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.RegisterInput(testInput("wav", "RIFF"))

	if _, ok := registry.Input("WAV"); !ok {
		t.Error("Input() should match names case-insensitively")
	}
	if _, ok := registry.Input("mp3"); ok {
		t.Error("Input() returned ok=true for unregistered format")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			registry.RegisterInput(testInput("fmt", "MAGIC"))
			registry.RegisterOutput(testOutput("out", "out"))
		}(i)
	}

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = registry.Probe([]byte("MAGIC"))
			_, _ = registry.Output("out")
		}()
	}

	wg.Wait()

	if got := len(registry.Outputs()); got != 10 {
		t.Errorf("Outputs() has %d entries, want 10", got)
	}
}

func TestCodecInfo_CodecFor(t *testing.T) {
	t.Parallel()

	pcm := CodecInfo{Order: binary.BigEndian}
	got, err := pcm.CodecFor(SampleFormatS24)
	if err != nil {
		t.Fatalf("CodecFor() error = %v", err)
	}
	if got != CodecPCMS24BE {
		t.Errorf("CodecFor(s24) = %s, want %s", got, CodecPCMS24BE)
	}

	flac := CodecInfo{ID: CodecFLAC}
	if got, _ := flac.CodecFor(SampleFormatS16); got != CodecFLAC {
		t.Errorf("CodecFor() = %s, want %s", got, CodecFLAC)
	}
}

func TestCodecID_PCM(t *testing.T) {
	t.Parallel()

	format, order, ok := CodecPCMS16LE.PCM()
	if !ok || format != SampleFormatS16 || order != binary.LittleEndian {
		t.Errorf("PCM() = %v %v %v", format, order, ok)
	}

	if _, _, ok := CodecFLAC.PCM(); ok {
		t.Error("flac is not a PCM codec")
	}
}

func TestImageCodec(t *testing.T) {
	t.Parallel()

	tests := map[string]CodecID{
		"png":  CodecPNG,
		".PNG": CodecPNG,
		"jpg":  CodecJPEG,
		"jpeg": CodecJPEG,
		"gif":  CodecGIF,
		"webp": CodecID("webp"),
	}
	for ext, want := range tests {
		if got := ImageCodec(ext); got != want {
			t.Errorf("ImageCodec(%q) = %q, want %q", ext, got, want)
		}
	}
}
