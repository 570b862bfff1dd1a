// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"slices"
	"strings"
	"sync"
)

// Source is a pull-style producer of raw samples.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	// BufSize is the preferred read size in float32 values.
	BufSize() int

	// Close releases any resources.
	Close() error
}

// Demuxer splits an opened container into packets.
type Demuxer interface {
	Streams() []StreamDescriptor
	// ReadPacket returns io.EOF once every packet has been returned.
	ReadPacket() (*Packet, error)
	Close() error
}

// MetadataReader is implemented by demuxers that expose container tags.
type MetadataReader interface {
	Metadata() *Metadata
}

// AttachmentReader is implemented by demuxers that carry embedded pictures.
// Attachments are listed in the order of their attachment streams.
type AttachmentReader interface {
	Attachments() []*Attachment
}

// Header is everything a muxer needs before the first packet.
type Header struct {
	Stream      StreamDescriptor
	Metadata    *Metadata
	Attachments []*Attachment
}

// Muxer writes packets of a single stream into a container.
type Muxer interface {
	WriteHeader(h Header) error
	WritePacket(pkt *Packet) error
	// WriteTrailer finalizes the container. The muxer never closes the
	// underlying writer.
	WriteTrailer() error
}

// InputFormat knows how to recognize and open one container format.
type InputFormat struct {
	Name       string
	Extensions []string
	// Probe reports whether header, the first bytes of the input, belongs to the format.
	Probe func(header []byte) bool
	Open  func(r io.ReadSeeker) (Demuxer, error)
}

// OutputFormat knows how to write one container format.
type OutputFormat struct {
	Name       string
	Extensions []string
	Codec      CodecInfo
	// Attachments reports whether cover art can be embedded.
	Attachments bool
	New         func(w io.WriteSeeker) Muxer
}

// Registry for container formats by name and extension.
type Registry struct {
	inputs  []*InputFormat
	outputs []*OutputFormat

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		mtx: &sync.Mutex{},
	}
}

// RegisterInput adds f. Formats are probed in registration order.
func (r *Registry) RegisterInput(f *InputFormat) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.inputs = append(r.inputs, f)
}

func (r *Registry) RegisterOutput(f *OutputFormat) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.outputs = append(r.outputs, f)
}

// Probe returns the first input format accepting header.
func (r *Registry) Probe(header []byte) (*InputFormat, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.inputs {
		if f.Probe != nil && f.Probe(header) {
			return f, true
		}
	}
	return nil, false
}

func (r *Registry) Input(name string) (*InputFormat, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.inputs {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return nil, false
}

// Output finds an output format by name or by file extension.
func (r *Registry) Output(nameOrExt string) (*OutputFormat, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	key := strings.ToLower(strings.TrimPrefix(nameOrExt, "."))
	for _, f := range r.outputs {
		if strings.EqualFold(f.Name, key) || slices.Contains(f.Extensions, key) {
			return f, true
		}
	}
	return nil, false
}

// Outputs lists the registered output format names.
func (r *Registry) Outputs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, 0, len(r.outputs))
	for _, f := range r.outputs {
		names = append(names, f.Name)
	}
	return names
}
