// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
)

// probeSize is how many leading bytes input formats are probed with.
const probeSize = 64

// Input is in-memory bytes, a sample source or a path, checked in that order.
type Input struct {
	Data   []byte
	Source audio.Source
	Path   string
}

func (in Input) String() string {
	switch {
	case in.Data != nil:
		return fmt.Sprintf("<%d bytes>", len(in.Data))
	case in.Source != nil:
		return fmt.Sprintf("<%d channel source at %dHz>", in.Source.Channels(), in.Source.SampleRate())
	}
	return in.Path
}

// Reader is an opened input container.
type Reader struct {
	format  string
	demux   audio.Demuxer
	streams []audio.StreamDescriptor
	file    *os.File

	closed bool
	log    zerolog.Logger
}

// Open probes in and opens it with the matching input format.
func Open(in Input, opts ...Option) (*Reader, error) {
	if in.Data != nil {
		return OpenBytes(in.Data, opts...)
	}
	if in.Source != nil {
		return OpenSamples(in.Source, opts...)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: no input", audio.ErrUnreadableContainer)
	}
	return OpenFile(in.Path, opts...)
}

// OpenBytes opens a container held in memory.
func OpenBytes(data []byte, opts ...Option) (*Reader, error) {
	return open(bytes.NewReader(data), nil, buildOptions(opts))
}

// OpenFile opens the container stored at path. The file is closed by Close.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrUnreadableContainer, err)
	}

	r, err := open(f, f, buildOptions(opts))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func open(rs io.ReadSeeker, file *os.File, o options) (*Reader, error) {
	header := make([]byte, probeSize)
	n, err := io.ReadFull(rs, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %w", audio.ErrUnreadableContainer, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrUnreadableContainer, err)
	}

	f, ok := o.registry.Probe(header[:n])
	if !ok {
		return nil, fmt.Errorf("%w: unknown format", audio.ErrUnreadableContainer)
	}

	d, err := f.Open(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrUnreadableContainer, f.Name, err)
	}

	r := newReader(f.Name, d, o.log)
	r.file = file
	return r, nil
}

func newReader(format string, d audio.Demuxer, log zerolog.Logger) *Reader {
	r := &Reader{
		format:  format,
		demux:   d,
		streams: d.Streams(),
		log:     log,
	}

	log.Debug().Str("format", format).Int("streams", len(r.streams)).Msg("input opened")
	for _, st := range r.streams {
		log.Debug().Str("stream", st.String()).Int64("bit_rate", st.BitRate).Msg("input stream")
	}

	return r
}

// Format is the name of the input format, "wav" or "flac" for example.
func (r *Reader) Format() string { return r.format }

// Streams returns the stream descriptors in container order.
func (r *Reader) Streams() []audio.StreamDescriptor {
	out := make([]audio.StreamDescriptor, len(r.streams))
	copy(out, r.streams)
	return out
}

// Metadata returns the container tags, or nil when the format has none.
func (r *Reader) Metadata() *audio.Metadata {
	if mr, ok := r.demux.(audio.MetadataReader); ok {
		return mr.Metadata()
	}
	return nil
}

// Attachments returns embedded pictures such as cover art.
func (r *Reader) Attachments() []*audio.Attachment {
	if ar, ok := r.demux.(audio.AttachmentReader); ok {
		return ar.Attachments()
	}
	return nil
}

// BestAudioStream picks the audio stream with the highest bit rate. Ties
// go to the stream listed first.
func (r *Reader) BestAudioStream() (audio.StreamDescriptor, error) {
	best := -1
	for i, st := range r.streams {
		if st.MediaType != audio.MediaTypeAudio {
			continue
		}
		if best < 0 || st.BitRate > r.streams[best].BitRate {
			best = i
		}
	}
	if best < 0 {
		return audio.StreamDescriptor{}, fmt.Errorf("%w: %s input has %d streams",
			audio.ErrNoAudioStream, r.format, len(r.streams))
	}
	return r.streams[best], nil
}

// ReadPacket returns the next packet of any stream, or io.EOF at the end of
// the input.
func (r *Reader) ReadPacket() (*audio.Packet, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: reader is closed", audio.ErrDemuxFailed)
	}

	pkt, err := r.demux.ReadPacket()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrDemuxFailed, r.format, err)
	}
	return pkt, nil
}

// Packets iterates over the remaining packets. Iteration stops after the
// first error.
func (r *Reader) Packets() iter.Seq2[*audio.Packet, error] {
	return func(yield func(*audio.Packet, error) bool) {
		for {
			pkt, err := r.ReadPacket()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(pkt, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the demuxer and the file opened by OpenFile. It is safe to
// call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.demux.Close()
	if r.file != nil {
		err = errors.Join(err, r.file.Close())
	}
	return err
}
