// SPDX-License-Identifier: EPL-2.0

package container

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/picture"
)

type writerState int

const (
	stateNew writerState = iota
	stateStream
	stateHeader
	stateTrailer
	stateClosed
)

var writerStateNames = [...]string{"new", "stream added", "header written", "trailer written", "closed"}

func (s writerState) String() string { return writerStateNames[s] }

// Writer muxes a single audio stream into an output container.
//
// Calls must follow AddStream, SetMetadata/AttachPicture, WriteHeader,
// WritePacket..., WriteTrailer. Anything else fails with audio.ErrWriterMisuse.
type Writer struct {
	format *audio.OutputFormat
	mux    audio.Muxer
	file   *os.File
	path   string

	state   writerState
	stream  audio.StreamDescriptor
	md      *audio.Metadata
	atts    []*audio.Attachment
	lastPTS int64
	written int64

	log zerolog.Logger
}

// Create opens path for writing. The output format is formatName, or the
// one registered for the extension of path when formatName is empty.
func Create(path, formatName string, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)

	f, err := lookupOutput(o.registry, path, formatName)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrUnwritableDestination, err)
	}

	w := newWriter(f, file, o.log)
	w.file = file
	w.path = path
	return w, nil
}

// NewWriter writes to w, which the Writer never closes.
func NewWriter(w io.WriteSeeker, formatName string, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)

	f, err := lookupOutput(o.registry, "", formatName)
	if err != nil {
		return nil, err
	}
	return newWriter(f, w, o.log), nil
}

// LookupOutput returns the output format Create would pick for path and
// formatName, without touching the file system.
func LookupOutput(path, formatName string, opts ...Option) (*audio.OutputFormat, error) {
	return lookupOutput(buildOptions(opts).registry, path, formatName)
}

func lookupOutput(reg *audio.Registry, path, formatName string) (*audio.OutputFormat, error) {
	key := formatName
	if key == "" {
		key = audio.ExtFromPath(path)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: cannot tell the output format of %q", audio.ErrUnwritableDestination, path)
	}
	f, ok := reg.Output(key)
	if !ok {
		return nil, fmt.Errorf("%w: no output format %q (have %v)",
			audio.ErrUnwritableDestination, key, reg.Outputs())
	}
	return f, nil
}

func newWriter(f *audio.OutputFormat, w io.WriteSeeker, log zerolog.Logger) *Writer {
	return &Writer{
		format:  f,
		mux:     f.New(w),
		lastPTS: audio.NoPTS,
		log:     log.With().Str("format", f.Name).Logger(),
	}
}

// Format returns the output format.
func (w *Writer) Format() *audio.OutputFormat { return w.format }

// Codec is what the output format's encoder accepts.
func (w *Writer) Codec() audio.CodecInfo { return w.format.Codec }

func (w *Writer) misuse(call string) error {
	return fmt.Errorf("%w: %s while %s", audio.ErrWriterMisuse, call, w.state)
}

// AddStream declares the output stream. It must be called exactly once,
// before WriteHeader.
func (w *Writer) AddStream(desc audio.StreamDescriptor) (int, error) {
	if w.state != stateNew {
		return 0, w.misuse("AddStream")
	}
	if desc.MediaType != audio.MediaTypeAudio || !desc.TimeBase.IsValid() {
		return 0, fmt.Errorf("%w: stream %s", audio.ErrWriterMisuse, desc)
	}
	desc.Index = 0
	w.stream = desc
	w.state = stateStream
	return desc.Index, nil
}

// Stream returns the stream added with AddStream.
func (w *Writer) Stream() audio.StreamDescriptor { return w.stream }

// SetMetadata sets the container tags written by WriteHeader. Keys are
// passed through verbatim.
func (w *Writer) SetMetadata(md *audio.Metadata) error {
	if w.state >= stateHeader {
		return w.misuse("SetMetadata")
	}
	w.md = md.Clone()
	return nil
}

// Metadata returns the tags set with SetMetadata.
func (w *Writer) Metadata() *audio.Metadata { return w.md.Clone() }

// AttachPicture embeds att as cover art. Formats that cannot hold pictures
// fail with audio.ErrAttachmentUnsupported.
func (w *Writer) AttachPicture(att *audio.Attachment) error {
	if w.state >= stateHeader {
		return w.misuse("AttachPicture")
	}
	if !w.format.Attachments {
		return fmt.Errorf("%w: %s", audio.ErrAttachmentUnsupported, w.format.Name)
	}
	if att == nil || len(att.Data) == 0 {
		return fmt.Errorf("%w: empty picture", audio.ErrAttachmentUnsupported)
	}

	info, err := picture.Inspect(att.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrAttachmentUnsupported, err)
	}
	cp := *att
	if cp.Ext == "" {
		cp.Ext = info.Ext
	}
	w.atts = append(w.atts, &cp)

	w.log.Debug().Str("mime", cp.MIMEType()).Int("width", info.Width).Int("height", info.Height).
		Msg("picture attached")
	return nil
}

// WriteHeader writes the container header. It must follow AddStream.
func (w *Writer) WriteHeader() error {
	if w.state != stateStream {
		return w.misuse("WriteHeader")
	}

	h := audio.Header{Stream: w.stream, Metadata: w.md, Attachments: w.atts}
	if err := w.mux.WriteHeader(h); err != nil {
		return fmt.Errorf("%w: header: %w", audio.ErrUnwritableDestination, err)
	}
	w.state = stateHeader

	w.log.Debug().Str("stream", w.stream.String()).Int("tags", w.md.Len()).Msg("header written")
	return nil
}

// WritePacket writes pkt to stream 0. Timestamps are rescaled to the stream
// time base and must not go backwards.
func (w *Writer) WritePacket(pkt *audio.Packet) error {
	if w.state != stateHeader {
		return w.misuse("WritePacket")
	}
	if pkt == nil {
		return fmt.Errorf("%w: nil packet", audio.ErrWriterMisuse)
	}
	if pkt.StreamIndex != w.stream.Index {
		return fmt.Errorf("%w: packet for stream %d", audio.ErrWriterMisuse, pkt.StreamIndex)
	}

	if pkt.TimeBase.IsValid() && pkt.TimeBase != w.stream.TimeBase {
		cp := *pkt
		cp.RescaleTS(w.stream.TimeBase)
		pkt = &cp
	}
	if pkt.PTS != audio.NoPTS {
		if w.lastPTS != audio.NoPTS && pkt.PTS < w.lastPTS {
			return fmt.Errorf("%w: pts %d after %d", audio.ErrWriterMisuse, pkt.PTS, w.lastPTS)
		}
		w.lastPTS = pkt.PTS
	}

	if err := w.mux.WritePacket(pkt); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnwritableDestination, err)
	}
	w.written++
	return nil
}

// Written is the number of packets written.
func (w *Writer) Written() int64 { return w.written }

// WriteTrailer finalizes the container.
func (w *Writer) WriteTrailer() error {
	if w.state != stateHeader {
		return w.misuse("WriteTrailer")
	}
	if err := w.mux.WriteTrailer(); err != nil {
		return fmt.Errorf("%w: trailer: %w", audio.ErrUnwritableDestination, err)
	}
	w.state = stateTrailer

	w.log.Debug().Int64("packets", w.written).Msg("trailer written")
	return nil
}

// Close releases the output file. A container closed before WriteTrailer
// is left incomplete. Close is safe to call more than once.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return nil
	}
	if w.state != stateTrailer && w.state >= stateHeader {
		w.log.Warn().Str("path", w.path).Msg("output closed before trailer, file is incomplete")
	}
	w.state = stateClosed

	if w.file == nil {
		return nil
	}
	if err := w.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %w", audio.ErrUnwritableDestination, err)
	}
	return nil
}
