// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Failure kinds. Components wrap one of these so callers can test with errors.Is.
var (
	ErrUnreadableContainer         = errors.New("unreadable container")
	ErrNoAudioStream               = errors.New("no audio stream")
	ErrDemuxFailed                 = errors.New("demux failed")
	ErrDecodeRejected              = errors.New("decoder rejected input")
	ErrFilterConfigInvalid         = errors.New("invalid filter configuration")
	ErrEncodeRejected              = errors.New("encoder rejected input")
	ErrUnwritableDestination       = errors.New("unwritable destination")
	ErrWriterMisuse                = errors.New("writer misuse")
	ErrUnsupportedFormatConversion = errors.New("unsupported format conversion")
)

var (
	ErrAttachmentUnsupported = errors.New("container cannot embed attachments")
	ErrUnknownSampleFormat   = errors.New("unknown sample format")
	ErrUnknownChannelLayout  = errors.New("unknown channel layout")
	ErrInvalidDstSize        = errors.New("sample count must be a multiple of channels")
)
