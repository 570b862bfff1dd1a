// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
)

// Options configure one conversion job. The zero value converts with the
// built-in formats, no filters and no tags.
type Options struct {
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
	// Registry defaults to container.Init().
	Registry *audio.Registry

	// Filter is a filter graph spec such as "volume=0.8". Empty means anull.
	Filter string
	// SampleRate and SampleFormat override what the encoder would pick.
	SampleRate   int
	SampleFormat audio.SampleFormat
	// Format names the output format. Empty picks it from the output extension.
	Format string
	// FrameSamples caps decoded frame length, codec.DefaultFrameSamples when 0.
	FrameSamples int

	Metadata *audio.Metadata
	// CoverArt is embedded when the output format supports pictures and
	// skipped with a warning otherwise.
	CoverArt *audio.Attachment
	// CopyInputMetadata uses the input container tags when Metadata is empty.
	CopyInputMetadata bool
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o Options) containerOptions(log zerolog.Logger) []container.Option {
	opts := []container.Option{container.WithLogger(log)}
	if o.Registry != nil {
		opts = append(opts, container.WithRegistry(o.Registry))
	}
	return opts
}
