// SPDX-License-Identifier: EPL-2.0

package container

import (
	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
)

type options struct {
	registry *audio.Registry
	log      zerolog.Logger
}

type Option func(*options)

// WithRegistry replaces the shared registry returned by Init.
func WithRegistry(reg *audio.Registry) Option {
	return func(o *options) { o.registry = reg }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = Init()
	}
	return o
}
