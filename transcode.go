// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"context"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
	"github.com/ik5/audpipe/pipeline"
)

// Transcode converts the encoded audio in data into the file output. The
// output format follows the extension of output unless opts.Format is set.
func Transcode(ctx context.Context, data []byte, output string, opts pipeline.Options) (pipeline.Stats, error) {
	return pipeline.Convert(ctx, container.Input{Data: data}, output, opts)
}

// TranscodeFile is Transcode for an input file.
func TranscodeFile(ctx context.Context, input, output string, opts pipeline.Options) (pipeline.Stats, error) {
	return pipeline.Convert(ctx, container.Input{Path: input}, output, opts)
}

// TranscodeSamples encodes everything src produces into output, then
// closes src.
func TranscodeSamples(ctx context.Context, src audio.Source, output string, opts pipeline.Options) (pipeline.Stats, error) {
	return pipeline.Convert(ctx, container.Input{Source: src}, output, opts)
}

// OutputFormats lists the names of the built-in output formats.
func OutputFormats() []string {
	return container.Init().Outputs()
}
