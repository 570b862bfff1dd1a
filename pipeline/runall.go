// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
)

// Job is one conversion for RunAll. Metadata and CoverArt, when set,
// replace the ones in the shared Options.
type Job struct {
	Input    container.Input
	Output   string
	Metadata *audio.Metadata
	CoverArt *audio.Attachment
}

// Convert runs a single conversion from start to finish.
func Convert(ctx context.Context, in container.Input, output string, opts Options) (Stats, error) {
	p, err := New(in, output, opts)
	if err != nil {
		return Stats{}, err
	}
	defer p.Close()

	if err := p.Run(ctx); err != nil {
		return p.Stats(), err
	}
	return p.Stats(), p.Close()
}

// RunAll converts jobs with at most limit running at once (no limit when
// limit <= 0). Jobs do not share state, so a failing job does not stop the
// others. The returned error joins every job error.
func RunAll(ctx context.Context, jobs []Job, limit int, opts Options) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	errs := make([]error, len(jobs))
	for i, job := range jobs {
		o := opts
		if job.Metadata != nil {
			o.Metadata = job.Metadata
		}
		if job.CoverArt != nil {
			o.CoverArt = job.CoverArt
		}

		g.Go(func() error {
			if _, err := Convert(ctx, job.Input, job.Output, o); err != nil {
				errs[i] = fmt.Errorf("job %d (%s): %w", i, job.Output, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
