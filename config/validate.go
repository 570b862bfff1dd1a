// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
)

// Validate checks if the configuration is valid. Output formats are checked
// against the built-in registry.
func (c *Config) Validate() error {
	var errs []string

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q, must be console or json", c.LogFormat))
	}
	if c.Workers < 0 {
		errs = append(errs, "workers cannot be negative (use 0 to run every job at once)")
	}

	d := c.Defaults
	if d.SampleRate < 0 {
		errs = append(errs, "sample rate cannot be negative")
	}
	if d.FrameSamples < 0 {
		errs = append(errs, "frame samples cannot be negative")
	}
	if d.SampleFormat != "" {
		if _, err := audio.ParseSampleFormat(d.SampleFormat); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(c.Jobs) == 0 {
		errs = append(errs, "at least one job is required")
	}
	for i, j := range c.Jobs {
		if j.Input == "" {
			errs = append(errs, fmt.Sprintf("job %d: input is required", i))
		}
		if j.Output == "" {
			errs = append(errs, fmt.Sprintf("job %d: output is required", i))
			continue
		}
		if _, err := container.LookupOutput(j.Output, d.Format); err != nil {
			errs = append(errs, fmt.Sprintf("job %d: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}
