// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/container"
	"github.com/ik5/audpipe/pipeline"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is a batch of conversion jobs.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Workers is how many jobs run at once; 0 runs them all together.
	Workers  int         `yaml:"workers"`
	Defaults JobDefaults `yaml:"defaults"`
	Jobs     []Job       `yaml:"jobs"`

	// BaseDir resolves relative paths. LoadConfigFile sets it to the
	// directory of the file.
	BaseDir string `yaml:"-"`
}

// JobDefaults apply to every job.
type JobDefaults struct {
	Filter            string `yaml:"filter"`
	SampleRate        int    `yaml:"sample_rate"`
	SampleFormat      string `yaml:"sample_format"`
	Format            string `yaml:"format"`
	FrameSamples      int    `yaml:"frame_samples"`
	CopyInputMetadata bool   `yaml:"copy_input_metadata"`
}

// Job is one input and output pair.
type Job struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Metadata Tags   `yaml:"metadata"`
	CoverArt string `yaml:"cover_art"`
}

// DefaultConfig returns a config with no jobs.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Workers:   1,
		Defaults: JobDefaults{
			Filter: "anull",
		},
	}
}

func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Options builds the pipeline options shared by every job.
func (c *Config) Options(log zerolog.Logger) (pipeline.Options, error) {
	opts := pipeline.Options{
		Logger:            &log,
		Filter:            c.Defaults.Filter,
		SampleRate:        c.Defaults.SampleRate,
		Format:            c.Defaults.Format,
		FrameSamples:      c.Defaults.FrameSamples,
		CopyInputMetadata: c.Defaults.CopyInputMetadata,
	}
	if c.Defaults.SampleFormat != "" {
		f, err := audio.ParseSampleFormat(c.Defaults.SampleFormat)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.SampleFormat = f
	}
	return opts, nil
}

// PipelineJobs turns the configured jobs into pipeline jobs, reading cover
// art from disk.
func (c *Config) PipelineJobs() ([]pipeline.Job, error) {
	jobs := make([]pipeline.Job, 0, len(c.Jobs))
	for i, j := range c.Jobs {
		job := pipeline.Job{
			Input:  container.Input{Path: c.path(j.Input)},
			Output: c.path(j.Output),
		}
		if j.Metadata.Len() > 0 {
			job.Metadata = j.Metadata.Metadata()
		}
		if j.CoverArt != "" {
			path := c.path(j.CoverArt)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("job %d: cover art: %w", i, err)
			}
			job.CoverArt = &audio.Attachment{Data: data, Ext: audio.ExtFromPath(path)}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Logger builds the logger described by LogLevel and LogFormat.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.LogFormat {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
