package config

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"recast/internal/convert"
	"recast/internal/job"
)

// Config holds the job defaults and pacing policy used by the convert command.
type Config struct {
	Format      convert.Format
	Destination string
	Quality     int
	Pacing      job.Pacing
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Quality: job.DefaultQuality,
		Pacing:  job.DefaultPacing,
	}
}

// YAMLRepository loads the configuration from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML config repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetConfig loads the configuration at path. Missing keys keep their Default value.
func (r *YAMLRepository) GetConfig(ctx context.Context, path string) (Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return Config{}, ctx.Err()
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	cfg, err := file.toModel()
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// File represents the YAML structure of the configuration file.
type File struct {
	Format      string     `yaml:"format"`
	Destination string     `yaml:"destination"`
	Quality     *int       `yaml:"quality"`
	Pacing      PacingFile `yaml:"pacing"`
}

// PacingFile represents the YAML structure of the pacing policy. Durations use Go
// duration strings ("1s", "250ms").
type PacingFile struct {
	Disabled     bool          `yaml:"disabled"`
	WarmUpTicks  int           `yaml:"warmUpTicks"`
	TickInterval time.Duration `yaml:"tickInterval"`
	FileDelay    time.Duration `yaml:"fileDelay"`
	MinDuration  time.Duration `yaml:"minDuration"`
	PaddingSteps int           `yaml:"paddingSteps"`
}

func (f File) toModel() (Config, error) {
	cfg := Default()

	if f.Format != "" {
		format, err := convert.ParseFormat(f.Format)
		if err != nil {
			return Config{}, fmt.Errorf("format: %w", err)
		}
		cfg.Format = format
	}

	cfg.Destination = f.Destination

	if f.Quality != nil {
		q := *f.Quality
		if q < job.MinQuality || q > job.MaxQuality {
			return Config{}, fmt.Errorf("quality: %w: got %d", job.ErrInvalidQuality, q)
		}
		cfg.Quality = q
	}

	p, err := f.Pacing.toModel()
	if err != nil {
		return Config{}, fmt.Errorf("pacing: %w", err)
	}
	cfg.Pacing = p

	return cfg, nil
}

func (p PacingFile) toModel() (job.Pacing, error) {
	if p.WarmUpTicks < 0 || p.PaddingSteps < 0 {
		return job.Pacing{}, fmt.Errorf("ticks and steps can't be negative")
	}
	if p.TickInterval < 0 || p.FileDelay < 0 || p.MinDuration < 0 {
		return job.Pacing{}, fmt.Errorf("durations can't be negative")
	}
	if p.Disabled {
		return job.NoPacing, nil
	}

	pacing := job.DefaultPacing
	if p.WarmUpTicks != 0 {
		pacing.WarmUpTicks = p.WarmUpTicks
	}
	if p.TickInterval != 0 {
		pacing.TickInterval = p.TickInterval
	}
	if p.FileDelay != 0 {
		pacing.FileDelay = p.FileDelay
	}
	if p.MinDuration != 0 {
		pacing.MinDuration = p.MinDuration
	}
	if p.PaddingSteps != 0 {
		pacing.PaddingSteps = p.PaddingSteps
	}
	return pacing, nil
}
