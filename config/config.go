// Package config resolves solver options from YAML files, filling every
// field the file leaves unset with the solver defaults.
//
// A file looks like:
//
//	init: 2        # 0 correlation, 1 default, 2 zero
//	tFlag: 1       # 0 absolute, 1 relative, 2 floor, 3 max-iter
//	tol: 1e-6
//	maxIter: 500
//	pFlag: true    # parallel evaluation across tasks
//	workers: 4
//	rho1: 0.1
//	rho2: 1
//	rho3: 0.5
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	tglfista "github.com/n0madic/go-multitask-lasso/tgl-fista"
)

// Config mirrors the options file. Pointer fields distinguish "unset" from
// an explicit zero, which is a valid init mode and stop policy.
type Config struct {
	Init    *int     `yaml:"init,omitempty"`
	TFlag   *int     `yaml:"tFlag,omitempty"`
	Tol     *float64 `yaml:"tol,omitempty"`
	MaxIter *int     `yaml:"maxIter,omitempty"`
	PFlag   *bool    `yaml:"pFlag,omitempty"`
	Workers *int     `yaml:"workers,omitempty"`

	Rho1 float64 `yaml:"rho1"`
	Rho2 float64 `yaml:"rho2"`
	Rho3 float64 `yaml:"rho3"`
}

// Load reads and parses a YAML options file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML options. Unknown keys are rejected and an empty
// document yields a fully defaulted configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Resolve returns the solver options and penalty described by cfg, with
// defaults for every unset field. A nil cfg resolves to the defaults.
func Resolve(cfg *Config) (tglfista.Options, tglfista.Penalty, error) {
	opts := tglfista.DefaultOptions()
	if cfg == nil {
		return opts, tglfista.Penalty{}, nil
	}

	if cfg.Init != nil {
		opts.Init = tglfista.InitMode(*cfg.Init)
	}
	if cfg.TFlag != nil {
		opts.Stop = tglfista.StopPolicy(*cfg.TFlag)
	}
	if cfg.Tol != nil {
		opts.Tol = *cfg.Tol
	}
	if cfg.MaxIter != nil {
		opts.MaxIter = *cfg.MaxIter
	}
	if cfg.PFlag != nil {
		opts.Parallel = *cfg.PFlag
	}
	if cfg.Workers != nil {
		opts.Workers = *cfg.Workers
	}

	pen := tglfista.Penalty{Rho1: cfg.Rho1, Rho2: cfg.Rho2, Rho3: cfg.Rho3}

	if err := opts.Validate(); err != nil {
		return opts, pen, err
	}
	if err := pen.Validate(); err != nil {
		return opts, pen, err
	}

	return opts, pen, nil
}
