// Package pipeline provides the core packing pipeline for Cratestack.
//
// This package implements the complete pack → verify → render pipeline
// shared by the CLI and the HTTP API. Centralizing it keeps the two
// entry points byte-for-byte consistent and puts the caching logic in
// one place.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Pack: place the catalog items and produce a placement record
//  2. Verify: independently re-check every record invariant
//  3. Render: generate output artifacts in the requested formats
//
// Packing is deterministic, so the record stage is cached under a key
// derived from the normalized catalog and every placement-relevant
// option. Cached records are re-verified on load; a cache that hands
// back a corrupt record is treated as a miss.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Run(ctx, cat, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"github.com/matzehuels/cratestack/pkg/cache"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// Format constants for output artifacts.
const (
	FormatJSON   = "json"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
	FormatHTML   = "html"
	FormatCharts = "charts"
	FormatDOT    = "dot"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
	FormatHTML:   true,
	FormatCharts: true,
	FormatDOT:    true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: json, svg, png, pdf, html, charts, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for a pipeline run. The struct
// supports JSON serialization for API requests; zero values mean
// defaults throughout.
type Options struct {
	// Packing options. Container of all zeros means the default
	// 100x100x100 box.
	Container        [3]float64 `json:"container,omitempty"`
	SupportThreshold float64    `json:"support_threshold,omitempty"`
	Epsilon          float64    `json:"epsilon,omitempty"`
	Order            string     `json:"order,omitempty"`
	MaxAttempts      int        `json:"max_attempts,omitempty"`

	// Render options.
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Label names the run when it is persisted.
	Label string `json:"label,omitempty"`

	// Refresh bypasses the record cache.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has run.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if _, err := o.PackConfig(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// PackConfig converts the packing options into an engine
// configuration with defaults filled in.
func (o *Options) PackConfig() (pack.Config, error) {
	cfg := pack.Config{
		Container:        geom.Vec3{X: o.Container[0], Y: o.Container[1], Z: o.Container[2]},
		SupportThreshold: o.SupportThreshold,
		Epsilon:          o.Epsilon,
		Order:            pack.OrderPolicy(o.Order),
		MaxAttempts:      o.MaxAttempts,
	}
	if cfg.Container == (geom.Vec3{}) {
		cfg.Container = pack.DefaultConfig().Container
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return pack.Config{}, err
	}
	return cfg, nil
}

// RecordKeyOpts returns the cache key options for the record stage.
// Every option that changes placement output must flow through here.
func (o *Options) RecordKeyOpts(cfg pack.Config) cache.RecordKeyOpts {
	return cache.RecordKeyOpts{
		Container:        [3]float64{cfg.Container.X, cfg.Container.Y, cfg.Container.Z},
		SupportThreshold: cfg.SupportThreshold,
		Epsilon:          cfg.Epsilon,
		Order:            string(cfg.Order),
		MaxAttempts:      cfg.MaxAttempts,
	}
}

// ArtifactKeyOpts returns the cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Title:  o.Title,
		Labels: o.Labels,
	}
}
