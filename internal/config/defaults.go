package config

import "fmt"

const (
	DefaultTemplate = "default"
	DefaultRenderer = "pandoc --to html5 --standalone"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&RenderDefaultApplier{},
			&PreRunDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// RenderDefaultApplier handles renderer and template defaults.
type RenderDefaultApplier struct{}

func (r *RenderDefaultApplier) Domain() string { return "render" }

func (r *RenderDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.DefaultTemplate == "" {
		cfg.DefaultTemplate = DefaultTemplate
	}
	if cfg.Renderer == "" {
		cfg.Renderer = DefaultRenderer
	}
	return nil
}

// PreRunDefaultApplier handles pre-run step defaults. Replace defaults to
// true while decoding; see PreRun.UnmarshalYAML.
type PreRunDefaultApplier struct{}

func (p *PreRunDefaultApplier) Domain() string { return "pre_run" }

func (p *PreRunDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.PreRun {
		if cfg.PreRun[i].ErrorOn == "" {
			cfg.PreRun[i].ErrorOn = ErrorOnNone
		}
	}
	return nil
}
