package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	serrors "git.home.luguber.info/inful/span/internal/errors"
)

// DefaultFileName is the configuration file looked up in the input directory.
const DefaultFileName = "span.yml"

// Config is the build configuration document.
type Config struct {
	Ignore          []string `yaml:"ignore"`
	Passthrough     []string `yaml:"passthrough"`
	PreRun          []PreRun `yaml:"pre_run"`
	Filters         []Filter `yaml:"filters"`
	ExtraArgs       []string `yaml:"extra_args"`
	DefaultTemplate string   `yaml:"default_template"`
	// Renderer is the base render command line; extra_args, the template and
	// the filters are appended to it.
	Renderer string `yaml:"renderer"`
}

// ErrorPolicy selects which command outcome fails a pre-run step.
type ErrorPolicy string

const (
	ErrorOnNone   ErrorPolicy = "none"
	ErrorOnStdout ErrorPolicy = "stdout"
	ErrorOnStderr ErrorPolicy = "stderr"
	ErrorOnStatus ErrorPolicy = "status"
)

// Valid reports whether p is a known policy.
func (p ErrorPolicy) Valid() bool {
	switch p {
	case ErrorOnNone, ErrorOnStdout, ErrorOnStderr, ErrorOnStatus:
		return true
	}
	return false
}

// PreRun is a command applied to every file matching Files before rendering.
type PreRun struct {
	Command string      `yaml:"command"`
	Files   []string    `yaml:"files"`
	ErrorOn ErrorPolicy `yaml:"error_on"`
	Replace bool        `yaml:"replace"`
}

// UnmarshalYAML applies the per-step defaults (error_on none, replace true)
// before decoding, so omitted keys keep them.
func (p *PreRun) UnmarshalYAML(value *yaml.Node) error {
	type raw PreRun
	r := raw{ErrorOn: ErrorOnNone, Replace: true}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*p = PreRun(r)
	return nil
}

// Filter is a renderer filter applied to the files matching Files.
type Filter struct {
	Path  string   `yaml:"path"`
	Files []string `yaml:"files"`
}

// Load reads, expands, decodes, defaults and validates the configuration at
// configPath. Environment files next to it are loaded first so ${VAR}
// references can use them.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	if _, err := os.Stat(configPath); err != nil {
		return nil, serrors.ConfigNotFound(configPath, err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, serrors.ReadFailed(configPath, serrors.CategoryConfig, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, serrors.ConfigInvalid(configPath, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document after environment expansion, then
// applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const exampleConfig = `# span build configuration.
#
# The input directory holds contents/<lang>/..., templates/ and optionally
# snippets/. Globs match paths relative to the input directory; '*' does not
# cross '/', '**' does.

# Files dropped before anything else happens.
ignore:
  - "**/.*"
  - "**/*~"

# Files copied to the output unchanged. Files below contents/ land next to
# the pages rendered from the same folder; others keep their input path.
passthrough:
  - "contents/**/*.css"
  - "contents/**/*.png"
  - "contents/**/*.jpg"

# Commands run over matching files in order. %i and %o are replaced by
# temporary input and output files; otherwise content is piped.
# error_on: none | stdout | stderr | status (non-zero exit)
pre_run:
  - command: cat
    files: ["contents/**.md"]
    error_on: status
    replace: true

# Renderer filters, added as --filter=<path> for matching files.
filters: []

# Extra arguments appended to the renderer command line.
extra_args: []

# Template used when no template matches a content file by name.
default_template: default

# Base render command.
renderer: pandoc --to html5 --standalone
`
