package config

import (
	"fmt"
	"strings"

	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// ValidateConfig checks the configuration after defaults were applied. The
// first problem found is returned.
func ValidateConfig(cfg *Config) error {
	if err := validateGlobs("ignore", cfg.Ignore); err != nil {
		return err
	}
	if err := validateGlobs("passthrough", cfg.Passthrough); err != nil {
		return err
	}
	for i, pr := range cfg.PreRun {
		field := fmt.Sprintf("pre_run[%d]", i)
		if strings.TrimSpace(pr.Command) == "" {
			return serrors.ValidationFailed(field+".command", "must not be empty")
		}
		if !pr.ErrorOn.Valid() {
			return serrors.ValidationFailed(field+".error_on",
				fmt.Sprintf("unsupported value %q (expected none, stdout, stderr or status)", pr.ErrorOn))
		}
		if err := validateGlobs(field+".files", pr.Files); err != nil {
			return err
		}
	}
	for i, f := range cfg.Filters {
		field := fmt.Sprintf("filters[%d]", i)
		if strings.TrimSpace(f.Path) == "" {
			return serrors.ValidationFailed(field+".path", "must not be empty")
		}
		if err := validateGlobs(field+".files", f.Files); err != nil {
			return err
		}
	}
	if strings.Contains(cfg.DefaultTemplate, "/") {
		return serrors.ValidationFailed("default_template", "must be a file name, not a path")
	}
	if strings.TrimSpace(cfg.Renderer) == "" {
		return serrors.ValidationFailed("renderer", "must not be empty")
	}
	return nil
}

func validateGlobs(field string, globs []string) error {
	if _, err := vfs.CompileGlobs(globs); err != nil {
		return serrors.ValidationFailed(field, err.Error())
	}
	return nil
}
