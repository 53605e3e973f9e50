package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds configuration options for an analysis run
type Config struct {
	// ExcludeDirs are directory names skipped during file walks
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// CSSExtensions are the stylesheet-family extensions (lowercase, with dot)
	CSSExtensions []string `yaml:"css_extensions"`

	// SourceExtensions are the source-family extensions scanned for usage and pages
	SourceExtensions []string `yaml:"source_extensions"`

	// DenylistSelectors are class/ID tokens excluded from the selector universe.
	// These are framework/utility tokens that are near-universally toggled at
	// runtime and would otherwise produce false "unused" positives.
	DenylistSelectors []string `yaml:"denylist_selectors"`

	// MaxUpwardLevels bounds the ancestor-directory walk when resolving
	// framework-style asset references with no usable base
	MaxUpwardLevels int `yaml:"max_upward_levels"`

	// IncludeDepth bounds recursive scanning of PHP include/require targets
	IncludeDepth int `yaml:"include_depth"`

	// Logging selects the console log level: none, normal or debug
	Logging string `yaml:"logging"`
}

// Default returns the configuration the analyzer ships with
func Default() Config {
	return Config{
		ExcludeDirs: []string{
			"node_modules", "vendor", ".git", ".svn", ".hg",
			".idea", ".vscode", "build", "dist", "out", "coverage",
			"__pycache__", ".pytest_cache", "venv", "env", ".env", ".tox",
		},
		CSSExtensions:    []string{".css", ".scss", ".sass", ".less"},
		SourceExtensions: []string{".html", ".htm", ".php", ".js", ".jsx", ".ts", ".tsx", ".vue"},
		DenylistSelectors: []string{
			"active", "disabled", "hidden", "visible", "focus", "hover", "visited",
			"first", "last", "odd", "even", "selected", "checked", "required",
			"error", "success", "warning", "info", "primary", "secondary",
			"sm", "md", "lg", "xl", "xs", "row", "col", "container", "wrapper",
		},
		MaxUpwardLevels: 6,
		IncludeDepth:    2,
		Logging:         "normal",
	}
}

// Load reads a YAML configuration file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.MaxUpwardLevels <= 0 {
		cfg.MaxUpwardLevels = Default().MaxUpwardLevels
	}
	if cfg.IncludeDepth <= 0 {
		cfg.IncludeDepth = Default().IncludeDepth
	}
	return cfg, nil
}

// IsCSSExtension reports whether ext (lowercase, with dot) is stylesheet-family
func (c Config) IsCSSExtension(ext string) bool {
	for _, e := range c.CSSExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// IsSourceExtension reports whether ext (lowercase, with dot) is source-family
func (c Config) IsSourceExtension(ext string) bool {
	for _, e := range c.SourceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Denylist returns the denylisted tokens as a set. Entries are lowercased
// because lookups compare lowercased selector names.
func (c Config) Denylist() map[string]struct{} {
	set := make(map[string]struct{}, len(c.DenylistSelectors))
	for _, s := range c.DenylistSelectors {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}
