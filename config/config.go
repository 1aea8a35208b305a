// Package config provides configuration loading for the datacontract CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by resolve.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// DefaultTemplate is the template downloaded by init.
const DefaultTemplate = "https://datacontract.com/datacontract.init.yaml"

// DefaultLocation is the contract looked up when no location is given.
const DefaultLocation = "datacontract.yaml"

// Config represents the complete CLI configuration
type Config struct {
	Schema  SchemaConfig  `yaml:"schema"`
	Resolve ResolveConfig `yaml:"resolve"`
	Lint    LintConfig    `yaml:"lint"`
	Init    InitConfig    `yaml:"init"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// SchemaConfig selects the Data Contract Specification schema
type SchemaConfig struct {
	// Location is a path or URL (empty = embedded schema)
	Location string `yaml:"location"`
}

// ResolveConfig configures the resolve command. The switches are pointers so
// that a layer can set them back to false; nil means unset.
type ResolveConfig struct {
	// InlineDefinitions merges referenced definitions into fields
	InlineDefinitions *bool `yaml:"inline_definitions"`
	// SkipQuality leaves quality $ref payloads unresolved
	SkipQuality *bool `yaml:"skip_quality"`
	// Output is yaml or json
	Output string `yaml:"output"`
}

// ShouldInlineDefinitions reports whether InlineDefinitions is set and true.
func (r ResolveConfig) ShouldInlineDefinitions() bool {
	return r.InlineDefinitions != nil && *r.InlineDefinitions
}

// ShouldSkipQuality reports whether SkipQuality is set and true.
func (r ResolveConfig) ShouldSkipQuality() bool {
	return r.SkipQuality != nil && *r.SkipQuality
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// LintConfig configures the lint command
type LintConfig struct {
	// Locations are paths, URLs or doublestar patterns linted when none are given
	Locations []string `yaml:"locations"`
	// Format is table or json
	Format string `yaml:"format"`
}

// InitConfig configures the init command
type InitConfig struct {
	// Template is the URL or path of the template contract
	Template string `yaml:"template"`
}

// HTTPConfig configures remote fetches
type HTTPConfig struct {
	// Timeout bounds a single request
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			Location: "", // Embedded
		},
		Resolve: ResolveConfig{
			InlineDefinitions: Bool(false),
			SkipQuality:       Bool(false),
			Output:            FormatYAML,
		},
		Lint: LintConfig{
			Locations: []string{DefaultLocation},
			Format:    "table",
		},
		Init: InitConfig{
			Template: DefaultTemplate,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains([]string{FormatYAML, FormatJSON}, c.Resolve.Output) {
		return fmt.Errorf("resolve.output must be %q or %q, got %q", FormatYAML, FormatJSON, c.Resolve.Output)
	}
	if !slices.Contains([]string{"table", FormatJSON}, c.Lint.Format) {
		return fmt.Errorf("lint.format must be %q or %q, got %q", "table", FormatJSON, c.Lint.Format)
	}
	if c.Init.Template == "" {
		return fmt.Errorf("init.template is required")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values,
// and for switches it sets explicitly)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Schema.Location != "" {
		c.Schema.Location = other.Schema.Location
	}

	if other.Resolve.InlineDefinitions != nil {
		c.Resolve.InlineDefinitions = Bool(*other.Resolve.InlineDefinitions)
	}
	if other.Resolve.SkipQuality != nil {
		c.Resolve.SkipQuality = Bool(*other.Resolve.SkipQuality)
	}
	if other.Resolve.Output != "" {
		c.Resolve.Output = other.Resolve.Output
	}

	if len(other.Lint.Locations) > 0 {
		c.Lint.Locations = slices.Clone(other.Lint.Locations)
	}
	if other.Lint.Format != "" {
		c.Lint.Format = other.Lint.Format
	}

	if other.Init.Template != "" {
		c.Init.Template = other.Init.Template
	}

	if other.HTTP.Timeout != 0 {
		c.HTTP.Timeout = other.HTTP.Timeout
	}
}
