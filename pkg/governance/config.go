package governance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileNames are searched, in order, by LoadConfigFromDir
var ConfigFileNames = []string{
	"cip116-governance.yaml",
	"cip116-governance.yml",
	".cip116-governance.yaml",
	".cip116-governance.yml",
}

// Config represents the governance configuration
type Config struct {
	Version string `yaml:"version"`
	// Rules enables or disables rules by name; unlisted rules use their default
	Rules map[string]bool `yaml:"rules"`
	// Severities overrides the severity of rules by name
	Severities map[string]Severity `yaml:"severities"`
	// AllowedFields replaces the default definition field whitelist when set
	AllowedFields []string `yaml:"allowed_fields,omitempty"`
	// ExtraAllowedFields extends the whitelist
	ExtraAllowedFields []string `yaml:"extra_allowed_fields,omitempty"`
	// IgnoreDefinitions skips per-definition rules for the named keys. They
	// still count as defined for reference resolution.
	IgnoreDefinitions []string `yaml:"ignore_definitions,omitempty"`
}

// defaultDisabled lists rules that only run when explicitly enabled
var defaultDisabled = map[string]bool{
	"unreferenced-definition": true,
}

// DefaultConfig returns the configuration used for publication checks
func DefaultConfig() *Config {
	return &Config{
		Version:    "v1",
		Rules:      make(map[string]bool),
		Severities: make(map[string]Severity),
	}
}

// RuleEnabled reports whether the named rule should run
func (c *Config) RuleEnabled(name string) bool {
	if enabled, ok := c.Rules[name]; ok {
		return enabled
	}
	return !defaultDisabled[name]
}

// SeverityFor returns the configured severity of a rule, or fallback
func (c *Config) SeverityFor(name string, fallback Severity) Severity {
	if s, ok := c.Severities[name]; ok {
		return s
	}
	return fallback
}

// Validate checks severities and whitelist entries
func (c *Config) Validate() error {
	for name, s := range c.Severities {
		if !s.Valid() {
			return fmt.Errorf("rule %s: invalid severity %q", name, s)
		}
	}
	for _, f := range append(append([]string{}, c.AllowedFields...), c.ExtraAllowedFields...) {
		if f == "" {
			return fmt.Errorf("allowed field names must not be empty")
		}
	}
	return nil
}

func (c *Config) ignored(key string) bool {
	for _, k := range c.IgnoreDefinitions {
		if k == key {
			return true
		}
	}
	return false
}

func (c *Config) allowedSet() map[string]struct{} {
	base := DefaultAllowedFields
	if len(c.AllowedFields) > 0 {
		base = c.AllowedFields
	}
	set := make(map[string]struct{}, len(base)+len(c.ExtraAllowedFields))
	for _, f := range base {
		set[f] = struct{}{}
	}
	for _, f := range c.ExtraAllowedFields {
		set[f] = struct{}{}
	}
	return set
}

// LoadConfig loads configuration from a file, on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance config %s: %w", path, err)
	}

	return config, nil
}

// LoadConfigFromDir searches for a config file in dir
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
