package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".censyscollect"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .censyscollect configuration file.
// All fields are optional; unset fields keep their defaults.
type File struct {
	// Query overrides the default CenQL query.
	Query string `yaml:"query,omitempty"`

	// Titles overrides the default HTML title allow-list.
	Titles []string `yaml:"titles,omitempty"`

	// Label overrides the output file name label.
	Label string `yaml:"label,omitempty"`

	// PerPage overrides the API page size.
	PerPage int `yaml:"perPage,omitempty"`

	// MaxPages overrides the page cap (0 = unlimited).
	MaxPages *int `yaml:"maxPages,omitempty"`

	// PageDelay overrides the inter-page delay (e.g. "200ms", "1s").
	PageDelay time.Duration `yaml:"pageDelay,omitempty"`

	// OutDir overrides the output directory.
	OutDir string `yaml:"outDir,omitempty"`
}

// LoadConfigFile loads defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply merges the file's non-zero values into the config.
// CLI flags are applied after this, so flags win over the file.
func (cf *File) Apply(cfg *Config) {
	if cf.Query != "" {
		cfg.Query = cf.Query
	}
	if len(cf.Titles) > 0 {
		cfg.Titles = cf.Titles
	}
	if cf.Label != "" {
		cfg.Label = cf.Label
	}
	if cf.PerPage > 0 {
		cfg.PerPage = cf.PerPage
	}
	if cf.MaxPages != nil {
		cfg.MaxPages = *cf.MaxPages
	}
	if cf.PageDelay > 0 {
		cfg.PageDelay = cf.PageDelay
	}
	if cf.OutDir != "" {
		cfg.OutDir = cf.OutDir
	}
}

// FindConfigFile searches for the configuration file in order:
//  1. the explicit path, when provided
//  2. .censyscollect in the current directory
//  3. .censyscollect in the user's home directory
//
// Returns the path if found, or empty string if not.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
