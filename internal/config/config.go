// Package config loads gen-file-index settings.
//
// Settings are applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. Project config (.fileindex.yaml in the data root)
//  3. Environment variables (FILEINDEX_*), optionally seeded from a .env file
//  4. Command-line flags (applied by the caller)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/airspacemap/gen-file-index/internal/logging"
)

// DefaultRoot is the data directory indexed when nothing else is configured.
const DefaultRoot = "data"

// DefaultOutput is the index file name, relative to the root.
const DefaultOutput = "file-index.json"

// FileNames lists accepted project config file names, in lookup order.
var FileNames = []string{".fileindex.yaml", ".fileindex.yml"}

// Config is the complete indexer configuration.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// Domains are the top-level directories to index (e.g. tracon, enroute).
	Domains []string `yaml:"domains" json:"domains"`

	// Extensions are literal, case-sensitive file name suffixes to index.
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Output is the index file path. Relative paths are resolved against the root.
	Output string `yaml:"output" json:"output"`

	// RespectIgnoreFiles enables .indexignore handling.
	RespectIgnoreFiles bool `yaml:"respect_ignore_files" json:"respect_ignore_files"`

	// LogLevel is the console log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// fileConfig mirrors Config for parsing; pointers distinguish unset from zero.
type fileConfig struct {
	Version            int      `yaml:"version"`
	Domains            []string `yaml:"domains"`
	Extensions         []string `yaml:"extensions"`
	Output             string   `yaml:"output"`
	RespectIgnoreFiles *bool    `yaml:"respect_ignore_files"`
	LogLevel           string   `yaml:"log_level"`
}

// NewConfig creates a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		Version:            1,
		Domains:            []string{"tracon", "enroute"},
		Extensions:         []string{".json", ".geojson"},
		Output:             DefaultOutput,
		RespectIgnoreFiles: false,
		LogLevel:           "warn",
	}
}

// LoadDotEnv loads variables from a .env file if it exists.
// Variables already present in the environment are never overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ResolveRoot picks the data root: explicit value, then FILEINDEX_ROOT,
// then DefaultRoot.
func ResolveRoot(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("FILEINDEX_ROOT"); v != "" {
		return v
	}
	return DefaultRoot
}

// Load builds the configuration for the given data root.
// A missing project config file is not an error.
func Load(root string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(root); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FindFile returns the project config file under root, or "" if none exists.
func FindFile(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func (c *Config) loadFromFile(root string) error {
	path := FindFile(root)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies the values that were set in the file.
// Lists replace the defaults rather than extending them.
func (c *Config) mergeWith(other *fileConfig) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if len(other.Domains) > 0 {
		c.Domains = other.Domains
	}
	if len(other.Extensions) > 0 {
		c.Extensions = other.Extensions
	}
	if other.Output != "" {
		c.Output = other.Output
	}
	if other.RespectIgnoreFiles != nil {
		c.RespectIgnoreFiles = *other.RespectIgnoreFiles
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies FILEINDEX_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FILEINDEX_DOMAINS"); v != "" {
		c.Domains = splitList(v)
	}
	if v := os.Getenv("FILEINDEX_EXTENSIONS"); v != "" {
		c.Extensions = splitList(v)
	}
	if v := os.Getenv("FILEINDEX_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("FILEINDEX_RESPECT_IGNORE"); v != "" {
		c.RespectIgnoreFiles = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FILEINDEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// splitList splits a comma separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// OutputPath resolves the configured output against root.
func (c *Config) OutputPath(root string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(root, c.Output)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("domains must not be empty")
	}
	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if d == "" || d == "." || d == ".." || strings.ContainsAny(d, `/\`) {
			return fmt.Errorf("domain %q must be a plain directory name", d)
		}
		if seen[d] {
			return fmt.Errorf("domain %q listed twice", d)
		}
		seen[d] = true
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}

	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output must not be empty")
	}

	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
