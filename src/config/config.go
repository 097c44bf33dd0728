package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnsupportedMethod is returned for a squaring method other than crop or pad
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// Method selects how a rectangular image is made square
type Method string

const (
	MethodCrop Method = "crop"
	MethodPad  Method = "pad"
)

const (
	DefaultResolution = 256
	DefaultOutputRoot = "data"
	DefaultLogLevel   = "info"
)

// ParseMethod converts a CLI or YAML value into a Method
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodCrop, MethodPad:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q: 'method' should be one of [crop, pad]", ErrUnsupportedMethod, s)
	}
}

// Config holds the parameters of one normalization run
type Config struct {
	// Set from the command line only
	FolderPath string `yaml:"-"`
	Name       string `yaml:"-"`

	Method     Method `yaml:"method"`
	Resolution int    `yaml:"resolution"`
	OutputRoot string `yaml:"output_root"`
	Manifest   bool   `yaml:"manifest"`
	Watch      bool   `yaml:"watch"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration used when neither a file nor flags override it
func Default() *Config {
	return &Config{
		Method:     MethodCrop,
		Resolution: DefaultResolution,
		OutputRoot: DefaultOutputRoot,
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads a YAML defaults file on top of Default.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the whole configuration. It must pass before anything
// touches the filesystem.
func (c *Config) Validate() error {
	if c.FolderPath == "" {
		return fmt.Errorf("%w: folder_path is required", ErrInvalidConfig)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be a positive integer, got %d", ErrInvalidConfig, c.Resolution)
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("%w: output_root is required", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DatasetDir returns <output_root>/<name>
func (c *Config) DatasetDir() string {
	return filepath.Join(c.OutputRoot, c.Name)
}

// OutputDir returns the directory images are written to: <output_root>/<name>/images
func (c *Config) OutputDir() string {
	return filepath.Join(c.DatasetDir(), "images")
}

// ManifestPath returns where the optional manifest is written
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DatasetDir(), "manifest.yaml")
}
