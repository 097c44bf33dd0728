package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
method: pad
resolution: 512
output_root: "datasets"
manifest: true
log_level: debug
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load(configFile)
	require.NoError(t, err)

	require.Equal(t, MethodPad, cfg.Method)
	require.Equal(t, 512, cfg.Resolution)
	require.Equal(t, "datasets", cfg.OutputRoot)
	require.True(t, cfg.Manifest)
	require.False(t, cfg.Watch)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("method: pad\n"), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.Equal(t, MethodPad, cfg.Method)
	require.Equal(t, DefaultResolution, cfg.Resolution)
	require.Equal(t, DefaultOutputRoot, cfg.OutputRoot)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("resolution: [1, 2"), 0644))
		_, err := Load(configFile)
		require.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := *Default()
		c.FolderPath = "raw"
		c.Name = "faces"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "valid pad", mutate: func(c *Config) { c.Method = MethodPad }},
		{name: "missing folder_path", mutate: func(c *Config) { c.FolderPath = "" }, wantErr: ErrInvalidConfig},
		{name: "missing name", mutate: func(c *Config) { c.Name = "" }, wantErr: ErrInvalidConfig},
		{name: "unsupported method", mutate: func(c *Config) { c.Method = "stretch" }, wantErr: ErrUnsupportedMethod},
		{name: "zero resolution", mutate: func(c *Config) { c.Resolution = 0 }, wantErr: ErrInvalidConfig},
		{name: "negative resolution", mutate: func(c *Config) { c.Resolution = -5 }, wantErr: ErrInvalidConfig},
		{name: "missing output_root", mutate: func(c *Config) { c.OutputRoot = "" }, wantErr: ErrInvalidConfig},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.wantErr), "Validate() error = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("crop")
	require.NoError(t, err)
	require.Equal(t, MethodCrop, m)

	m, err = ParseMethod("pad")
	require.NoError(t, err)
	require.Equal(t, MethodPad, m)

	for _, bad := range []string{"stretch", "", "Crop", "PAD"} {
		_, err := ParseMethod(bad)
		require.ErrorIs(t, err, ErrUnsupportedMethod, bad)
	}
}

func TestOutputPaths(t *testing.T) {
	c := Default()
	c.Name = "faces"
	require.Equal(t, filepath.Join("data", "faces", "images"), c.OutputDir())
	require.Equal(t, filepath.Join("data", "faces"), c.DatasetDir())
	require.Equal(t, filepath.Join("data", "faces", "manifest.yaml"), c.ManifestPath())
}
