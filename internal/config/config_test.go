package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mainprgm/internal/logger"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.False(t, cfg.Output.ShowSymbols)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "mainprgm.toml", `
[log]
level = "debug"
format = "json"

[output]
format = "yaml"
show_symbols = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Output.ShowSymbols)
	assert.True(t, cfg.Output.Color, "unset keys keep defaults")
}

func TestLoadYAML(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := writeFile(t, "mainprgm"+ext, `
log:
  level: error
output:
  format: json
  color: false
`)
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "error", cfg.Log.Level)
			assert.Equal(t, "text", cfg.Log.Format)
			assert.Equal(t, "json", cfg.Output.Format)
			assert.False(t, cfg.Output.Color)
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "cfg.ini", "", `unsupported config file extension ".ini"`},
		{"bad toml", "cfg.toml", "[log\nlevel=1", "TOML parse error"},
		{"unknown toml key", "cfg.toml", "[log]\ncolour = true", "unknown config keys: log.colour"},
		{"unknown yaml key", "cfg.yaml", "output:\n  colour: true", "YAML parse error"},
		{"bad level", "cfg.toml", "[log]\nlevel = \"loud\"", "log.level"},
		{"bad output format", "cfg.yaml", "output:\n  format: xml", "output.format"},
		{"bad log format", "cfg.yaml", "log:\n  format: logfmt", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadFromEnv(t *testing.T) {
	path := writeFile(t, "env.toml", "[output]\nformat = \"json\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	lc := cfg.LoggerConfig()
	assert.Equal(t, logger.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Empty(t, lc.LogFile)
}
