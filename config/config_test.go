package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DefaultsApplyWithNoFileOrEnv(t *testing.T) {
	SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	s, err := Init()
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "RANDOM", s.Port)
}

func TestInit_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("PROBING_LOGLEVEL", "debug")
	SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	s, err := Init()
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadFile_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loglevel: warn\nport: \"9090\"\n"), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "9090", s.Port)
}

func TestSave_RoundTripsYAML(t *testing.T) {
	SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Init()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf))
	assert.Contains(t, buf.String(), "loglevel: info")
}
