package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	return filepath.Join(dir, appName)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolateConfig(t)

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "balanced", cfg.DefaultVariant)
	assert.Equal(t, 2, cfg.Pool.TargetSize)
	assert.Equal(t, ColorSchemeAuto, cfg.Appearance.ColorScheme)
	assert.True(t, cfg.Render.ScrollEnabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, m.ConfigFileUsed())
}

func TestLoadFromTOMLFile(t *testing.T) {
	configDir := isolateConfig(t)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	content := `default_variant = "full"

[pool]
target_size = 4

[pool.variant_targets]
minimal = 1

[appearance]
color_scheme = "dark"

[render]
scroll_enabled = false
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "full", cfg.DefaultVariant)
	assert.Equal(t, 4, cfg.Pool.TargetSize)
	assert.Equal(t, 1, cfg.Pool.VariantTargets["minimal"])
	assert.Equal(t, ColorSchemeDark, cfg.Appearance.ColorScheme)
	assert.False(t, cfg.Render.ScrollEnabled)
}

func TestEnvironmentOverrides(t *testing.T) {
	isolateConfig(t)
	t.Setenv("STREAMVIEW_LOG_LEVEL", "debug")
	t.Setenv("STREAMVIEW_LOG_FORMAT", "json")
	t.Setenv("STREAMVIEW_DEFAULT_VARIANT", "minimal")

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "minimal", cfg.DefaultVariant)
}

func TestNormalizationRejectsGarbage(t *testing.T) {
	isolateConfig(t)
	t.Setenv("STREAMVIEW_DEFAULT_VARIANT", "gigantic")

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "balanced", cfg.DefaultVariant)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_variant")
	assert.Contains(t, string(data), "Streamview Configuration")
}

func TestWriteSchemaFile(t *testing.T) {
	isolateConfig(t)

	path, err := WriteSchemaFile()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "color_scheme")
}
