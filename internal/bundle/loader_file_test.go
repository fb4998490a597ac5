package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoaderReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streamdown.minimal.js"), []byte("// override"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streamdown.full.css"), []byte(".x{}"), 0o644))

	l := FileLoader{Dir: dir}

	script, err := l.Script(VariantMinimal)
	require.NoError(t, err)
	assert.Equal(t, "// override", script)

	_, err = l.Script(VariantBalanced)
	assert.Error(t, err)

	style, err := l.Style(VariantFull)
	require.NoError(t, err)
	assert.Equal(t, ".x{}", style)

	style, err = l.Style(VariantMinimal)
	require.NoError(t, err)
	assert.Empty(t, style)
}

func TestOverlayLoaderFallsBackPerArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streamdown.minimal.js"), []byte("// override"), 0o644))

	l := OverlayLoader{Primary: FileLoader{Dir: dir}, Base: EmbeddedLoader{}}

	script, err := l.Script(VariantMinimal)
	require.NoError(t, err)
	assert.Equal(t, "// override", script)

	// Not overridden: served from the embedded copy.
	script, err = l.Script(VariantBalanced)
	require.NoError(t, err)
	assert.NotEmpty(t, script)

	cache := NewCache(l)
	entry, ok := cache.Get(context.Background(), VariantFull)
	require.True(t, ok)
	assert.Equal(t, VariantFull, entry.Variant)
	assert.NotEmpty(t, entry.Style)
}
