package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/config"
	"github.com/bnema/streamview/internal/template"
)

func TestCapsSummary(t *testing.T) {
	assert.Equal(t, "markdown", capsSummary(bundle.Capabilities{}))
	assert.Equal(t, "markdown, syntax highlighting",
		capsSummary(bundle.Capabilities{SyntaxHighlighting: true}))
	assert.Equal(t, "markdown, syntax highlighting, math, diagrams",
		capsSummary(bundle.Capabilities{SyntaxHighlighting: true, Math: true, Diagrams: true}))
}

func TestApproxSize(t *testing.T) {
	assert.Equal(t, "~48 KiB", approxSize(48<<10))
	assert.Equal(t, "~1.5 MiB", approxSize(1536<<10))
}

func TestBundleLoaderPrefersConfiguredDir(t *testing.T) {
	cfg := config.DefaultConfig()
	_, embedded := bundleLoader(cfg).(bundle.EmbeddedLoader)
	assert.True(t, embedded)

	cfg.Bundles.Dir = t.TempDir()
	overlay, ok := bundleLoader(cfg).(bundle.OverlayLoader)
	assert.True(t, ok)
	assert.Equal(t, bundle.FileLoader{Dir: cfg.Bundles.Dir}, overlay.Primary)
}

func TestTemplateOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Render.ScrollEnabled = false
	cfg.Appearance.ColorScheme = config.ColorSchemeDark

	opts := templateOptions(cfg)
	assert.False(t, opts.ScrollEnabled)
	assert.Equal(t, template.ColorScheme("dark"), opts.ColorScheme)
}
