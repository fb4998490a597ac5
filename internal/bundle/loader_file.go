package bundle

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoader serves bundle payloads from a directory, named
// streamdown.<variant>.js and streamdown.full.css. Used for development
// overrides of the embedded bundles.
type FileLoader struct {
	Dir string
}

func (l FileLoader) Script(variant Variant) (string, error) {
	path := filepath.Join(l.Dir, fmt.Sprintf("streamdown.%s.js", variant))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("bundle: script override not readable: %w", err)
	}
	return string(data), nil
}

func (l FileLoader) Style(variant Variant) (string, error) {
	if variant != VariantFull {
		return "", nil
	}
	data, err := os.ReadFile(filepath.Join(l.Dir, "streamdown.full.css"))
	if err != nil {
		return "", fmt.Errorf("bundle: style override not readable: %w", err)
	}
	return string(data), nil
}

// OverlayLoader probes Primary and falls back to Base per artifact, so a
// partial override directory still serves the remaining variants from the
// embedded copies.
type OverlayLoader struct {
	Primary Loader
	Base    Loader
}

func (l OverlayLoader) Script(variant Variant) (string, error) {
	if script, err := l.Primary.Script(variant); err == nil {
		return script, nil
	}
	return l.Base.Script(variant)
}

func (l OverlayLoader) Style(variant Variant) (string, error) {
	if style, err := l.Primary.Style(variant); err == nil {
		return style, nil
	}
	return l.Base.Style(variant)
}
