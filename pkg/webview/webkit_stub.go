//go:build !webkit_cgo

package webview

import (
	"context"

	"github.com/rs/zerolog"
)

// NewWebKitFactory is a stub in non-CGO builds; acquiring from it reports the
// backend unavailable so callers fall back to the headless engine.
func NewWebKitFactory(_ zerolog.Logger) Factory {
	return func(_ context.Context) (Engine, error) {
		return nil, ErrEngineUnavailable
	}
}
