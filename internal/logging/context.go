package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithVariant creates a child logger with a bundle variant field
func WithVariant(ctx context.Context, variant string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("variant", variant).Logger()
	return WithContext(ctx, childLogger)
}

// WithSessionID creates a child logger with a bridge session id field
func WithSessionID(ctx context.Context, sessionID uint64) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Uint64("session_id", sessionID).Logger()
	return WithContext(ctx, childLogger)
}
