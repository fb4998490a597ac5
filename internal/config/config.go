package config

import (
	"strings"
)

// ColorScheme is the host hint passed into the bootstrap document. The
// document themes itself via a media query; the host never recomputes
// colors.
type ColorScheme string

const (
	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

// Config is the full streamview configuration.
type Config struct {
	// DefaultVariant is the bundle tier used when the caller does not pick
	// one: minimal, balanced or full.
	DefaultVariant string `mapstructure:"default_variant" json:"default_variant" jsonschema:"enum=minimal,enum=balanced,enum=full"`

	Pool       PoolConfig       `mapstructure:"pool" json:"pool"`
	Appearance AppearanceConfig `mapstructure:"appearance" json:"appearance"`
	Render     RenderConfig     `mapstructure:"render" json:"render"`
	Bundles    BundlesConfig    `mapstructure:"bundles" json:"bundles"`
	Logging    LoggingConfig    `mapstructure:"logging" json:"logging"`
}

// PoolConfig sizes the warm-instance pool.
type PoolConfig struct {
	// TargetSize is the number of warm instances kept per variant.
	TargetSize int `mapstructure:"target_size" json:"target_size" jsonschema:"minimum=1"`
	// VariantTargets overrides target_size for individual variants,
	// keyed by variant identifier.
	VariantTargets map[string]int `mapstructure:"variant_targets" json:"variant_targets,omitempty"`
}

// AppearanceConfig carries the visual hints forwarded to the document.
type AppearanceConfig struct {
	ColorScheme ColorScheme `mapstructure:"color_scheme" json:"color_scheme" jsonschema:"enum=auto,enum=light,enum=dark"`
}

// RenderConfig holds the CLI rendering toggles.
type RenderConfig struct {
	// Animate marks content updates as streaming animations.
	Animate bool `mapstructure:"animate" json:"animate"`
	// ScrollEnabled selects standalone mode: the document scrolls itself
	// instead of reporting height for an external container.
	ScrollEnabled bool `mapstructure:"scroll_enabled" json:"scroll_enabled"`
}

// BundlesConfig controls where bundle payloads come from.
type BundlesConfig struct {
	// Dir, when set, is probed for bundle artifacts before the embedded
	// copies. Development override.
	Dir string `mapstructure:"dir" json:"dir,omitempty"`
}

// LoggingConfig mirrors the STREAMVIEW_LOG_* environment switches.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *Config {
	return &Config{
		DefaultVariant: "balanced",
		Pool: PoolConfig{
			TargetSize: 2,
		},
		Appearance: AppearanceConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Render: RenderConfig{
			Animate:       false,
			ScrollEnabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func normalizeConfig(config *Config) {
	switch strings.ToLower(config.DefaultVariant) {
	case "minimal", "balanced", "full":
		config.DefaultVariant = strings.ToLower(config.DefaultVariant)
	default:
		config.DefaultVariant = "balanced"
	}

	switch ColorScheme(strings.ToLower(string(config.Appearance.ColorScheme))) {
	case ColorSchemeLight:
		config.Appearance.ColorScheme = ColorSchemeLight
	case ColorSchemeDark:
		config.Appearance.ColorScheme = ColorSchemeDark
	default:
		config.Appearance.ColorScheme = ColorSchemeAuto
	}

	if config.Pool.TargetSize <= 0 {
		config.Pool.TargetSize = DefaultConfig().Pool.TargetSize
	}
	config.Bundles.Dir = strings.TrimSpace(config.Bundles.Dir)
}
