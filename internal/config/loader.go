package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading and access.
type Manager struct {
	config *Config
	viper  *viper.Viper
	mu     sync.RWMutex
}

// NewManager creates a configuration manager wired for the streamview
// config file and environment.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREAMVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The logging env vars predate the dotted key scheme and keep their
	// flat names.
	if err := v.BindEnv("logging.level", "STREAMVIEW_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind STREAMVIEW_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "STREAMVIEW_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind STREAMVIEW_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load reads configuration from file and environment. A missing config file
// is not an error; defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configFile := m.viper.ConfigFileUsed()
			return fmt.Errorf("failed to read config file at %s: %w", configFile, err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	normalizeConfig(config)

	m.config = config
	return nil
}

// Get returns the current configuration (thread-safe copy).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return DefaultConfig()
	}
	configCopy := *m.config
	return &configCopy
}

// ConfigFileUsed returns the path of the file the config was read from, or
// empty when only defaults and environment applied.
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("default_variant", defaults.DefaultVariant)
	m.viper.SetDefault("pool.target_size", defaults.Pool.TargetSize)
	m.viper.SetDefault("appearance.color_scheme", string(defaults.Appearance.ColorScheme))
	m.viper.SetDefault("render.animate", defaults.Render.Animate)
	m.viper.SetDefault("render.scroll_enabled", defaults.Render.ScrollEnabled)
	m.viper.SetDefault("bundles.dir", defaults.Bundles.Dir)
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}
