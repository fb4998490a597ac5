// Package config provides the streamview configuration surface: TOML file,
// STREAMVIEW_* environment overrides, defaults and schema export.
package config

import (
	"os"
	"path/filepath"
)

const appName = "streamview"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// GetConfigDir returns the XDG config directory for streamview
// (default: ~/.config/streamview).
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, appName), nil
}

// GetDataDir returns the XDG data directory for streamview
// (default: ~/.local/share/streamview). Bundle overrides live under it.
func GetDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, appName), nil
}

// GetConfigFile returns the path of the TOML config file.
func GetConfigFile() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// GetBundleDir returns the default directory for filesystem bundle
// overrides (default: ~/.local/share/streamview/bundles).
func GetBundleDir() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bundles"), nil
}
