// ABOUTME: XDG Base Directory helpers
// ABOUTME: Resolves the config directory and default config file path
package config

import (
	"os"
	"path/filepath"
)

// GetConfigHome returns XDG_CONFIG_HOME or fallback to ~/.config
func GetConfigHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home := os.Getenv("HOME")
	return filepath.Join(home, ".config")
}

// DefaultPath returns the config.toml location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(GetConfigHome(), AppName, "config.toml")
}
