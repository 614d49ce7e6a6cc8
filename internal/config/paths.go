package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the user-level config file path, following the
// XDG Base Directory Specification via os.UserConfigDir.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "oasis-harness", "config.yml"), nil
}

// ProjectConfigPath returns the project-level config file path, relative to
// the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".oasis-harness", "config.yml")
}
