package config

import (
	"os"
	"path/filepath"
)

// DefaultCatalogPath is where the language/verdict catalog is looked up when
// --catalog is not given. It is relative to the working directory.
const DefaultCatalogPath = "config.json"

// DefaultSettingsPath returns the default settings path.
//
// Note: this function does not create directories or files.
func DefaultSettingsPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cf-submissions", "config.yaml"), nil
}
