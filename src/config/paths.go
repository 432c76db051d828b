package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
}

// GetDefaultStoragePaths returns default storage paths using XDG base directories
func GetDefaultStoragePaths() StoragePaths {
	// XDG_STATE_HOME holds runtime state data
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, "villaops", "villaops.db"),
	}
}

// GetDefaultConfigPath returns the default config file location
func GetDefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "villaops", "config.json")
}
