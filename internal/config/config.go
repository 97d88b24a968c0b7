package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultBaseURL matches the development server of the shop API
	DefaultBaseURL = "http://localhost:5000/api"

	// BaseURLEnv overrides the settings file base URL
	BaseURLEnv = "APICONSOLE_BASE_URL"
)

var (
	// ConfigDir is the global configuration directory (~/.apiconsole)
	ConfigDir string

	// DatabasePath is the SQLite database holding the token and history
	DatabasePath string

	// SettingsFile is the YAML settings file
	SettingsFile string

	// LogFile is the rotating log file
	LogFile string
)

// Initialize sets up the configuration directory and default settings.
// It creates ~/.apiconsole/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".apiconsole"))
}

// InitializeAt is Initialize rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "apiconsole.db")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	LogFile = filepath.Join(ConfigDir, "apiconsole.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := SaveSettings(SettingsFile, DefaultSettings()); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// NormalizeBaseURL trims surrounding whitespace and one trailing slash so
// that base + "/path" never produces a double slash
func NormalizeBaseURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(".apiconsole.yaml"); err == nil {
		return ".apiconsole.yaml"
	}
	return SettingsFile
}

// ResolvePath expands a leading ~/ and makes relative paths relative to ConfigDir
func ResolvePath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(homeDir, p[2:])
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(ConfigDir, p), nil
}
