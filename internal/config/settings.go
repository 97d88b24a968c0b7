package config

import (
	"fmt"
	"os"

	"github.com/Iampro1712/apiconsole/internal/types"
	"gopkg.in/yaml.v3"
)

// Settings is the on-disk console configuration
type Settings struct {
	BaseURL     string           `yaml:"baseUrl"`
	History     *bool            `yaml:"history,omitempty"`
	LogLevel    string           `yaml:"logLevel,omitempty"`
	LogFormat   string           `yaml:"logFormat,omitempty"`
	TokenField  string           `yaml:"tokenField,omitempty"` // JMESPath expression
	CatalogFile string           `yaml:"catalogFile,omitempty"`
	TLS         *types.TLSConfig `yaml:"tls,omitempty"`
}

// DefaultSettings returns the settings written on first run
func DefaultSettings() Settings {
	enabled := true
	return Settings{
		BaseURL:    DefaultBaseURL,
		History:    &enabled,
		LogLevel:   "info",
		LogFormat:  "console",
		TokenField: "access_token",
	}
}

// HistoryEnabled returns whether exchanges are recorded
func (s Settings) HistoryEnabled() bool {
	if s.History == nil {
		return true
	}
	return *s.History
}

// PipelineConfig returns the explicit pipeline configuration
func (s Settings) PipelineConfig() types.Config {
	return types.Config{BaseURL: NormalizeBaseURL(s.BaseURL)}
}

// LoadSettings reads a settings file, filling unset fields with defaults.
// A missing file yields the defaults. The environment base URL wins over the file.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	default:
		var loaded Settings
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
		}
		merge(&settings, loaded)
	}

	if env := os.Getenv(BaseURLEnv); env != "" {
		settings.BaseURL = env
	}
	settings.BaseURL = NormalizeBaseURL(settings.BaseURL)

	return settings, nil
}

// SaveSettings writes settings as YAML
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

func merge(dst *Settings, src Settings) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.History != nil {
		dst.History = src.History
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.TokenField != "" {
		dst.TokenField = src.TokenField
	}
	if src.CatalogFile != "" {
		dst.CatalogFile = src.CatalogFile
	}
	if src.TLS != nil {
		dst.TLS = src.TLS
	}
}
