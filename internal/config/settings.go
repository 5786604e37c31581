package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserSettings represents persistent user preferences.
type UserSettings struct {
	// Download settings
	DefaultZoom int    `json:"defaultZoom"`
	OutputDir   string `json:"outputDir"`
	Format      string `json:"format"`

	// Pipeline settings
	CropBlackEdges bool `json:"cropBlackEdges"`
	Batches        int  `json:"batches"`

	// CacheMaxTiles caps the in-memory tile cache. Negative disables
	// caching.
	CacheMaxTiles int `json:"cacheMaxTiles"`

	// Telemetry
	TelemetryEnabled bool   `json:"telemetryEnabled"`
	InstallID        string `json:"installId,omitempty"`
}

// DefaultSettings returns default user settings.
func DefaultSettings() *UserSettings {
	homeDir, _ := os.UserHomeDir()

	return &UserSettings{
		DefaultZoom:      2,
		OutputDir:        filepath.Join(homeDir, "Downloads", "streetview"),
		Format:           "jpeg",
		CropBlackEdges:   true,
		Batches:          8,
		CacheMaxTiles:    2048,
		TelemetryEnabled: false,
	}
}

// GetSettingsPath returns the settings file path.
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".streetview-download", "settings.json")
}

// LoadSettings loads user settings from the default path.
func LoadSettings() (*UserSettings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads user settings from path. A missing file yields the
// defaults; missing fields are merged from the defaults.
func LoadSettingsFrom(path string) (*UserSettings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	defaults := DefaultSettings()
	if settings.DefaultZoom == 0 {
		settings.DefaultZoom = defaults.DefaultZoom
	}
	if settings.OutputDir == "" {
		settings.OutputDir = defaults.OutputDir
	}
	if settings.Format == "" {
		settings.Format = defaults.Format
	}
	if settings.Batches == 0 {
		settings.Batches = defaults.Batches
	}
	if settings.CacheMaxTiles == 0 {
		settings.CacheMaxTiles = defaults.CacheMaxTiles
	}

	return &settings, nil
}

// SaveSettings saves user settings to the default path.
func SaveSettings(settings *UserSettings) error {
	return SaveSettingsTo(GetSettingsPath(), settings)
}

// SaveSettingsTo saves user settings to path, creating the directory when
// needed.
func SaveSettingsTo(path string, settings *UserSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
