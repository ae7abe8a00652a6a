package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds all configuration options.
type Settings struct {
	// Device settings
	CameraModel       string `json:"camera_model"`
	InterfaceName     string `json:"interface_name"`
	DiscoverPollSecs  int    `json:"discover_poll_seconds"`
	Daemon            bool   `json:"daemon"`

	// Transfer settings
	HTTPTimeoutSecs     int   `json:"http_timeout_seconds"`
	ChunkSize           int   `json:"chunk_size"`
	ConflictMaxAttempts int   `json:"conflict_max_attempts"`

	// Layout settings
	BasePath       string `json:"base_path"`
	FlatDateDirs   bool   `json:"flat_date_dirs"`
	LedgerFileName string `json:"ledger_file_name"`

	// Thumbnail settings
	CreateThumbnails bool   `json:"create_thumbnails"`
	ThumbnailMaxSize int    `json:"thumbnail_max_size"`
	ThumbnailDirName string `json:"thumbnail_dir_name"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CameraModel:      "Canon Digital Camera",
		InterfaceName:    "eth0",
		DiscoverPollSecs: 5,
		Daemon:           false,

		HTTPTimeoutSecs:     60,
		ChunkSize:           128 * 1024,
		ConflictMaxAttempts: 3,

		FlatDateDirs:   false,
		LedgerFileName: ".sync-state",

		CreateThumbnails: false,
		ThumbnailMaxSize: 256,
		ThumbnailDirName: ".thumbs",
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: defaults are returned, matching the
// behavior of running without a config file at all.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LedgerPath returns the full path of the sync ledger file inside the
// base output directory.
func (s *Settings) LedgerPath() string {
	return filepath.Join(s.BasePath, s.LedgerFileName)
}
