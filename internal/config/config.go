package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrIO wraps failures writing the settings file.
var ErrIO = errors.New("settings i/o failure")

// FileName is the settings document inside the data directory.
const FileName = "settings.json"

// Settings holds the device and layout configuration.
type Settings struct {
	PortName      string `json:"port_name"`
	Channel       int    `json:"channel"`
	Profile       string `json:"profile"`
	Icon          string `json:"icon"`
	Font          string `json:"font"`
	Size          int    `json:"size"`
	ButtonsPerRow int    `json:"buttons_per_row"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		PortName:      "",
		Channel:       0,
		Profile:       "default.json",
		Icon:          "icon.icns",
		Font:          "Arial",
		Size:          12,
		ButtonsPerRow: 4,
	}
}

// MaxChannel is the highest channel a settings file may name.
const MaxChannel = 16

// FillDefaults replaces unset layout fields left out of older files and a
// channel outside 0-MaxChannel.
func (s *Settings) FillDefaults() {
	def := Default()
	if s.Channel < 0 || s.Channel > MaxChannel {
		slog.Warn("settings channel out of range, using default", "channel", s.Channel, "default", def.Channel)
		s.Channel = def.Channel
	}
	if s.Profile == "" {
		s.Profile = def.Profile
	}
	if s.Icon == "" {
		s.Icon = def.Icon
	}
	if s.Font == "" {
		s.Font = def.Font
	}
	if s.Size <= 0 {
		s.Size = def.Size
	}
	if s.ButtonsPerRow <= 0 {
		s.ButtonsPerRow = def.ButtonsPerRow
	}
}

// Clone returns a copy.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}

// DefaultDir returns the platform-appropriate data directory
func DefaultDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "ampswitcher"), nil
}

// Store loads and saves the settings document of one data directory.
type Store struct {
	path string
}

// NewStore returns a store for dir/settings.json.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings. It never fails: a missing or unreadable file
// yields the defaults.
func (s *Store) Load() *Settings {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.Warn("settings file not found, using defaults", "file", s.path)
		return Default()
	}
	if err != nil {
		slog.Error("error reading settings, using defaults", "file", s.path, "err", err)
		return Default()
	}

	settings, err := Parse(data)
	if err != nil {
		slog.Error("error loading settings, using defaults", "file", s.path, "err", err)
		return Default()
	}
	return settings
}

// Save writes the full settings document. Failures are logged and returned
// so the caller can report them.
func (s *Store) Save(settings *Settings) error {
	if err := s.save(settings); err != nil {
		slog.Error("error saving settings", "file", s.path, "err", err)
		return err
	}
	slog.Info("saved settings", "file", s.path)
	return nil
}

func (s *Store) save(settings *Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	data, err := Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Parse decodes a settings document and fills in missing layout fields.
func Parse(data []byte) (*Settings, error) {
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	settings.FillDefaults()
	return &settings, nil
}

// Marshal encodes settings as indented JSON.
func Marshal(settings *Settings) ([]byte, error) {
	return json.MarshalIndent(settings, "", "    ")
}
