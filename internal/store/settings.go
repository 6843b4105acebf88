package store

import (
	"path/filepath"
	"sync"
)

// Settings holds user-tunable behavior persisted to config.json.
type Settings struct {
	// Multiplier for click-to-pan/tilt adjustments.
	ClickSensitivity float64 `json:"click_sensitivity"`
	// Multiplier for scroll-to-zoom adjustments.
	ScrollSensitivity float64 `json:"scroll_sensitivity"`
	// Overlay opacity, kept within 0.1 to 0.9.
	OverlayOpacity float64 `json:"overlay_opacity"`
	// Horizontal FOV at 1x zoom in degrees.
	CameraFOVDegrees float64 `json:"camera_fov_degrees"`
}

func defaultSettings() Settings {
	return Settings{
		ClickSensitivity:  0.1,
		ScrollSensitivity: 0.05,
		OverlayOpacity:    0.3,
		CameraFOVDegrees:  60.0,
	}
}

// SettingsStore persists app settings.
type SettingsStore struct {
	mu       sync.Mutex
	settings Settings
	path     string
}

func LoadSettings(dataDir string) *SettingsStore {
	s := &SettingsStore{
		settings: defaultSettings(),
		path:     filepath.Join(dataDir, "config.json"),
	}
	loadJSON(s.path, &s.settings)
	s.settings = clampSettings(s.settings)
	return s
}

func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *SettingsStore) Update(settings Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = clampSettings(settings)
	if err := saveJSON(s.path, s.settings); err != nil {
		return Settings{}, err
	}
	return s.settings, nil
}

func clampSettings(s Settings) Settings {
	if s.OverlayOpacity < 0.1 {
		s.OverlayOpacity = 0.1
	}
	if s.OverlayOpacity > 0.9 {
		s.OverlayOpacity = 0.9
	}
	return s
}
