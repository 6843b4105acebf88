package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrNoActiveProfile is returned by preset operations when no
// profile is active.
var ErrNoActiveProfile = errors.New("no active profile")

// Preset is a named, normalized camera position.
type Preset struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Pan   float64 `json:"pan"`
	Tilt  float64 `json:"tilt"`
	Zoom  float64 `json:"zoom"`
	Color string  `json:"color"`
}

// Profile is a named collection of presets for a camera setup.
type Profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	CameraFOVDegrees float64  `json:"camera_fov_degrees"`
	EndpointID       string   `json:"endpoint_id,omitempty"`
	Presets          []Preset `json:"presets"`
}

type profileFile struct {
	Profiles        []Profile `json:"profiles"`
	ActiveProfileID string    `json:"active_profile_id,omitempty"`
}

// ProfileStore manages preset profiles and their persistence.
type ProfileStore struct {
	mu   sync.Mutex
	data profileFile
	path string
}

func LoadProfiles(dataDir string) *ProfileStore {
	s := &ProfileStore{path: filepath.Join(dataDir, "profiles.json")}
	loadJSON(s.path, &s.data)
	return s
}

func (s *ProfileStore) All() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Profile(nil), s.data.Profiles...)
}

func (s *ProfileStore) Active() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return Profile{}, false
	}
	return *p, true
}

func (s *ProfileStore) activeLocked() *Profile {
	if s.data.ActiveProfileID == "" {
		return nil
	}
	for i := range s.data.Profiles {
		if s.data.Profiles[i].ID == s.data.ActiveProfileID {
			return &s.data.Profiles[i]
		}
	}
	return nil
}

func (s *ProfileStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.Profiles {
		if p.ID == id {
			s.data.ActiveProfileID = id
			return saveJSON(s.path, s.data)
		}
	}
	return fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// Create appends a profile. The first profile created becomes
// active automatically.
func (s *ProfileStore) Create(p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Profiles = append(s.data.Profiles, p)
	if s.data.ActiveProfileID == "" {
		s.data.ActiveProfileID = p.ID
	}
	if err := saveJSON(s.path, s.data); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Save replaces a profile by ID or appends it when unknown.
func (s *ProfileStore) Save(p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Profiles {
		if s.data.Profiles[i].ID == p.ID {
			s.data.Profiles[i] = p
			if err := saveJSON(s.path, s.data); err != nil {
				return Profile{}, err
			}
			return p, nil
		}
	}
	s.data.Profiles = append(s.data.Profiles, p)
	if err := saveJSON(s.path, s.data); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *ProfileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.data.Profiles {
		if p.ID != id {
			continue
		}
		s.data.Profiles = append(s.data.Profiles[:i], s.data.Profiles[i+1:]...)
		if s.data.ActiveProfileID == id {
			s.data.ActiveProfileID = ""
			if len(s.data.Profiles) > 0 {
				s.data.ActiveProfileID = s.data.Profiles[0].ID
			}
		}
		return saveJSON(s.path, s.data)
	}
	return fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// EnsureDefault guarantees at least one profile exists.
func (s *ProfileStore) EnsureDefault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data.Profiles) > 0 {
		return nil
	}
	p := Profile{
		ID:               uuid.NewString(),
		Name:             "Default",
		CameraFOVDegrees: 60.0,
	}
	s.data.Profiles = append(s.data.Profiles, p)
	s.data.ActiveProfileID = p.ID
	return saveJSON(s.path, s.data)
}

// Presets returns the active profile's presets, or nil when no
// profile is active.
func (s *ProfileStore) Presets() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return nil
	}
	return append([]Preset(nil), p.Presets...)
}

func (s *ProfileStore) CreatePreset(preset Preset) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return Preset{}, ErrNoActiveProfile
	}
	p.Presets = append(p.Presets, preset)
	if err := saveJSON(s.path, s.data); err != nil {
		return Preset{}, err
	}
	return preset, nil
}

func (s *ProfileStore) UpdatePreset(preset Preset) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return Preset{}, ErrNoActiveProfile
	}
	for i := range p.Presets {
		if p.Presets[i].ID == preset.ID {
			p.Presets[i] = preset
			if err := saveJSON(s.path, s.data); err != nil {
				return Preset{}, err
			}
			return preset, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q: %w", preset.ID, ErrNotFound)
}

func (s *ProfileStore) DeletePreset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return ErrNoActiveProfile
	}
	for i, pr := range p.Presets {
		if pr.ID == id {
			p.Presets = append(p.Presets[:i], p.Presets[i+1:]...)
			return saveJSON(s.path, s.data)
		}
	}
	return fmt.Errorf("preset %q: %w", id, ErrNotFound)
}

func (s *ProfileStore) FindPreset(id string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeLocked()
	if p == nil {
		return Preset{}, false
	}
	for _, pr := range p.Presets {
		if pr.ID == id {
			return pr, true
		}
	}
	return Preset{}, false
}
