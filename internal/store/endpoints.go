// Package store persists camera endpoints, preset profiles, and
// app settings as JSON files under a data directory. Each store
// loads defaults when its file is missing or unreadable and writes
// the whole file back on every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ptzhub/internal/ptz"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("not found")

// CameraEndpoint is a saved camera definition.
type CameraEndpoint struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Config ptz.ProtocolConfig `json:"config"`
}

type endpointFile struct {
	Endpoints []CameraEndpoint `json:"endpoints"`
}

// EndpointStore manages CRUD and persistence for camera endpoints.
type EndpointStore struct {
	mu   sync.Mutex
	data endpointFile
	path string
}

func LoadEndpoints(dataDir string) *EndpointStore {
	s := &EndpointStore{path: filepath.Join(dataDir, "endpoints.json")}
	loadJSON(s.path, &s.data)
	return s
}

func (s *EndpointStore) All() []CameraEndpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CameraEndpoint(nil), s.data.Endpoints...)
}

func (s *EndpointStore) Get(id string) (CameraEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ep := range s.data.Endpoints {
		if ep.ID == id {
			return ep, nil
		}
	}
	return CameraEndpoint{}, fmt.Errorf("endpoint %q: %w", id, ErrNotFound)
}

func (s *EndpointStore) Create(ep CameraEndpoint) (CameraEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Endpoints = append(s.data.Endpoints, ep)
	if err := saveJSON(s.path, s.data); err != nil {
		return CameraEndpoint{}, err
	}
	return ep, nil
}

func (s *EndpointStore) Update(ep CameraEndpoint) (CameraEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Endpoints {
		if s.data.Endpoints[i].ID == ep.ID {
			s.data.Endpoints[i] = ep
			if err := saveJSON(s.path, s.data); err != nil {
				return CameraEndpoint{}, err
			}
			return ep, nil
		}
	}
	return CameraEndpoint{}, fmt.Errorf("endpoint %q: %w", ep.ID, ErrNotFound)
}

func (s *EndpointStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ep := range s.data.Endpoints {
		if ep.ID == id {
			s.data.Endpoints = append(s.data.Endpoints[:i], s.data.Endpoints[i+1:]...)
			return saveJSON(s.path, s.data)
		}
	}
	return fmt.Errorf("endpoint %q: %w", id, ErrNotFound)
}

// loadJSON fills v from path. Missing or corrupt files leave v at
// its zero value so callers start from defaults.
func loadJSON(path string, v any) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func saveJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
