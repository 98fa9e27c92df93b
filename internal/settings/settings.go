// Package settings persists the marker settings document.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings is the persisted marker configuration.
type Settings struct {
	Marker      string `json:"marker" toml:"marker"`
	StoragePath string `json:"storagePath" toml:"storagePath"`
}

// Disabled reports whether scanning is turned off (empty or whitespace marker).
func (s Settings) Disabled() bool {
	return strings.TrimSpace(s.Marker) == ""
}

// FileStore keeps Settings in a single document on disk.
// Paths ending in .toml are read and written as TOML, everything else as JSON.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing document yields default (empty) settings.
func (s *FileStore) Load(ctx context.Context) (Settings, error) {
	var out Settings

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}

	if s.isTOML() {
		if _, err := toml.Decode(string(data), &out); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings %s: %w", s.path, err)
		}
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", s.path, err)
	}
	return out, nil
}

// Save writes the document, creating its directory when needed.
func (s *FileStore) Save(ctx context.Context, settings Settings) error {
	var (
		data []byte
		err  error
	)
	if s.isTOML() {
		data, err = toml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".toml")
}
