package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var _ Store = (*FileStore)(nil)

type fileState struct {
	Links  []string `json:"links"`
	Titles []string `json:"titles"`
}

// FileStore keeps the set in a JSON file replaced atomically on every persist.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns an empty set when the file is missing or unreadable as JSON.
// A corrupt file is preserved next to the original with a .broken suffix.
func (s *FileStore) Load(ctx context.Context) (*Set, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("Dedup store not found, starting empty", "path", s.path)
			return NewSet(), nil
		}
		return NewSet(), fmt.Errorf("failed to read dedup store: %w", err)
	}

	set, err := decodeState(data)
	if err != nil {
		brokenPath := s.path + ".broken"
		if writeErr := os.WriteFile(brokenPath, data, 0644); writeErr != nil {
			slog.Warn("Failed to keep copy of corrupt dedup store", "path", brokenPath, "error", writeErr)
		}
		slog.Info("Dedup store is corrupt, starting empty", "path", s.path, "copy", brokenPath, "error", err)
		return NewSet(), nil
	}

	links, titles := set.Len()
	slog.Debug("Dedup store loaded", "path", s.path, "links", links, "titles", titles)

	return set, nil
}

func decodeState(data []byte) (*Set, error) {
	var state fileState
	objErr := json.Unmarshal(data, &state)
	if objErr == nil {
		return NewSetFrom(state.Links, state.Titles), nil
	}

	// processed_links.json of older deployments: a bare array of links
	var links []string
	if err := json.Unmarshal(data, &links); err == nil {
		return NewSetFrom(links, nil), nil
	}

	return nil, objErr
}

// Persist writes the set to a temp file in the same directory and renames it
// over the previous version.
func (s *FileStore) Persist(ctx context.Context, set *Set) error {
	data, err := json.MarshalIndent(fileState{Links: set.Links(), Titles: set.Titles()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dedup store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dedup store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp dedup store: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp dedup store: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace dedup store: %w", err)
	}

	links, titles := set.Len()
	slog.Info("Dedup store saved", "path", s.path, "links", links, "titles", titles)

	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
