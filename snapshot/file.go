package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists each snapshot as one file under a base directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written snapshot behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the snapshot file for key, or returns nil if absent.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: load %s: %w", key, err)
	}
	return data, nil
}

// Save writes data atomically to the snapshot file for key.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("snapshot: rename %s: %w", key, err)
	}
	return nil
}

// Close releases nothing; it exists to satisfy Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	// Keys look like "post/abc"; the kind becomes a subdirectory-free
	// prefix so the store stays a flat directory.
	name := strings.ReplaceAll(key, "/", "_")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".snap")
}
