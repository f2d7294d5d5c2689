package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bazaar-be/internal/logger"

	"go.uber.org/zap"
)

// Store persists the cart between sessions.
type Store interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// FileStore keeps the cart as a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load returns the saved items. A missing file is an empty cart, and so is
// an unreadable one, which is logged and left to be overwritten.
func (s *FileStore) Load() ([]Item, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	items := []Item{}
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.L().Warn("discarding unreadable cart file", zap.String("path", s.path), zap.Error(err))
		return []Item{}, nil
	}
	return items, nil
}

// Save replaces the file atomically.
func (s *FileStore) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return os.Rename(tmp, s.path)
}
