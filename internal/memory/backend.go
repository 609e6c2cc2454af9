package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by a Backend that holds no document yet.
var ErrNotFound = errors.New("memory document not found")

// Backend persists the serialized memory document.
// Implementations must be safe for concurrent use.
type Backend interface {
	Load() ([]byte, error)
	Save(doc []byte) error
	Close() error
}

// FileBackend keeps the document in a single JSON file.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure memory dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read memory file: %w", err)
	}
	return data, nil
}

// Save writes to a sibling temp file and renames it over the document.
func (b *FileBackend) Save(doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func(name string) {
		_ = os.Remove(name)
	}(tmp.Name())
	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
