// Package slot stores a single named blob, the server-side stand-in for a
// browser local-storage key.
package slot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("slot: not found")

// Slot holds one blob under a fixed name. Save replaces the blob entirely.
type Slot interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileSlot keeps the blob in <dir>/<name>.json.
type FileSlot struct {
	dir  string
	name string
}

// NewFileSlot creates the directory if needed and returns a slot rooted in it.
func NewFileSlot(dir, name string) (*FileSlot, error) {
	if name == "" {
		return nil, fmt.Errorf("NewFileSlot: empty name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewFileSlot: %w", err)
	}
	return &FileSlot{dir: dir, name: name}, nil
}

func (s *FileSlot) Name() string { return s.name }

// Path is the file backing the slot.
func (s *FileSlot) Path() string {
	return filepath.Join(s.dir, s.name+".json")
}

func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FileSlot.Load: %w", err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the
// slot, so readers never observe a partial blob.
func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+s.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("FileSlot.Save: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("FileSlot.Save write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("FileSlot.Save sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("FileSlot.Save close: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("FileSlot.Save rename: %w", err)
	}
	return nil
}

// MemorySlot is an in-process Slot, used by tests and ephemeral runs.
type MemorySlot struct {
	mu   sync.RWMutex
	name string
	data []byte
	set  bool
}

func NewMemorySlot(name string) *MemorySlot {
	return &MemorySlot{name: name}
}

func (s *MemorySlot) Name() string { return s.name }

func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0:0], data...)
	s.set = true
	return nil
}
