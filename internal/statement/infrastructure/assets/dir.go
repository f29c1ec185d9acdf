// Package assets provides AssetStore implementations that need no external
// service: a directory, an in-memory map, generated letterheads and the
// combinators used to stack them.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	statement "statement-pdf/internal/statement/domain"
)

var defaultExtensions = []string{".png", ".jpg", ".jpeg"}

// DirStore reads assets from files named <key><ext> under Root.
type DirStore struct {
	root       string
	extensions []string
}

// NewDirStore constructs a directory-backed store.
func NewDirStore(root string, extensions ...string) (*DirStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("dir store: empty root")
	}
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	return &DirStore{root: root, extensions: extensions}, nil
}

// Fetch reads the first matching file for key.
func (s *DirStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	for _, ext := range s.extensions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.root, key+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("dir store: read %s: %w", key, err)
		}
		return data, nil
	}
	return nil, &statement.AssetNotFoundError{Key: key}
}

// validKey rejects keys that would escape the store root.
func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return &statement.AssetNotFoundError{Key: key}
	}
	return nil
}

// MemoryStore keeps assets in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// NewMemoryStore copies seed into a new store.
func NewMemoryStore(seed map[string][]byte) *MemoryStore {
	assets := make(map[string][]byte, len(seed))
	for k, v := range seed {
		assets[k] = append([]byte(nil), v...)
	}
	return &MemoryStore{assets: assets}
}

// Fetch returns a copy of the stored bytes.
func (s *MemoryStore) Fetch(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.assets[key]
	s.mu.RUnlock()
	if !ok {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	return append([]byte(nil), data...), nil
}

// Put stores data under key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("memory store: empty key")
	}
	s.mu.Lock()
	s.assets[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}
