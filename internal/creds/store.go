// Package creds persists the access/refresh token pair between runs.
package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/advancepark/parkterm/pkg/domain"
)

// Store holds the current token pair and survives pair rotation.
// Implementations must be safe for concurrent use: the refresh path and the
// request path read and rotate tokens from different goroutines.
type Store interface {
	// Tokens returns the currently stored pair. A zero pair means logged out.
	Tokens() domain.TokenPair
	// Save replaces the stored pair.
	Save(pair domain.TokenPair) error
	// Clear removes any stored pair.
	Clear() error
}

// DefaultPath returns ~/.parkterm/tokens.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("creds.DefaultPath: get home dir: %w", err)
	}
	return filepath.Join(home, ".parkterm", "tokens"), nil
}

// FileStore keeps the pair in a JSON file with 0600 permissions.
type FileStore struct {
	path string

	mu     sync.RWMutex
	cached domain.TokenPair
	loaded bool
}

// NewFileStore creates a store backed by the given path. The file may not
// exist yet; that reads as logged out.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Tokens returns the stored pair, reading the file on first use.
func (s *FileStore) Tokens() domain.TokenPair {
	s.mu.RLock()
	if s.loaded {
		pair := s.cached
		s.mu.RUnlock()
		return pair
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.cached = readPairFile(s.path)
		s.loaded = true
	}
	return s.cached
}

// Save writes the pair to disk and updates the cache.
func (s *FileStore) Save(pair domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creds.Save: create dir: %w", err)
	}
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("creds.Save: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("creds.Save: write: %w", err)
	}
	s.cached = pair
	s.loaded = true
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = domain.TokenPair{}
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("creds.Clear: %w", err)
	}
	return nil
}

func readPairFile(path string) domain.TokenPair {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.TokenPair{}
	}
	var pair domain.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		// Earlier builds stored the bare access token as a single line.
		line := strings.TrimSpace(string(data))
		if line != "" && !strings.HasPrefix(line, "{") {
			return domain.TokenPair{Access: line}
		}
		return domain.TokenPair{}
	}
	return pair
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.RWMutex
	pair domain.TokenPair
}

// NewMemStore creates a MemStore seeded with the given pair.
func NewMemStore(pair domain.TokenPair) *MemStore {
	return &MemStore{pair: pair}
}

func (s *MemStore) Tokens() domain.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *MemStore) Save(pair domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = domain.TokenPair{}
	return nil
}
