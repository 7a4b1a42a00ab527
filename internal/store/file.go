package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists the token as a small JSON document per profile,
// the on-disk analogue of a browser profile's local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store for profile under dir
func NewFileStore(dir, profile string) (*FileStore, error) {
	if profile == "" || strings.ContainsAny(profile, `/\`) || strings.Contains(profile, "..") {
		return nil, fmt.Errorf("invalid session profile %q", profile)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	return &FileStore{path: filepath.Join(dir, profile+".json")}, nil
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

// Read returns the persisted token
func (f *FileStore) Read(ctx context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", false, err
	}

	token, ok := entries[TokenKey]
	if !ok || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Write persists the token
func (f *FileStore) Write(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking login
		entries = map[string]string{}
	}
	entries[TokenKey] = token

	return f.save(entries)
}

// Clear removes the persisted token
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil || len(entries) <= 1 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	delete(entries, TokenKey)
	return f.save(entries)
}

func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return entries, nil
}

// save writes atomically via a temp file and rename
func (f *FileStore) save(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
