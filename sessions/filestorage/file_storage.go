package filestorage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/sessions"
)

var _ sessions.Storage = (*Storage)(nil)

// Storage keeps session keys in a single JSON file, rewritten on every change.
// With a passphrase the file is sealed (see seal.go) instead of plain JSON.
type Storage struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	discard    bool
	values     map[string]string
}

// Option configures a file Storage.
type Option func(*Storage)

// WithPassphrase seals the file contents with a key derived from passphrase.
func WithPassphrase(passphrase string) Option {
	return func(s *Storage) {
		s.passphrase = passphrase
	}
}

// WithDiscardUnreadable starts from an empty session when the file exists but
// cannot be decrypted or decoded. The file is replaced on the next write.
func WithDiscardUnreadable() Option {
	return func(s *Storage) {
		s.discard = true
	}
}

// New opens (or prepares) the session file at path. A missing file is an empty
// storage; the directory is created on first write.
func New(path string, options ...Option) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("[filestorage New] path is required")
	}
	s := &Storage{
		path:   path,
		values: map[string]string{},
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file backing the storage.
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	s.values[key] = value
	if err := s.saveLocked(); err != nil {
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.saveLocked(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("[filestorage load] %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	loaded, err := s.decode(b)
	if err != nil {
		if s.discard {
			return nil
		}
		return err
	}
	s.values = loaded
	return nil
}

func (s *Storage) decode(b []byte) (map[string]string, error) {
	var err error
	if s.passphrase != "" {
		if b, err = open(b, s.passphrase); err != nil {
			return nil, fmt.Errorf("[filestorage load] %w", err)
		}
	}

	loaded := map[string]string{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil, fmt.Errorf("[filestorage load] decoding %s: %w: %v", s.path, apperrors.ErrCorruptSession, err)
	}
	return loaded, nil
}

// saveLocked writes to a temp file and renames it over the original, so a
// crash never leaves a half-written session behind.
func (s *Storage) saveLocked() error {
	b, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		if b, err = seal(b, s.passphrase); err != nil {
			return fmt.Errorf("[filestorage save] %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestorage save] %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("[filestorage save] %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[filestorage save] %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[filestorage save] %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestorage save] %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestorage save] %w", err)
	}
	return nil
}
