package apiclient

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Session holds the access token sent with every API call.
type Session interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// MemorySession keeps the token in process memory.
type MemorySession struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySession returns a session pre-populated with token, which may be empty.
func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (s *MemorySession) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemorySession) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemorySession) Clear() error {
	return s.SetToken("")
}

// sessionFile is the on-disk layout of a FileSession.
type sessionFile struct {
	AccessToken string `toml:"access_token"`
}

// FileSession persists the token in a TOML file readable only by its owner.
type FileSession struct {
	mu   sync.Mutex
	path string
}

// NewFileSession returns a session stored at path. The file is created on
// the first SetToken.
func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// Path returns the backing file.
func (s *FileSession) Path() string { return s.path }

func (s *FileSession) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: read %s: %w", s.path, err)
	}

	var f sessionFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("session: parse %s: %w", s.path, err)
	}
	return f.AccessToken, nil
}

func (s *FileSession) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(sessionFile{AccessToken: token})
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove %s: %w", s.path, err)
	}
	return nil
}
