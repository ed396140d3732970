// Package session persists the signed-in operator's token and profile.
//
// The record lives in a TOML file (by default ~/.config/bodega/session.toml)
// and follows last-write-wins semantics: Save replaces the whole record and
// Clear removes the file. Store is safe for concurrent use within a process;
// nothing coordinates separate processes.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/bodega/internal/domain"
)

// Session is the persisted record.
type Session struct {
	Token   string    `toml:"token"`
	User    User      `toml:"user"`
	SavedAt time.Time `toml:"saved_at"`
}

// User is the profile snapshot stored next to the token.
type User struct {
	ID     int64  `toml:"id"`
	Nombre string `toml:"nombre"`
	Email  string `toml:"email"`
	Rol    string `toml:"rol"`
}

// UserFrom copies the persisted fields of a domain user.
func UserFrom(u domain.Usuario) User {
	return User{ID: u.ID, Nombre: u.Nombre, Email: u.Email, Rol: string(u.Rol)}
}

// Store reads and writes the session file.
type Store struct {
	path string

	mu     sync.RWMutex
	cached *Session
	loaded bool
}

// NewStore returns a store backed by path. The file is not touched until the
// first call.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save replaces the stored record.
func (s *Store) Save(token string, user User) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session token is empty")
	}
	rec := Session{Token: token, User: user, SavedAt: time.Now().UTC().Truncate(time.Second)}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.cached, s.loaded = &rec, true
	return nil
}

// Read returns the stored record, or ok=false when there is none.
func (s *Store) Read() (Session, bool, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		if s.cached == nil {
			return Session{}, false, nil
		}
		return *s.cached, true, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.cached, s.loaded = nil, true
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("read session: %w", err)
	}
	var rec Session
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Session{}, false, fmt.Errorf("parse session: %w", err)
	}
	if strings.TrimSpace(rec.Token) == "" {
		s.cached, s.loaded = nil, true
		return Session{}, false, nil
	}
	s.cached, s.loaded = &rec, true
	return rec, true, nil
}

// Clear removes the stored record. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	s.cached, s.loaded = nil, true
	return nil
}

// Token returns the bearer token, or "" when signed out or unreadable.
func (s *Store) Token() string {
	rec, ok, err := s.Read()
	if err != nil || !ok {
		return ""
	}
	return rec.Token
}
