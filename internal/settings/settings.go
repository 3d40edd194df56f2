// Package settings persists the non-secret user settings between runs.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go-guildsync/pkg/swgoh"
)

// FileName is the settings file inside the data directory
const FileName = "settings.json"

// Settings are the remembered inputs. The password is never stored.
type Settings struct {
	Username string           `json:"username"`
	UserID   string           `json:"user_id"`
	AllyCode swgoh.AllyCode   `json:"ally_code"`
	Alliance []swgoh.AllyCode `json:"alliance"`
}

// Store reads and writes settings as JSON in the data directory
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings
}

// NewStore creates a store for dataDir. Nothing is read until LoadOrCreate.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, FileName)}
}

func (s *Store) Path() string {
	return s.path
}

// LoadOrCreate reads the settings file. A missing or unreadable file yields defaults.
func (s *Store) LoadOrCreate() Settings {
	loaded, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read settings, using defaults", "path", s.path, "error", err)
		}
		loaded = Settings{}
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

func (s *Store) read() (Settings, error) {
	var loaded Settings
	data, err := os.ReadFile(s.path)
	if err != nil {
		return loaded, err
	}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return Settings{}, err
	}
	return loaded, nil
}

// Get returns a copy of the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.current
	out.Alliance = append([]swgoh.AllyCode(nil), s.current.Alliance...)
	return out
}

// Save replaces and persists the settings
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	s.current = settings
	return nil
}

// SaveCredentials remembers the username, user id and ally code of a successful login
func (s *Store) SaveCredentials(creds swgoh.Credentials) error {
	next := s.Get()
	next.Username = creds.Username
	next.UserID = ""
	if creds.UserID != 0 {
		next.UserID = fmt.Sprint(creds.UserID)
	}
	next.AllyCode = creds.AllyCode
	return s.Save(next)
}

// SetAlliance replaces the saved alliance ally codes
func (s *Store) SetAlliance(codes []swgoh.AllyCode) error {
	next := s.Get()
	next.Alliance = append([]swgoh.AllyCode(nil), codes...)
	return s.Save(next)
}

// AllianceCodes returns the saved alliance ally codes
func (s *Store) AllianceCodes() []swgoh.AllyCode {
	return s.Get().Alliance
}

// CredentialUpdater accepts credentials as entered
type CredentialUpdater interface {
	UpdateCredentials(username, password, userID, allyCode string) (bool, error)
}

// Apply seeds the session with the remembered inputs and password
func (s Settings) Apply(session CredentialUpdater, password string) error {
	code := ""
	if s.AllyCode != swgoh.NoAllyCode {
		code = s.AllyCode.Digits()
	}
	_, err := session.UpdateCredentials(s.Username, password, s.UserID, code)
	return err
}
