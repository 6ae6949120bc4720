package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Token when no access token is persisted.
var ErrNoToken = errors.New("no access token found")

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "empadmin", "session.json"), nil
}

type state struct {
	AccessToken string `json:"accesstoken,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Store persists the access token and the remembered login email in a
// single file. Every read goes back to disk so that a logout from another
// process is observed by the next request.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: path is required")
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

// AccessToken returns the persisted token, or "" when there is none.
func (s *Store) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.loadLocked()
	if err != nil {
		return "", err
	}
	return st.AccessToken, nil
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	tok, err := s.AccessToken()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

func (s *Store) SetAccessToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session: token must not be empty")
	}
	if strings.ContainsAny(token, " \t\n\r") {
		return errors.New("session: token must not contain whitespace")
	}
	return s.update(func(st *state) { st.AccessToken = token })
}

func (s *Store) Email() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.loadLocked()
	if err != nil {
		return "", err
	}
	return st.Email, nil
}

func (s *Store) RememberEmail(email string) error {
	return s.update(func(st *state) { st.Email = strings.TrimSpace(email) })
}

func (s *Store) ForgetEmail() error {
	return s.update(func(st *state) { st.Email = "" })
}

// Clear removes the token and the remembered email together.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

func (s *Store) update(fn func(*state)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.loadLocked()
	if err != nil {
		return err
	}
	fn(&st)
	if st == (state{}) {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("session: remove: %w", err)
		}
		return nil
	}
	return s.saveLocked(st)
}

func (s *Store) loadLocked() (state, error) {
	var st state
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("session: read: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return state{}, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	return st, nil
}

func (s *Store) saveLocked(st state) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: chmod: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("session: replace: %w", err)
	}
	return nil
}
