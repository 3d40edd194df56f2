package swgoh

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Credentials identify the account used to sign in.
type Credentials struct {
	Username string
	Password string
	UserID   uint32
	AllyCode AllyCode
}

// Complete reports whether every field needed for sign-in is present.
func (c Credentials) Complete() bool {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return false
	}
	return c.UserID != 0 && c.AllyCode != NoAllyCode
}

// Session owns the credentials and the current access token.
// The token is swapped atomically and never mutated in place.
type Session struct {
	client *Client
	now    func() time.Time

	mu          sync.RWMutex
	creds       Credentials
	lastFailure string

	token atomic.Pointer[AccessToken]
}

func newSession(client *Client, now func() time.Time) *Session {
	s := &Session{client: client, now: now}
	s.invalidate()
	return s
}

// invalidate replaces the token with an expired sentinel.
func (s *Session) invalidate() {
	t := NewAccessToken("", -9999, s.now())
	s.token.Store(&t)
}

// UpdateCredentials stores new credentials and invalidates the token if anything changed.
// The user id is only compared when it parses as a number. A blank ally code clears it.
func (s *Session) UpdateCredentials(username, password, userID, allyCode string) (bool, error) {
	code := NoAllyCode
	if strings.TrimSpace(allyCode) != "" {
		parsed, err := ParseAllyCode(allyCode)
		if err != nil {
			return false, err
		}
		code = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := false
	if username != s.creds.Username {
		s.creds.Username = username
		dirty = true
	}
	if password != s.creds.Password {
		s.creds.Password = password
		dirty = true
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(userID), 10, 32); err == nil {
		if uint32(id) != s.creds.UserID {
			s.creds.UserID = uint32(id)
			dirty = true
		}
	}
	if code != s.creds.AllyCode {
		s.creds.AllyCode = code
		dirty = true
	}

	if dirty {
		s.invalidate()
		slog.Info("Credentials updated, access token invalidated", "username", username, "ally_code", code.String())
	}
	return dirty, nil
}

// Credentials returns a copy of the stored credentials.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// AllInputsProvided reports whether sign-in can be attempted.
func (s *Session) AllInputsProvided() bool {
	return s.Credentials().Complete()
}

// Token returns the current token snapshot.
func (s *Session) Token() AccessToken {
	return *s.token.Load()
}

// IsLoggedIn reports whether the current token is valid.
func (s *Session) IsLoggedIn() bool {
	return s.Token().IsValid(s.now())
}

// LastLoginFailure returns the reason of the most recent rejected sign-in.
func (s *Session) LastLoginFailure() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFailure
}

// LogIn signs in once with the stored credentials.
// A rejected sign-in returns false with a nil error; timeouts and transport
// failures are returned as errors. There is no retry.
func (s *Session) LogIn(ctx context.Context) (bool, error) {
	creds := s.Credentials()
	if !creds.Complete() {
		return false, ErrInvalidState
	}

	resp, err := s.client.signIn(ctx, creds)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Timeout && apiErr.StatusCode != 0 {
			s.setLastFailure(apiErr.Reason)
			slog.WarnContext(ctx, "Login rejected", "reason", apiErr.Reason, "status", apiErr.StatusCode)
			return false, nil
		}
		s.setLastFailure(err.Error())
		return false, err
	}

	token := NewAccessToken(resp.AccessToken, resp.ExpiresIn, s.now())

	// Compare and store under the lock UpdateCredentials invalidates under.
	s.mu.Lock()
	if s.creds != creds {
		s.mu.Unlock()
		slog.WarnContext(ctx, "Credentials changed during login, discarding token")
		return false, nil
	}
	s.token.Store(&token)
	s.lastFailure = ""
	s.mu.Unlock()

	slog.InfoContext(ctx, "Logged in", "username", creds.Username, "expires_at", token.ExpiresAt())
	return true, nil
}

func (s *Session) setLastFailure(reason string) {
	s.mu.Lock()
	s.lastFailure = reason
	s.mu.Unlock()
}

// bearer returns the token value for an outgoing request.
func (s *Session) bearer() (string, error) {
	now := s.now()
	token := s.Token()
	if !token.IsValid(now) {
		return "", ErrUnauthenticated
	}
	return token.Value(now)
}
