package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-guildsync/pkg/swgoh"
)

// ErrLoginRejected is returned when the upstream refuses the credentials
var ErrLoginRejected = errors.New("login rejected")

// Session is the upstream credential and token manager
type Session interface {
	UpdateCredentials(username, password, userID, allyCode string) (bool, error)
	LogIn(ctx context.Context) (bool, error)
	Credentials() swgoh.Credentials
	Token() swgoh.AccessToken
	IsLoggedIn() bool
	LastLoginFailure() string
}

// Settings remembers the non-secret inputs and the alliance list
type Settings interface {
	SaveCredentials(creds swgoh.Credentials) error
	SetAlliance(codes []swgoh.AllyCode) error
	AllianceCodes() []swgoh.AllyCode
}

// LoginRequest holds the upstream credentials
type LoginRequest struct {
	Username string
	Password string
	UserID   string
	AllyCode string
}

// LoginResult is a successful sign-in
type LoginResult struct {
	Token     string
	AllyCode  swgoh.AllyCode
	Username  string
	ExpiresAt time.Time
}

// Status describes the upstream session
type Status struct {
	Username       string         `json:"username,omitempty"`
	AllyCode       swgoh.AllyCode `json:"ally_code"`
	InputsProvided bool           `json:"inputs_provided"`
	LoggedIn       bool           `json:"logged_in"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	LastFailure    string         `json:"last_failure,omitempty"`
}

// Service signs in upstream and issues API tokens bound to the upstream token lifetime
type Service struct {
	session  Session
	settings Settings
	issuer   *TokenIssuer
}

func NewService(session Session, settings Settings, issuer *TokenIssuer) *Service {
	return &Service{session: session, settings: settings, issuer: issuer}
}

// Issuer returns the API token validator
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Login stores the credentials, signs in upstream and mints an API token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if _, err := s.session.UpdateCredentials(req.Username, req.Password, req.UserID, req.AllyCode); err != nil {
		return nil, err
	}

	ok, err := s.session.LogIn(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoginRejected, s.session.LastLoginFailure())
	}

	creds := s.session.Credentials()
	if s.settings != nil {
		if err := s.settings.SaveCredentials(creds); err != nil {
			slog.WarnContext(ctx, "Failed to save settings", "error", err)
		}
	}

	expiresAt := s.session.Token().ExpiresAt()
	token, err := s.issuer.Issue(creds.AllyCode.Digits(), creds.Username, expiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		AllyCode:  creds.AllyCode,
		Username:  creds.Username,
		ExpiresAt: expiresAt,
	}, nil
}

// Status reports the upstream session without secrets
func (s *Service) Status() Status {
	creds := s.session.Credentials()
	st := Status{
		Username:       creds.Username,
		AllyCode:       creds.AllyCode,
		InputsProvided: creds.Complete(),
		LoggedIn:       s.session.IsLoggedIn(),
		LastFailure:    s.session.LastLoginFailure(),
	}
	if st.LoggedIn {
		expiresAt := s.session.Token().ExpiresAt()
		st.ExpiresAt = &expiresAt
	}
	return st
}

// Alliance returns the saved alliance ally codes
func (s *Service) Alliance() []swgoh.AllyCode {
	if s.settings == nil {
		return nil
	}
	return s.settings.AllianceCodes()
}

// SetAlliance parses and saves the alliance ally codes
func (s *Service) SetAlliance(raw []string) ([]swgoh.AllyCode, error) {
	codes := make([]swgoh.AllyCode, 0, len(raw))
	seen := make(map[swgoh.AllyCode]struct{}, len(raw))
	for _, r := range raw {
		code, err := swgoh.ParseAllyCode(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if s.settings == nil {
		return nil, errors.New("settings are not available")
	}
	if err := s.settings.SetAlliance(codes); err != nil {
		return nil, err
	}
	return codes, nil
}
