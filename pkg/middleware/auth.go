package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// AuthCookieName is the cookie that may carry the API token
const AuthCookieName = "guildsync_auth_token"

// AuthContextKey key for storing the principal in context
type AuthContextKey string

const (
	AuthContextKeyPrincipal = AuthContextKey("principal")
)

// Principal is the identity behind a validated API token
type Principal struct {
	Subject  string `json:"subject"`
	Username string `json:"username,omitempty"`
}

// JWTValidator validates an API token
type JWTValidator interface {
	ValidateJWT(token string) (*Principal, error)
}

// AuthMiddleware provides authentication utilities for API operations
type AuthMiddleware struct {
	jwtValidator JWTValidator
}

func NewAuthMiddleware(validator JWTValidator) *AuthMiddleware {
	return &AuthMiddleware{jwtValidator: validator}
}

// ValidateAuthFromHeaders validates the Authorization header, falling back to the auth cookie
func (m *AuthMiddleware) ValidateAuthFromHeaders(authHeader, cookieHeader string) (*Principal, error) {
	token := ExtractTokenFromHeaders(authHeader)
	if token == "" && cookieHeader != "" {
		token = ExtractTokenFromCookie(cookieHeader)
	}

	if token == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}

	principal, err := m.ValidateToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid authentication token", err)
	}
	return principal, nil
}

// ValidateRequest authenticates a raw HTTP request. The token may also be passed
// as a "token" query parameter, which browsers need for websocket upgrades.
func (m *AuthMiddleware) ValidateRequest(r *http.Request) (*Principal, error) {
	token := ExtractTokenFromHeaders(r.Header.Get("Authorization"))
	if token == "" {
		token = ExtractTokenFromCookie(r.Header.Get("Cookie"))
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, NewAuthError("authentication required")
	}

	principal, err := m.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid authentication token: %w", err)
	}
	return principal, nil
}

// ValidateToken validates a token string with the injected validator
func (m *AuthMiddleware) ValidateToken(token string) (*Principal, error) {
	if token == "" {
		return nil, NewAuthError("no authentication token provided")
	}
	return m.jwtValidator.ValidateJWT(token)
}

// ExtractTokenFromHeaders extracts a bearer token from an Authorization header
func ExtractTokenFromHeaders(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// ExtractTokenFromCookie extracts the token from a Cookie header
func ExtractTokenFromCookie(cookieHeader string) string {
	for _, cookie := range strings.Split(cookieHeader, ";") {
		cookie = strings.TrimSpace(cookie)
		if strings.HasPrefix(cookie, AuthCookieName+"=") {
			return strings.TrimPrefix(cookie, AuthCookieName+"=")
		}
	}
	return ""
}

// WithPrincipal stores the principal in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, AuthContextKeyPrincipal, p)
}

// GetPrincipal retrieves the principal from ctx
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthContextKeyPrincipal).(*Principal); ok {
		return p
	}
	return nil
}

// AuthError represents an authentication error
type AuthError struct {
	message string
}

func (e *AuthError) Error() string {
	return e.message
}

func NewAuthError(message string) *AuthError {
	return &AuthError{message: message}
}

// CreateAuthCookieHeader creates a Set-Cookie header value for the API token
func CreateAuthCookieHeader(token string, maxAgeSeconds int) string {
	return fmt.Sprintf("%s=%s; Path=/; Max-Age=%d; HttpOnly; SameSite=Lax", AuthCookieName, token, maxAgeSeconds)
}

// CreateClearCookieHeader creates a Set-Cookie header value that clears the auth cookie
func CreateClearCookieHeader() string {
	return AuthCookieName + "=; Path=/; Max-Age=0; HttpOnly; SameSite=Lax"
}
