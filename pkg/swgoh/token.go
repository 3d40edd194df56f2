package swgoh

import (
	"strings"
	"time"
)

// tokenLifetimeFactor trims the server-declared lifetime to leave a safety margin.
const tokenLifetimeFactor = 0.90

// AccessToken is an immutable bearer token with an absolute expiration.
type AccessToken struct {
	value     string
	expiresAt time.Time
}

// NewAccessToken builds a token that expires after 90% of expiresIn seconds.
// A negative lifetime yields a token that is already expired.
func NewAccessToken(value string, expiresIn int, issuedAt time.Time) AccessToken {
	expiresAt := time.Unix(0, 0).UTC()
	if expiresIn >= 0 {
		lifetime := time.Duration(float64(expiresIn) * tokenLifetimeFactor * float64(time.Second))
		expiresAt = issuedAt.Add(lifetime)
	}
	return AccessToken{value: value, expiresAt: expiresAt}
}

// NullToken returns a token that is never valid.
func NullToken() AccessToken {
	return NewAccessToken("", -999999, time.Now())
}

// ExpiresAt returns the absolute expiration instant.
func (t AccessToken) ExpiresAt() time.Time {
	return t.expiresAt
}

// HasExpired reports whether the token is past its expiration at now.
func (t AccessToken) HasExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// IsValid reports whether the token is non-blank and unexpired at now.
func (t AccessToken) IsValid(now time.Time) bool {
	return strings.TrimSpace(t.value) != "" && !t.HasExpired(now)
}

// Value returns the raw token, or ErrExpiredToken once it has expired.
func (t AccessToken) Value(now time.Time) (string, error) {
	if t.HasExpired(now) {
		return "", ErrExpiredToken
	}
	return t.value, nil
}
