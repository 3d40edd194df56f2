package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-guildsync/pkg/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "guildsync"

// ErrInvalidToken is returned for API tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// Claims are the API token claims. The subject is the ally code.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 API tokens
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret is replaced by a random
// one, so tokens do not survive a restart.
func NewTokenIssuer(secret string, now func() time.Time) *TokenIssuer {
	if secret == "" {
		slog.Warn("JWT_SECRET not set, using a random secret for this process")
		secret = uuid.New().String() + uuid.New().String()
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), now: now}
}

// Issue signs a token for subject that expires at expiresAt
func (i *TokenIssuer) Issue(subject, username string, expiresAt time.Time) (string, error) {
	now := i.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a token and returns its principal
func (i *TokenIssuer) ValidateJWT(tokenString string) (*middleware.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &middleware.Principal{Subject: claims.Subject, Username: claims.Username}, nil
}

var _ middleware.JWTValidator = (*TokenIssuer)(nil)
