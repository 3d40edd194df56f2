package swgoh

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a data request is attempted without a valid token.
	ErrUnauthenticated = errors.New("must be logged in to do that")

	// ErrInvalidState is returned by LogIn when credentials are incomplete.
	ErrInvalidState = errors.New("login information has not been provided")

	// ErrExpiredToken is returned when reading the value of an expired token.
	ErrExpiredToken = errors.New("access token has expired")

	// ErrNotInGuild signals that the player exists but belongs to no guild.
	// It is an expected outcome, not a failure.
	ErrNotInGuild = errors.New("player is not in a guild")
)

// TimeoutReason is the reason carried by an APIError produced by a request timeout.
const TimeoutReason = "Request timeout"

// APIError is returned when a remote call did not succeed.
type APIError struct {
	Op         string
	StatusCode int
	Reason     string
	Timeout    bool
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// DeserializationError is returned when a response body does not match the expected shape.
type DeserializationError struct {
	Op  string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("%s: error deserializing JSON: %v", e.Op, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed user-supplied input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IncompleteBatchError is returned when a batch fetch did not return every requested record.
type IncompleteBatchError struct {
	Requested int
	Received  int
}

func (e *IncompleteBatchError) Error() string {
	return fmt.Sprintf("incomplete batch: received %d of %d players", e.Received, e.Requested)
}

// IsTimeout reports whether err is an APIError caused by a request timeout.
func IsTimeout(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Timeout
}
