package swgoh

import (
	"strconv"
	"strings"
)

const (
	minAllyCode = 100_000_000
	maxAllyCode = 999_999_999
)

// AllyCode is the 9-digit in-game player identifier.
type AllyCode uint32

// NoAllyCode represents an unset ally code.
const NoAllyCode AllyCode = 0

// NewAllyCode validates a numeric ally code.
func NewAllyCode(v uint64) (AllyCode, error) {
	if v < minAllyCode || v > maxAllyCode {
		return NoAllyCode, &ValidationError{Field: "ally_code", Message: "ally code must be a 9-digit number"}
	}
	return AllyCode(v), nil
}

// ParseAllyCode parses "123456789" or "123-456-789".
func ParseAllyCode(s string) (AllyCode, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "-", ""))
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return NoAllyCode, &ValidationError{Field: "ally_code", Message: "ally code must be a 9-digit number"}
	}
	return NewAllyCode(v)
}

// IsValid reports whether the code is within the valid range.
func (a AllyCode) IsValid() bool {
	return a >= minAllyCode && a <= maxAllyCode
}

// String formats the code the way the game displays it.
func (a AllyCode) String() string {
	if a == NoAllyCode {
		return ""
	}
	s := strconv.FormatUint(uint64(a), 10)
	if len(s) != 9 {
		return s
	}
	return s[:3] + "-" + s[3:6] + "-" + s[6:]
}

// Digits returns the undashed form used on the wire.
func (a AllyCode) Digits() string {
	return strconv.FormatUint(uint64(a), 10)
}

// UnmarshalJSON accepts a JSON number (wire format) or a dashed/undashed string.
func (a *AllyCode) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*a = NoAllyCode
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	if strings.TrimSpace(text) == "" || text == "0" {
		*a = NoAllyCode
		return nil
	}
	code, err := ParseAllyCode(text)
	if err != nil {
		return err
	}
	*a = code
	return nil
}
