package swgoh

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllyCode(t *testing.T) {
	tests := []struct {
		name    string
		value   uint64
		wantErr bool
	}{
		{name: "lower bound", value: 100000000},
		{name: "upper bound", value: 999999999},
		{name: "typical", value: 123456789},
		{name: "zero", value: 0, wantErr: true},
		{name: "below range", value: 99999999, wantErr: true},
		{name: "above range", value: 1000000000, wantErr: true},
		{name: "far above range", value: 1 << 40, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := NewAllyCode(tt.value)
			if tt.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("NewAllyCode(%d) error = %v, want ValidationError", tt.value, err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, AllyCode(tt.value), code)
		})
	}
}

func TestAllyCodeStringRoundTrip(t *testing.T) {
	for _, v := range []uint64{100000000, 123456789, 500000001, 999999999} {
		code, err := NewAllyCode(v)
		require.NoError(t, err)

		parsed, err := ParseAllyCode(code.String())
		require.NoError(t, err)
		assert.Equal(t, code, parsed)
	}

	code, err := ParseAllyCode(" 123-456-789 ")
	require.NoError(t, err)
	assert.Equal(t, AllyCode(123456789), code)
	assert.Equal(t, "123-456-789", code.String())
	assert.Equal(t, "123456789", code.Digits())
}

func TestParseAllyCodeRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "12-34", "-1", "1234567890"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAllyCode(input)
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr), "expected ValidationError for %q", input)
		})
	}
}

func TestAllyCodeOrdering(t *testing.T) {
	a, _ := NewAllyCode(111111111)
	b, _ := NewAllyCode(222222222)
	assert.True(t, a < b)
	assert.Equal(t, "", NoAllyCode.String())
	assert.False(t, NoAllyCode.IsValid())
}

func TestAllyCodeJSON(t *testing.T) {
	var member struct {
		AllyCode AllyCode `json:"allyCode"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"allyCode":123456789}`), &member))
	assert.Equal(t, AllyCode(123456789), member.AllyCode)

	require.NoError(t, json.Unmarshal([]byte(`{"allyCode":"987-654-321"}`), &member))
	assert.Equal(t, AllyCode(987654321), member.AllyCode)

	require.NoError(t, json.Unmarshal([]byte(`{"allyCode":null}`), &member))
	assert.Equal(t, NoAllyCode, member.AllyCode)

	assert.Error(t, json.Unmarshal([]byte(`{"allyCode":42}`), &member))

	out, err := json.Marshal(struct {
		AllyCode AllyCode `json:"allyCode"`
	}{AllyCode: 123456789})
	require.NoError(t, err)
	assert.JSONEq(t, `{"allyCode":123456789}`, string(out))
}

func TestAccessTokenExpiration(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	token := NewAccessToken("abc", 100, issued)

	assert.True(t, token.IsValid(issued))
	assert.False(t, token.HasExpired(issued.Add(89*time.Second)))
	assert.True(t, token.HasExpired(issued.Add(90*time.Second)))
	assert.False(t, token.IsValid(issued.Add(90*time.Second)))

	value, err := token.Value(issued)
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = token.Value(issued.Add(2 * time.Minute))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAccessTokenNegativeLifetime(t *testing.T) {
	now := time.Now()
	for _, expiresIn := range []int{-1, -9999, -999999} {
		token := NewAccessToken("abc", expiresIn, now)
		assert.True(t, token.HasExpired(now))
		assert.False(t, token.IsValid(now))
	}
}

func TestNullTokenIsNeverValid(t *testing.T) {
	token := NullToken()
	assert.False(t, token.IsValid(time.Now()))
	assert.False(t, token.IsValid(time.Unix(0, 0)))
}

func TestBlankTokenIsInvalid(t *testing.T) {
	now := time.Now()
	token := NewAccessToken("  ", 3600, now)
	assert.False(t, token.HasExpired(now))
	assert.False(t, token.IsValid(now))
}
