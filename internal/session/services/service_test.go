package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-guildsync/pkg/swgoh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type fakeSession struct {
	creds    swgoh.Credentials
	token    swgoh.AccessToken
	accept   bool
	loginErr error
	failure  string
	logins   int
}

func (f *fakeSession) UpdateCredentials(username, password, userID, allyCode string) (bool, error) {
	code, err := swgoh.ParseAllyCode(allyCode)
	if err != nil {
		return false, err
	}
	f.creds = swgoh.Credentials{Username: username, Password: password, UserID: 42, AllyCode: code}
	return true, nil
}

func (f *fakeSession) LogIn(context.Context) (bool, error) {
	f.logins++
	if f.loginErr != nil {
		return false, f.loginErr
	}
	if !f.accept {
		f.failure = "bad password"
		return false, nil
	}
	f.token = swgoh.NewAccessToken("upstream", 3600, fixedNow)
	return true, nil
}

func (f *fakeSession) Credentials() swgoh.Credentials { return f.creds }
func (f *fakeSession) Token() swgoh.AccessToken       { return f.token }
func (f *fakeSession) LastLoginFailure() string       { return f.failure }

func (f *fakeSession) IsLoggedIn() bool {
	return f.token.IsValid(fixedNow)
}

type fakeSettings struct {
	saved    []swgoh.Credentials
	alliance []swgoh.AllyCode
	err      error
}

func (f *fakeSettings) SaveCredentials(creds swgoh.Credentials) error {
	f.saved = append(f.saved, creds)
	return f.err
}

func (f *fakeSettings) SetAlliance(codes []swgoh.AllyCode) error {
	if f.err != nil {
		return f.err
	}
	f.alliance = codes
	return nil
}

func (f *fakeSettings) AllianceCodes() []swgoh.AllyCode { return f.alliance }

func newTestService(accept bool) (*Service, *fakeSession, *fakeSettings) {
	sess := &fakeSession{token: swgoh.NullToken(), accept: accept}
	settings := &fakeSettings{}
	issuer := NewTokenIssuer("test-secret", func() time.Time { return fixedNow })
	return NewService(sess, settings, issuer), sess, settings
}

var login = LoginRequest{Username: "rey", Password: "secret", UserID: "42", AllyCode: "123-456-789"}

func TestLogin(t *testing.T) {
	svc, sess, settings := newTestService(true)

	result, err := svc.Login(context.Background(), login)
	require.NoError(t, err)
	assert.Equal(t, swgoh.AllyCode(123456789), result.AllyCode)
	assert.Equal(t, "rey", result.Username)
	assert.Equal(t, sess.token.ExpiresAt(), result.ExpiresAt)
	require.Len(t, settings.saved, 1)
	assert.Equal(t, "rey", settings.saved[0].Username)

	principal, err := svc.Issuer().ValidateJWT(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "123456789", principal.Subject)
	assert.Equal(t, "rey", principal.Username)
}

func TestLoginFailures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		svc, _, settings := newTestService(false)
		_, err := svc.Login(context.Background(), login)
		assert.ErrorIs(t, err, ErrLoginRejected)
		assert.Contains(t, err.Error(), "bad password")
		assert.Empty(t, settings.saved)
	})

	t.Run("transport error", func(t *testing.T) {
		svc, sess, _ := newTestService(true)
		sess.loginErr = &swgoh.APIError{Op: "Login", Reason: "Request timeout", Timeout: true}
		_, err := svc.Login(context.Background(), login)
		var apiErr *swgoh.APIError
		assert.True(t, errors.As(err, &apiErr))
	})

	t.Run("invalid ally code", func(t *testing.T) {
		svc, sess, _ := newTestService(true)
		bad := login
		bad.AllyCode = "12"
		_, err := svc.Login(context.Background(), bad)
		var ve *swgoh.ValidationError
		assert.True(t, errors.As(err, &ve))
		assert.Zero(t, sess.logins)
	})

	t.Run("settings failure does not fail login", func(t *testing.T) {
		svc, _, settings := newTestService(true)
		settings.err = errors.New("disk full")
		_, err := svc.Login(context.Background(), login)
		assert.NoError(t, err)
	})
}

func TestStatus(t *testing.T) {
	svc, _, _ := newTestService(true)

	st := svc.Status()
	assert.False(t, st.LoggedIn)
	assert.False(t, st.InputsProvided)
	assert.Nil(t, st.ExpiresAt)

	_, err := svc.Login(context.Background(), login)
	require.NoError(t, err)

	st = svc.Status()
	assert.True(t, st.LoggedIn)
	assert.True(t, st.InputsProvided)
	require.NotNil(t, st.ExpiresAt)
	assert.Equal(t, fixedNow.Add(54*time.Minute), *st.ExpiresAt)
}

func TestSetAlliance(t *testing.T) {
	svc, _, settings := newTestService(true)

	codes, err := svc.SetAlliance([]string{"111-111-111", "222222222", "111111111"})
	require.NoError(t, err)
	assert.Equal(t, []swgoh.AllyCode{111111111, 222222222}, codes)
	assert.Equal(t, codes, settings.alliance)
	assert.Equal(t, codes, svc.Alliance())

	_, err = svc.SetAlliance([]string{"nope"})
	assert.Error(t, err)
	assert.Equal(t, codes, settings.alliance)
}
