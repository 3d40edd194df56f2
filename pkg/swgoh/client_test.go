package swgoh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, timeout time.Duration) *Client {
	t.Helper()
	t.Setenv("ENABLE_TELEMETRY", "false")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseURL:      server.URL,
		UserAgent:    "guildsync-test",
		ClientSecret: "secret",
		Timeout:      timeout,
	})
	require.NoError(t, err)
	return client
}

func signInHandler(t *testing.T, expiresIn int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		if r.PostForm.Get("password") != "hunter2" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + r.PostForm.Get("client_id"),
			"token_type":   "bearer",
			"expires_in":   expiresIn,
		})
	}
}

func logIn(t *testing.T, client *Client) {
	t.Helper()
	_, err := client.Session().UpdateCredentials("user", "hunter2", "42", "123-456-789")
	require.NoError(t, err)
	ok, err := client.Session().LogIn(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

// writeRawStatus writes a status line with a custom reason phrase.
func writeRawStatus(t *testing.T, w http.ResponseWriter, status string) {
	hj, ok := w.(http.Hijacker)
	require.True(t, ok)
	conn, buf, err := hj.Hijack()
	require.NoError(t, err)
	defer conn.Close()
	buf.WriteString("HTTP/1.1 " + status + "\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
	buf.Flush()
}

func TestSessionLogIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	client := newTestClient(t, mux, time.Second)
	session := client.Session()

	ok, err := session.LogIn(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = session.UpdateCredentials("user", "wrong", "42", "123456789")
	require.NoError(t, err)
	ok, err = session.LogIn(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, session.IsLoggedIn())
	assert.NotEmpty(t, session.LastLoginFailure())

	_, err = session.UpdateCredentials("user", "hunter2", "42", "123456789")
	require.NoError(t, err)
	ok, err = session.LogIn(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, session.IsLoggedIn())

	value, err := session.Token().Value(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "token-42", value)
}

func TestSessionUpdateCredentialsInvalidatesToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	client := newTestClient(t, mux, time.Second)
	logIn(t, client)
	session := client.Session()

	changed, err := session.UpdateCredentials("user", "hunter2", "42", "123-456-789")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, session.IsLoggedIn())

	changed, err = session.UpdateCredentials("user", "hunter2", "not-a-number", "123-456-789")
	require.NoError(t, err)
	assert.False(t, changed, "unparseable user id is ignored")
	assert.True(t, session.IsLoggedIn())

	changed, err = session.UpdateCredentials("user", "hunter2", "42", "987-654-321")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, session.IsLoggedIn())
	assert.Equal(t, AllyCode(987654321), session.Credentials().AllyCode)

	_, err = session.UpdateCredentials("user", "hunter2", "42", "12")
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestLogInDiscardsTokenWhenCredentialsChange(t *testing.T) {
	t.Setenv("ENABLE_TELEMETRY", "false")

	var signedIn atomic.Bool
	mux := http.NewServeMux()
	sign := signInHandler(t, 3600)
	mux.HandleFunc("/"+PathSignIn, func(w http.ResponseWriter, r *http.Request) {
		sign(w, r)
		signedIn.Store(true)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	// The clock is read once the sign-in response is in hand; switch
	// identity at that moment.
	var session *Session
	now := func() time.Time {
		if signedIn.CompareAndSwap(true, false) {
			_, err := session.UpdateCredentials("bob", "hunter2", "43", "987-654-321")
			require.NoError(t, err)
		}
		return time.Now()
	}

	client, err := NewClient(Options{
		BaseURL:      server.URL,
		UserAgent:    "guildsync-test",
		ClientSecret: "secret",
		Timeout:      time.Second,
		Now:          now,
	})
	require.NoError(t, err)
	session = client.Session()

	_, err = session.UpdateCredentials("alice", "hunter2", "42", "123-456-789")
	require.NoError(t, err)

	ok, err := session.LogIn(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "bob", session.Credentials().Username)
	assert.False(t, session.IsLoggedIn())

	_, err = session.bearer()
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAllInputsProvided(t *testing.T) {
	tests := []struct {
		name                              string
		username, password, id, allyCode string
		want                              bool
	}{
		{"complete", "user", "pass", "1", "123456789", true},
		{"blank username", " ", "pass", "1", "123456789", false},
		{"blank password", "user", "", "1", "123456789", false},
		{"zero user id", "user", "pass", "0", "123456789", false},
		{"no ally code", "user", "pass", "1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.NotFoundHandler(), time.Second)
			_, err := client.Session().UpdateCredentials(tt.username, tt.password, tt.id, tt.allyCode)
			require.NoError(t, err)
			if got := client.Session().AllInputsProvided(); got != tt.want {
				t.Errorf("AllInputsProvided() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostRequiresToken(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), time.Second)

	_, err := client.Players(context.Background(), []AllyCode{123456789})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(0), calls.Load())
}

func TestPostSendsBearerAndCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	mux.HandleFunc("/"+PathPlayers, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-42", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var cmd PlayerCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, []string{"123456789", "987654321"}, cmd.AllyCodes)
		assert.Equal(t, "ENG_US", cmd.Language)
		assert.True(t, cmd.Enums)

		io.WriteString(w, `[
			{"name":"Alpha","allyCode":123456789,"updated":1700000000000,
			 "stats":[{"nameKey":"Galactic Power:","value":5000000}],
			 "roster":[{"nameKey":"Rey","combatType":"CHARACTER","gp":30000,"gear":13,"relic":{"currentTier":9}}]},
			{"name":"Beta","allyCode":987654321,"updated":1700000000000,"roster":[]}
		]`)
	})
	client := newTestClient(t, mux, time.Second)
	logIn(t, client)

	players, err := client.Players(context.Background(), []AllyCode{123456789, 987654321})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Alpha", players[0].Name)
	assert.Equal(t, AllyCode(123456789), players[0].AllyCode)
	power, ok := players[0].Stat("Galactic Power:")
	assert.True(t, ok)
	assert.Equal(t, int64(5000000), power)
	assert.Equal(t, 7, players[0].Roster[0].RelicLevel())
	assert.Equal(t, time.UnixMilli(1700000000000), players[0].Updated.Time())
}

func TestPostClassifiesFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	mux.HandleFunc("/"+PathPlayers, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error_description":"maintenance"}`)
	})
	mux.HandleFunc("/"+PathData, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"not":"an array"`)
	})
	mux.HandleFunc("/"+PathZetas, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		io.WriteString(w, `{"zetas":[]}`)
	})
	client := newTestClient(t, mux, 100*time.Millisecond)
	logIn(t, client)

	_, err := client.Players(context.Background(), []AllyCode{123456789})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.Reason)
	assert.False(t, apiErr.Timeout)
	assert.Contains(t, apiErr.Unwrap().Error(), "maintenance")

	_, err = client.Titles(context.Background())
	var decodeErr *DeserializationError
	assert.True(t, errors.As(err, &decodeErr))

	_, err = client.ZetaRecommendations(context.Background())
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Timeout)
	assert.Equal(t, TimeoutReason, apiErr.Reason)
	assert.True(t, IsTimeout(err))
}

func TestLogInTimeoutIsSurfaced(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}), 50*time.Millisecond)

	_, err := client.Session().UpdateCredentials("user", "hunter2", "42", "123456789")
	require.NoError(t, err)

	ok, err := client.Session().LogIn(context.Background())
	assert.False(t, ok)
	assert.True(t, IsTimeout(err))
}

func TestGuildNotInGuild(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	mux.HandleFunc("/"+PathGuilds, func(w http.ResponseWriter, r *http.Request) {
		var cmd PlayerCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		switch cmd.AllyCodes[0] {
		case "111111111":
			writeRawStatus(t, w, "400 None")
		case "222222222":
			io.WriteString(w, `[]`)
		case "333333333":
			writeRawStatus(t, w, "500 Guild lookup failed")
		default:
			io.WriteString(w, `[{"name":"Guild","members":2,"roster":[{"name":"A","allyCode":123456789},{"name":"B","allyCode":987654321}]}]`)
		}
	})
	client := newTestClient(t, mux, time.Second)
	logIn(t, client)
	ctx := context.Background()

	_, err := client.Guild(ctx, 111111111)
	assert.ErrorIs(t, err, ErrNotInGuild)

	_, err = client.Guild(ctx, 222222222)
	assert.ErrorIs(t, err, ErrNotInGuild)

	_, err = client.Guild(ctx, 333333333)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Guild lookup failed", apiErr.Reason)

	guild, err := client.Guild(ctx, 123456789)
	require.NoError(t, err)
	assert.Equal(t, "Guild", guild.Name)
	assert.Equal(t, []AllyCode{123456789, 987654321}, guild.AllyCodes())
}

func TestRelicTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+PathSignIn, signInHandler(t, 3600))
	mux.HandleFunc("/"+PathData, func(w http.ResponseWriter, r *http.Request) {
		var cmd GameDataCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, CollectionTables, cmd.Collection)
		assert.Equal(t, RelicTableID, cmd.Match["id"])
		assert.Nil(t, cmd.Project)
		io.WriteString(w, `[{"id":"galactic_power_per_relic_tier","rowList":[
			{"key":"3","value":"1000"},{"key":"1","value":"300"},{"key":"x","value":"n/a"},{"key":"2","value":"600"}]}]`)
	})
	client := newTestClient(t, mux, time.Second)
	logIn(t, client)

	values, err := client.RelicTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 300, 600, 1000}, values)
}

func TestParseRelicTable(t *testing.T) {
	values, err := parseRelicTable([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = parseRelicTable([]byte(`{"rowList":[]}`))
	var decodeErr *DeserializationError
	assert.True(t, errors.As(err, &decodeErr))

	_, err = parseRelicTable([]byte(`[{`))
	assert.True(t, errors.As(err, &decodeErr))
}

func TestGameDataCommandOmitsEmptyFilters(t *testing.T) {
	data, err := json.Marshal(NewGameDataCommand(CollectionTitles))
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":"playerTitleList","language":"ENG_US","enums":true}`, string(data))
}
