package swgoh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-guildsync/pkg/config"
	"go-guildsync/pkg/version"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Remote endpoints, relative to the base URL.
const (
	PathSignIn  = "auth/signin"
	PathPlayers = "swgoh/players"
	PathGuilds  = "swgoh/guilds"
	PathData    = "swgoh/data"
	PathZetas   = "swgoh/zetas"
)

// DefaultBaseURL is the public API address.
const DefaultBaseURL = "https://api.swgoh.help/"

// Options configures a Client.
type Options struct {
	BaseURL      string
	UserAgent    string
	ClientSecret string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Now          func() time.Time
}

// OptionsFromEnv reads client options from SWGOH_* environment variables.
func OptionsFromEnv() Options {
	return Options{
		BaseURL:      config.GetEnv("SWGOH_API_URL", DefaultBaseURL),
		UserAgent:    config.GetEnv("SWGOH_USER_AGENT", version.UserAgent()),
		ClientSecret: config.GetEnv("SWGOH_CLIENT_SECRET", "ABC"),
		Timeout:      config.GetDurationEnv("SWGOH_REQUEST_TIMEOUT", 100*time.Second),
	}
}

// Client issues authenticated requests to the game data service.
// It never retries; retry policy belongs to the caller.
type Client struct {
	httpClient   *http.Client
	baseURL      *url.URL
	userAgent    string
	clientSecret string
	telemetry    bool
	session      *Session
}

// NewClient creates a client bound to a single base URL.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	telemetry := config.GetBoolEnv("ENABLE_TELEMETRY", true)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		var transport http.RoundTripper = http.DefaultTransport
		if telemetry {
			transport = otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
					return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
				}),
			)
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 100 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}

	c := &Client{
		httpClient:   httpClient,
		baseURL:      base,
		userAgent:    opts.UserAgent,
		clientSecret: opts.ClientSecret,
		telemetry:    telemetry,
	}
	c.session = newSession(c, opts.Now)
	return c, nil
}

// Session returns the credential/token manager gating this client.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// startSpan starts a span when telemetry is enabled.
func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !c.telemetry {
		return ctx, nil
	}
	ctx, span := otel.Tracer("go-guildsync/swgoh").Start(ctx, name)
	span.SetAttributes(attribute.String("swgoh.base_url", c.baseURL.String()))
	span.SetAttributes(attrs...)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Post sends a JSON command to path with the current bearer token and returns the raw body.
func (c *Client) Post(ctx context.Context, op, path string, payload any) (body []byte, err error) {
	ctx, span := c.startSpan(ctx, "swgoh.Post",
		attribute.String("swgoh.operation", op),
		attribute.String("swgoh.path", path),
	)
	defer func() { endSpan(span, err) }()

	token, err := c.session.bearer()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return c.do(ctx, op, req)
}

// do sends req and classifies the outcome.
func (c *Client) do(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			slog.WarnContext(ctx, "Request timed out", "operation", op, "url", req.URL.String(), "elapsed", time.Since(start))
			return nil, &APIError{Op: op, Reason: TimeoutReason, Timeout: true, Err: err}
		}
		slog.ErrorContext(ctx, "Request failed", "operation", op, "url", req.URL.String(), "error", err)
		return nil, &APIError{Op: op, Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Reason: TimeoutReason, Timeout: true, Err: err}
		}
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Reason: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Reason: reasonPhrase(resp)}
		if detail := errorDetail(body); detail != "" {
			apiErr.Err = errors.New(detail)
		}
		slog.WarnContext(ctx, "Remote call did not succeed",
			"operation", op,
			"status", resp.StatusCode,
			"reason", apiErr.Reason,
			"elapsed", time.Since(start))
		return nil, apiErr
	}

	slog.DebugContext(ctx, "Remote call completed", "operation", op, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

// signIn performs the form-encoded credential handshake.
func (c *Client) signIn(ctx context.Context, creds Credentials) (resp *loginResponse, err error) {
	ctx, span := c.startSpan(ctx, "swgoh.SignIn", attribute.String("swgoh.username", creds.Username))
	defer func() { endSpan(span, err) }()

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set("grant_type", "password")
	form.Set("client_id", strconv.FormatUint(uint64(creds.UserID), 10))
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(PathSignIn), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	body, err := c.do(ctx, "Login", req)
	if err != nil {
		return nil, err
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return nil, &DeserializationError{Op: "Login", Err: err}
	}
	return &login, nil
}

// reasonPhrase extracts the status line's reason text.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// errorDetail pulls a human-readable message out of an error body, if there is one.
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range []string{"error_description", "message", "error"} {
		if v := gjson.GetBytes(body, key); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
