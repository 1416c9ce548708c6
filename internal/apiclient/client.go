package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnauthorized is returned for every 401 and 403. The unauthorized hook has
// already run by the time the caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a normalized non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if authFailure(e.Status) {
		return ErrUnauthorized
	}
	return nil
}

// authFailure reports whether status means the credentials were rejected.
func authFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Credentials supplies per-request auth values. Both may be empty.
type Credentials interface {
	Token() string
	APIKey() string
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	APIKey     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client wraps the REST API. It never retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	storage *http.Client
	log     zerolog.Logger

	creds          Credentials
	onUnauthorized func()
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
		storage: &http.Client{Timeout: 2 * opts.Timeout},
		log:     opts.Logger.With().Str("component", "apiclient").Logger(),
	}
}

// SetCredentials wires the token source. Call before the client is shared.
func (c *Client) SetCredentials(cr Credentials) { c.creds = cr }

// OnUnauthorized registers the 401 hook. Call before the client is shared.
func (c *Client) OnUnauthorized(fn func()) { c.onUnauthorized = fn }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Str("request_id", reqID).
		Msg("api call")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if authFailure(resp.StatusCode) {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeBody(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	key := c.apiKey
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		if k := c.creds.APIKey(); k != "" {
			key = k
		}
	}
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
}

// decodeBody accepts both bare payloads and {"data": ...} envelopes.
func decodeBody(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

// errorMessage pulls "message" (string or list) or "error" from an error body.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, field := range []json.RawMessage{body.Message, body.Error} {
			if msg := flatten(field); msg != "" {
				return msg
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func flatten(field json.RawMessage) string {
	if len(field) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(field, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(field, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	return ""
}
