package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "habitdash/1.0 (+https://github.com/saadjs/habitdash)"

	// maxResponseSize bounds response body reads. Legitimate payloads are
	// orders of magnitude smaller.
	maxResponseSize int64 = 256 << 20
)

// TokenSource supplies the session token when a request does not carry an
// explicit one. An empty string means no token.
type TokenSource interface {
	Token() string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

type Request struct {
	Method string
	Path   string
	Body   any
	// Token overrides the TokenSource when non-empty.
	Token  string
	Header http.Header
}

// APIError is the only error type Do returns. Status is 0 when the request
// never produced an HTTP response.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Do executes r and returns the decoded JSON body. A 2xx response with an
// empty or non-JSON body yields nil data.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return nil, &APIError{Message: "api base url is not configured"}
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload io.Reader
	if r.Body != nil {
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encode %s %s request: %v", method, r.Path, err), Err: err}
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+r.Path, payload)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("create %s %s request: %v", method, r.Path, err), Err: err}
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	token := r.Token
	if token == "" && c.Tokens != nil {
		token = c.Tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger := c.logger()
	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Debug("api request failed", "method", method, "path", r.Path, "request_id", requestID, "error", err)
		return nil, &APIError{Message: fmt.Sprintf("execute %s %s request: %v", method, r.Path, err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("read %s %s response: %v", method, r.Path, err), Err: err}
	}
	logger.Debug("api request",
		"method", method,
		"path", r.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := resolveErrorMessage(body, resp.StatusCode)
		logger.Warn("api error", "method", method, "path", r.Path, "status", resp.StatusCode, "message", msg)
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, nil
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resolveErrorMessage picks the most useful message from an error body: a
// plain string body as-is, an object's "message" then "error" then the whole
// object, and finally the HTTP status text.
func resolveErrorMessage(body []byte, status int) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var data any
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return string(trimmed)
		}
		switch v := data.(type) {
		case string:
			return v
		case map[string]any:
			for _, key := range []string{"message", "error"} {
				if msg, ok := messageField(v[key]); ok {
					return msg
				}
			}
			return string(trimmed)
		case []any:
			return string(trimmed)
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unknown error occurred"
}

func messageField(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		if !t {
			return "", false
		}
	case float64:
		if t == 0 {
			return "", false
		}
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(encoded), true
}

func decode[T any](ctx context.Context, c *Client, r Request) (T, bool, error) {
	var out T
	raw, err := c.Do(ctx, r)
	if err != nil {
		return out, false, err
	}
	if raw == nil || bytes.Equal(raw, []byte("null")) {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, &APIError{Message: fmt.Sprintf("decode %s %s response: %v", r.Method, r.Path, err), Err: err}
	}
	return out, true, nil
}

func malformed(r Request, what string) error {
	return &APIError{Message: fmt.Sprintf("malformed %s %s response: %s", r.Method, r.Path, what)}
}
