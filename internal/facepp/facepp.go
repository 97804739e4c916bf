// Package facepp is a client for the Face++ v3 face recognition API.
// It exposes the four operations the check-in pipeline needs (detect,
// add-to-set, search-in-set, compare) as typed results so the rest of
// the application never handles raw provider JSON.
package facepp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors for provider failure modes. Transport problems and
// timeouts wrap ErrUnavailable; a capture without any face wraps ErrNoFace.
var (
	ErrNoFace      = errors.New("no face detected")
	ErrUnavailable = errors.New("face provider unavailable")
)

// APIError is a failure reported by the provider itself via the
// error_message field of the response envelope.
type APIError struct {
	Op      string // API endpoint, e.g. "detect"
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facepp %s failed: %s", e.Op, e.Message)
}

// Client represents a client for the Face++ API.
type Client struct {
	parsedURL *url.URL
	apiKey    string
	apiSecret string
	http      *http.Client
}

// New creates a new Face++ client. Every request carries the given timeout.
func New(rawURL, apiKey, apiSecret string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(rawURL + "/facepp/v3")
	if err != nil {
		return nil, fmt.Errorf("invalid Face++ URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		parsedURL: parsed,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// resolveURL builds a full URL from the base API URL and the given path segments.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// readErrorBody reads the response body for error messages.
// Returns empty string if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}

// doPostForm posts a form to the given endpoint with credentials attached and
// unmarshals the JSON response into the result type. Provider-reported errors
// and transport failures are translated into typed errors; callers never see
// untyped response data.
func doPostForm[T any](ctx context.Context, c *Client, endpoint string, form url.Values) (*T, error) {
	form.Set("api_key", c.apiKey)
	form.Set("api_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(strings.Split(endpoint, "/")...), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection errors all count as the provider being
		// unreachable; callers decide whether a fallback path exists.
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %v", ErrUnavailable, endpoint, err)
	}

	// Face++ reports its own failures inside the body, for 4xx as well as 200.
	var envelope struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.ErrorMessage != "" {
		return nil, &APIError{Op: endpoint, Message: envelope.ErrorMessage}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request failed with status %d: %s", endpoint, resp.StatusCode, readErrorBody(strings.NewReader(string(body))))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal %s response: %w", endpoint, err)
	}
	return &result, nil
}
