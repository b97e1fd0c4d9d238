package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrSessionExpired maps a 401 from any storefront API; the UI prompts
	// for re-login and the cart is left untouched.
	ErrSessionExpired = errors.New("session expired, please sign in again")
)

// HTTPError is a non-2xx response from a storefront API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// TokenSource supplies the current bearer token, or "" when the visitor is
// unauthenticated. Token storage mechanics live with the auth provider.
type TokenSource func() string

// Client is the shared REST plumbing for the storefront APIs: one base URL,
// JSON bodies, bearer auth, uniform status handling.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func New(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// do sends a JSON request and decodes a JSON response into out (when out is
// non-nil). 401 becomes ErrSessionExpired, other non-2xx an *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
