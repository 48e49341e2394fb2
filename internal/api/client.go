// Package api is the HTTP client for the Robotalk backend. It layers a
// double-submit CSRF token on top of the cookie session the backend issues
// at login, and exposes typed calls for every endpoint the client consumes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	csrfHeader         = "X-CSRF-Token"
	defaultHTTPTimeout = 2 * time.Minute
)

// Config describes how to build a backend client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Robotalk backend. The session cookie lives in the
// cookie jar; the CSRF token is cached on the instance and refreshed on
// demand, never shared through package state.
type Client struct {
	baseURL string
	http    *http.Client

	mu   sync.Mutex
	csrf string
}

// New builds a Client with a cookie jar so the auth and CSRF cookies set by
// the backend ride along on every subsequent request.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// User is the identity payload returned by the backend session probe.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

// Health is the backend liveness payload.
type Health struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
}

// EnsureCSRFToken returns the cached CSRF token, fetching one from the
// backend when none is cached or force is set. The issuing request also sets
// the CSRF cookie the backend compares the header against.
func (c *Client) EnsureCSRFToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	cached := c.csrf
	c.mu.Unlock()
	if cached != "" && !force {
		return cached, nil
	}

	var payload struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := c.send(ctx, http.MethodGet, "/auth/csrf", nil, "", "", &payload); err != nil {
		return "", &CsrfFetchError{Err: err}
	}
	if payload.CSRFToken == "" {
		return "", &CsrfFetchError{Err: fmt.Errorf("backend returned an empty csrf_token")}
	}
	c.mu.Lock()
	c.csrf = payload.CSRFToken
	c.mu.Unlock()
	return payload.CSRFToken, nil
}

// Login performs the credential exchange. On success the backend sets the
// session cookie; no token is returned to the caller.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	err := c.send(ctx, http.MethodPost, "/auth/jwt/login",
		[]byte(form.Encode()), "application/x-www-form-urlencoded", "", nil)
	if err != nil {
		if reqErr, ok := err.(*RequestError); ok {
			return &AuthError{Detail: reqErr.Message}
		}
		return err
	}
	return nil
}

// Logout invalidates the session server-side. It is best-effort: a network
// failure is logged and swallowed so the caller can always proceed to the
// session re-probe.
func (c *Client) Logout(ctx context.Context) {
	if err := c.send(ctx, http.MethodPost, "/auth/jwt/logout", nil, "", "", nil); err != nil {
		log.Printf("[api] logout failed (ignored): %v", err)
	}
	c.mu.Lock()
	c.csrf = ""
	c.mu.Unlock()
}

// CurrentUser probes session validity. Any error means the session is not
// (or no longer) authenticated.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, "", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// HealthCheck reports backend liveness.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, "", &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// do issues a request with the session cookie attached. Mutating methods
// first guarantee a CSRF token and carry it in the X-CSRF-Token header. A
// mutating call rejected with 401 or 403 triggers exactly one forced token
// refresh and one replay; if the replay fails too, the original error is the
// one surfaced, so callers never see the retry machinery.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	mutating := method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions

	token := ""
	if mutating {
		var err error
		if token, err = c.EnsureCSRFToken(ctx, false); err != nil {
			return err
		}
	}

	err := c.send(ctx, method, path, body, contentType, token, out)
	if !mutating || err == nil {
		return err
	}
	reqErr, ok := err.(*RequestError)
	if !ok || (reqErr.Status != http.StatusUnauthorized && reqErr.Status != http.StatusForbidden) {
		return err
	}

	// The cached token may have gone stale with a refreshed session. One
	// forced re-fetch, one replay, then give up with the original failure.
	log.Printf("[api] %s %s rejected (%d), refreshing csrf token", method, path, reqErr.Status)
	fresh, refreshErr := c.EnsureCSRFToken(ctx, true)
	if refreshErr != nil {
		log.Printf("[api] csrf refresh failed: %v", refreshErr)
		return err
	}
	if retryErr := c.send(ctx, method, path, body, contentType, fresh, out); retryErr != nil {
		return err
	}
	return nil
}

// send performs a single HTTP exchange. 2xx JSON bodies are decoded into
// out; 2xx non-JSON bodies leave out untouched. Non-2xx responses become a
// *RequestError with the message pulled from a structured error body when
// one is present.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType, csrfToken string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if csrfToken != "" {
		req.Header.Set(csrfHeader, csrfToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Message: extractDetail(data, resp.Status)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	return json.Unmarshal(data, out)
}

// extractDetail pulls the human-readable message out of a FastAPI-style
// {"detail": ...} error body. detail can be a plain string or a structured
// object; anything unparseable falls back to the status line.
func extractDetail(body []byte, statusLine string) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil && text != "" {
			return text
		}
		return string(envelope.Detail)
	}
	return statusLine
}
