package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/clientsession"
	"github.com/fitstudio/fitstudio-server/internal/session"
)

// APIClient handles HTTP communication with the backend. Session tokens are
// persisted to disk so commands can share one login.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	credsPath  string
	creds      credentials
}

type credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RememberMe   bool   `json:"rememberMe"`
}

type sessionResponse struct {
	Status      string                 `json:"status"`
	User        *clientsession.Profile `json:"user"`
	AccessToken string                 `json:"access_token"`
	Error       string                 `json:"error"`
}

// NewAPIClient creates a client pointed at the backend, loading any
// persisted credentials.
func NewAPIClient(baseURL, credsPath string) (*APIClient, error) {
	c := &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		credsPath: credsPath,
	}

	data, err := os.ReadFile(credsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &c.creds); err == nil {
		return c, nil
	}
	return c, nil
}

// Login authenticates and persists the returned token pair.
func (c *APIClient) Login(ctx context.Context, email, password string, remember bool) (*clientsession.Profile, error) {
	body := map[string]interface{}{
		"email":      email,
		"password":   password,
		"rememberMe": remember,
	}

	resp, err := c.post(ctx, "/auth/login", body)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var result sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %s", result.Error)
	}

	c.creds = credentials{
		AccessToken: result.AccessToken,
		RememberMe:  remember,
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.RefreshTokenCookie {
			c.creds.RefreshToken = cookie.Value
		}
	}
	if err := c.saveCredentials(); err != nil {
		return nil, err
	}

	return result.User, nil
}

// Logout revokes the session server-side and drops local credentials.
func (c *APIClient) Logout(ctx context.Context) error {
	resp, err := c.post(ctx, "/auth/logout", map[string]string{})
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return c.clearCredentials()
}

// HasSession reports whether any credential is currently held.
func (c *APIClient) HasSession(ctx context.Context) bool {
	return c.creds.AccessToken != "" || c.creds.RefreshToken != ""
}

// FetchProfile resolves the current session against the server. When the
// server rotates the token pair, the new cookies are persisted.
func (c *APIClient) FetchProfile(ctx context.Context) (*clientsession.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/session", nil)
	if err != nil {
		return nil, err
	}
	c.attachCookies(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	var result sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session resolution failed: %s", result.Error)
	}

	// Pick up rotated cookies.
	updated := false
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case session.AccessTokenCookie:
			if cookie.Value != "" {
				c.creds.AccessToken = cookie.Value
				updated = true
			}
		case session.RefreshTokenCookie:
			if cookie.Value != "" {
				c.creds.RefreshToken = cookie.Value
				updated = true
			}
		}
	}
	if updated {
		if err := c.saveCredentials(); err != nil {
			return nil, err
		}
	}

	return result.User, nil
}

// Invalidate drops the persisted credentials after a failed restore.
func (c *APIClient) Invalidate(ctx context.Context) error {
	resp, err := c.post(ctx, "/auth/logout", map[string]string{})
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return c.clearCredentials()
}

// EventsURL returns the websocket endpoint for the session event stream.
func (c *APIClient) EventsURL() string {
	wsURL := "ws" + c.baseURL[len("http"):]
	return wsURL + "/session/events?token=" + c.creds.AccessToken
}

func (c *APIClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachCookies(req)

	return c.httpClient.Do(req)
}

func (c *APIClient) attachCookies(req *http.Request) {
	if c.creds.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: c.creds.AccessToken})
	}
	if c.creds.RefreshToken != "" {
		req.AddCookie(&http.Cookie{Name: session.RefreshTokenCookie, Value: c.creds.RefreshToken})
	}
	if c.creds.RememberMe {
		req.AddCookie(&http.Cookie{Name: session.RememberMeCookie, Value: "true"})
	}
}

func (c *APIClient) saveCredentials() error {
	data, err := json.Marshal(c.creds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.credsPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.credsPath, data, 0o600)
}

func (c *APIClient) clearCredentials() error {
	c.creds = credentials{}
	err := os.Remove(c.credsPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
