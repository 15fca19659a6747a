package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/forumstartup/forum/shared/jwt"
)

// Cookies returns the cookies the jar would send to the backend.
func (c *APIClient) Cookies() []*http.Cookie {
	return c.HttpClient.Jar.Cookies(c.base)
}

// SessionToken returns the value of the session cookie, or "".
func (c *APIClient) SessionToken() string {
	for _, cookie := range c.Cookies() {
		if cookie.Name == jwt.CookieName {
			return cookie.Value
		}
	}
	return ""
}

// ClearSession drops the session cookie locally, whatever the backend said.
func (c *APIClient) ClearSession() {
	c.HttpClient.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:   jwt.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveCookies writes the current backend cookies to path (0600).
func (c *APIClient) SaveCookies(path string) error {
	var stored []storedCookie
	for _, cookie := range c.Cookies() {
		stored = append(stored, storedCookie{Name: cookie.Name, Value: cookie.Value})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadCookies restores cookies saved by SaveCookies. A missing file is
// not an error: there is simply no session yet.
func (c *APIClient) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	c.HttpClient.Jar.SetCookies(c.base, cookies)
	return nil
}
