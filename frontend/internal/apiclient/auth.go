package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
)

// Login posts credentials. On success the backend sets the session cookie.
func (c *APIClient) Login(ctx context.Context, req api.LoginRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/public/auth/login", "/public/auth/login", nil, req)
	return err
}

func (c *APIClient) Register(ctx context.Context, req api.RegisterRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/public/auth/register", "/public/auth/register", nil, req)
	return err
}

func (c *APIClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/private/auth/logout", "/private/auth/logout", nil, nil)
	return err
}

// Me returns the account behind the session cookie. A response that
// names no user is an error.
func (c *APIClient) Me(ctx context.Context) (*domain.CurrentUser, error) {
	body, err := c.do(ctx, http.MethodGet, "/private/auth/me", "/private/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var user domain.CurrentUser
	if err := decodeInto(body, "current user", &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		return nil, errors.New("current user response has no username")
	}
	return &user, nil
}
