package apiclient

import (
	"context"
	"net/http"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
)

func (c *APIClient) Profile(ctx context.Context) (*domain.Profile, error) {
	body, err := c.do(ctx, http.MethodGet, "/private/users/profile", "/private/users/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := decodeInto(body, "profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateSelf saves the caller's own account. The backend answers with
// the account's id, username and roles only.
func (c *APIClient) UpdateSelf(ctx context.Context, req api.UserSelfUpdateRequest) (*domain.CurrentUser, error) {
	body, err := c.do(ctx, http.MethodPut, "/private/users/me", "/private/users/me", nil, req)
	if err != nil {
		return nil, err
	}
	var u domain.CurrentUser
	if err := decodeInto(body, "updated account", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) DeleteSelf(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/private/users/me", "/private/users/me", nil, nil)
	return err
}

func (c *APIClient) Users(ctx context.Context, filter api.UserFilter) (*domain.Page[domain.AdminUser], error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/users", "/admin/users", filter.Values(), nil)
	if err != nil {
		return nil, err
	}
	var page domain.Page[domain.AdminUser]
	if err := decodeInto(body, "users page", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *APIClient) User(ctx context.Context, id domain.UserId) (*domain.AdminUser, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/users/{id}", idPath("/admin/users/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var u domain.AdminUser
	if err := decodeInto(body, "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) DeleteUser(ctx context.Context, id domain.UserId) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/users/{id}", idPath("/admin/users/%d", id), nil, nil)
	return err
}

func (c *APIClient) BlockUser(ctx context.Context, id domain.UserId) error {
	_, err := c.do(ctx, http.MethodPut, "/admin/users/{id}/block", idPath("/admin/users/%d/block", id), nil, nil)
	return err
}

func (c *APIClient) UnblockUser(ctx context.Context, id domain.UserId) error {
	_, err := c.do(ctx, http.MethodPut, "/admin/users/{id}/unblock", idPath("/admin/users/%d/unblock", id), nil, nil)
	return err
}

func (c *APIClient) PromoteUser(ctx context.Context, id domain.UserId) error {
	_, err := c.do(ctx, http.MethodPut, "/admin/users/{id}/promote", idPath("/admin/users/%d/promote", id), nil, nil)
	return err
}
