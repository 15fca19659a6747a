package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/forumstartup/forum/frontend/internal/apiclient/apitest"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing() domain.Page[domain.AdminUser] {
	return domain.Page[domain.AdminUser]{
		Content: []domain.AdminUser{
			{Id: 1, Username: "ann", Roles: []domain.Role{{Name: domain.RoleUser}}},
			{Id: 2, Username: "bob", Roles: []domain.Role{{Name: domain.RoleUser}}, IsBlocked: true},
		},
		TotalPages: 3,
	}
}

func TestFetch(t *testing.T) {
	backend := apitest.NewBackend(t)
	var query string
	backend.Handle(http.MethodGet, "/admin/users", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		apitest.JSON(w, http.StatusOK, listing())
	})
	a := NewAdmin(backend.Client(t))

	require.True(t, a.Fetch(context.Background(), api.UserFilter{
		ListParams: api.ListParams{Page: api.Int(0), Size: api.Int(20)},
		Username:   api.String("an"),
	}))
	assert.Equal(t, "page=0&size=20&username=an", query)
	assert.Len(t, a.Users.Get(), 2)
	assert.Equal(t, 3, a.TotalPages.Get())
	assert.False(t, a.Loading.Get())
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		expected string
	}{
		{name: "backend message", status: http.StatusForbidden, body: api.ErrorResponse{Message: "Access denied"}, expected: "Access denied"},
		{name: "no message", status: http.StatusInternalServerError, expected: MsgLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Reply(http.MethodGet, "/admin/users", tt.status, tt.body)
			a := NewAdmin(backend.Client(t))

			assert.False(t, a.Fetch(context.Background(), api.UserFilter{}))
			assert.Equal(t, tt.expected, a.Error.Get())
		})
	}
}

func TestFetchByID(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodGet, "/admin/users/{id}", http.StatusOK, domain.AdminUser{Id: 2, Username: "bob"})
	a := NewAdmin(backend.Client(t))

	require.True(t, a.FetchByID(context.Background(), 2))
	assert.Equal(t, domain.Username("bob"), a.Selected.Get().Username)

	missing := apitest.NewBackend(t)
	missing.Reply(http.MethodGet, "/admin/users/{id}", http.StatusNotFound, nil)
	b := NewAdmin(missing.Client(t))
	assert.False(t, b.FetchByID(context.Background(), 7))
	assert.Equal(t, MsgLoadOneFailed, b.Error.Get())
}

func TestModeration(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodPut, "/admin/users/{id}/block", http.StatusNoContent, nil)
	backend.Reply(http.MethodPut, "/admin/users/{id}/unblock", http.StatusNoContent, nil)
	backend.Reply(http.MethodPut, "/admin/users/{id}/promote", http.StatusNoContent, nil)
	backend.Reply(http.MethodDelete, "/admin/users/{id}", http.StatusNoContent, nil)
	a := NewAdmin(backend.Client(t))
	a.Users.Set(listing().Content)
	a.Selected.Set(&domain.AdminUser{Id: 1})
	ctx := context.Background()

	require.NoError(t, a.Block(ctx, 1))
	assert.True(t, a.Users.Get()[0].IsBlocked)
	assert.True(t, a.Selected.Get().IsBlocked)

	require.NoError(t, a.Unblock(ctx, 2))
	assert.False(t, a.Users.Get()[1].IsBlocked)

	require.NoError(t, a.Promote(ctx, 1))
	require.NoError(t, a.Promote(ctx, 1))
	assert.Equal(t, []domain.Role{{Name: domain.RoleUser}, {Name: domain.RoleAdmin}}, a.Users.Get()[0].Roles)

	require.NoError(t, a.Delete(ctx, 1))
	assert.Len(t, a.Users.Get(), 1)
	assert.Nil(t, a.Selected.Get())

	require.NoError(t, a.Block(ctx, 99), "unknown users are changed on the backend only")
	assert.Equal(t, 2, backend.Calls(http.MethodPut, "/admin/users/{id}/promote"))
}

func TestModerationFailure(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodPut, "/admin/users/{id}/block", http.StatusForbidden, api.ErrorResponse{Message: "Cannot block an admin"})
	backend.Reply(http.MethodPut, "/admin/users/{id}/unblock", http.StatusInternalServerError, nil)
	a := NewAdmin(backend.Client(t))
	a.Users.Set(listing().Content)

	err := a.Block(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, errors.StatusCode(err))
	assert.Equal(t, "Cannot block an admin", a.Error.Get())
	assert.False(t, a.Users.Get()[0].IsBlocked)
	assert.False(t, a.IsBlocking(1))

	require.Error(t, a.Unblock(context.Background(), 2))
	assert.Equal(t, MsgUnblockFailed, a.Error.Get())
	assert.True(t, a.Users.Get()[1].IsBlocked)
}

func TestIsBlocking(t *testing.T) {
	backend := apitest.NewBackend(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.Handle(http.MethodPut, "/admin/users/{id}/block", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	a := NewAdmin(backend.Client(t))

	done := make(chan error, 1)
	go func() { done <- a.Block(context.Background(), 1) }()
	<-entered

	assert.True(t, a.IsBlocking(1))
	assert.False(t, a.IsBlocking(2))
	assert.ErrorIs(t, a.Unblock(context.Background(), 1), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, a.IsBlocking(1))
}
