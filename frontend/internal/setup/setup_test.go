package setup

import (
	"context"
	"net/http"
	"testing"

	"github.com/forumstartup/forum/frontend/internal/apiclient/apitest"
	"github.com/forumstartup/forum/frontend/internal/notify"
	"github.com/forumstartup/forum/frontend/internal/router"
	"github.com/forumstartup/forum/frontend/internal/session"
	"github.com/forumstartup/forum/shared/config"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(t *testing.T, backend *apitest.Backend) *Dependencies {
	t.Helper()
	cfg := config.Default()
	cfg.Public.BaseURL = backend.URL()
	cfg.Public.SessionRefreshInterval = 0
	cfg.Public.LikeReconcileDelay = 0

	d, err := SetupDependencies(cfg, KeepLogger(), WithNotifier(&notify.Recorder{}))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestSetupRejectsBadURL(t *testing.T) {
	cfg := config.Default()
	cfg.Public.BaseURL = "localhost"

	_, err := SetupDependencies(cfg, KeepLogger())
	assert.Error(t, err)
}

func TestBoot(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		expected session.Status
	}{
		{
			name:     "signed in",
			status:   http.StatusOK,
			body:     domain.CurrentUser{Username: "ann", Roles: []domain.Role{{Name: domain.RoleUser}}},
			expected: session.Authenticated,
		},
		{
			name:     "no session",
			status:   http.StatusUnauthorized,
			body:     map[string]string{"error": "Unauthorized"},
			expected: session.Anonymous,
		},
		{
			name:     "user without a name",
			status:   http.StatusOK,
			body:     map[string]any{},
			expected: session.Anonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Reply(http.MethodGet, "/private/auth/me", tt.status, tt.body)
			d := newDeps(t, backend)

			assert.Equal(t, tt.expected, d.Boot(context.Background()))
			assert.Equal(t, router.HomePath, d.Router.Current.Get().Path)
		})
	}
}

func TestRejectedSessionSignsOut(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodGet, "/private/auth/me", http.StatusOK, domain.CurrentUser{Username: "ann"})
	backend.Reply(http.MethodGet, "/private/users/profile", http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	d := newDeps(t, backend)

	require.Equal(t, session.Authenticated, d.Boot(context.Background()))
	_, err := d.Router.Push(router.ProfilePath)
	require.NoError(t, err)
	require.Equal(t, router.ProfilePath, d.Router.Current.Get().Path)

	assert.False(t, d.Profile.Load(context.Background()))

	assert.Equal(t, session.Anonymous, d.Session.Status())
	assert.Equal(t, router.LoginPath, d.Router.Current.Get().Path)
}

func TestPostViewSharesState(t *testing.T) {
	backend := apitest.NewBackend(t)
	d := newDeps(t, backend)

	v := d.PostView()
	assert.Same(t, d.Post, v.Post)
	assert.Same(t, d.Thread, v.Thread)

	item := d.CommentItem(domain.Comment{Id: 1, PostId: 3})
	assert.Equal(t, domain.CommentId(1), item.Comment.Get().Id)
}
