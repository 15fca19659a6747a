package apiclient_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/forumstartup/forum/frontend/internal/apiclient"
	"github.com/forumstartup/forum/frontend/internal/apiclient/apitest"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := apiclient.New("localhost:8080")
	assert.Error(t, err)
	_, err = apiclient.New("http://localhost:8080/api/")
	assert.NoError(t, err)
}

func TestErrorBodies(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           any
		expectedMsg    string
		expectedDetail string
		expectedFields map[string]string
	}{
		{
			name:        "error key",
			status:      http.StatusNotFound,
			body:        map[string]string{"error": "Post not found"},
			expectedMsg: "Post not found",
		},
		{
			name:           "error with details",
			status:         http.StatusUnauthorized,
			body:           map[string]string{"error": "Unauthorized", "details": "User is blocked"},
			expectedMsg:    "Unauthorized",
			expectedDetail: "User is blocked",
		},
		{
			name:        "message key wins",
			status:      http.StatusConflict,
			body:        map[string]string{"message": "Username taken", "error": "Conflict"},
			expectedMsg: "Username taken",
		},
		{
			name:           "field errors",
			status:         http.StatusBadRequest,
			body:           map[string]any{"errors": map[string]string{"title": "too short"}},
			expectedFields: map[string]string{"title": "too short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Reply(http.MethodGet, "/private/posts/{postId}", tt.status, tt.body)

			_, err := backend.Client(t).GetPost(context.Background(), 1)
			require.Error(t, err)

			e, ok := errors.AsStatus(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, tt.expectedMsg, e.Message)
			assert.Equal(t, tt.expectedDetail, e.Details)
			assert.Equal(t, tt.expectedFields, e.FieldErrors)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := backend.Client(t)
	backend.Server.Close()

	_, err := client.RecentPosts(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Equal(t, 0, errors.StatusCode(err))
}

func TestRequestHeaders(t *testing.T) {
	backend := apitest.NewBackend(t)
	var requestID, contentType string
	backend.Handle(http.MethodPost, "/private/posts", func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(apiclient.RequestIDHeader)
		contentType = r.Header.Get("Content-Type")
		apitest.JSON(w, http.StatusCreated, domain.Post{Id: 9, Title: "t"})
	})

	p, err := backend.Client(t).CreatePost(context.Background(), api.PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, domain.PostId(9), p.Id)
	assert.Equal(t, "application/json", contentType)
	_, err = uuid.Parse(requestID)
	assert.NoError(t, err)
}

func TestTimeout(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Handle(http.MethodGet, "/public/tags", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	_, err := backend.Client(t, apiclient.WithTimeout(20*time.Millisecond)).Tags(context.Background())
	assert.True(t, errors.IsTransport(err))
}

func TestUnauthorizedHook(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodGet, "/private/auth/me", http.StatusUnauthorized, nil)
	backend.Reply(http.MethodPost, "/public/auth/login", http.StatusUnauthorized, map[string]string{"error": "Bad credentials"})

	client := backend.Client(t)
	fired := 0
	client.OnUnauthorized(func() { fired++ })

	_, err := client.Me(context.Background())
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, 1, fired)

	err = client.Login(context.Background(), api.LoginRequest{Username: "a", Password: "b"})
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, 1, fired, "a rejected login is not a lost session")
}

func TestSessionCookies(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Handle(http.MethodPost, "/public/auth/login", func(w http.ResponseWriter, r *http.Request) {
		apitest.SetSession(w, "token-1")
		w.WriteHeader(http.StatusOK)
	})
	backend.Handle(http.MethodGet, "/private/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("jwt")
		if err != nil || cookie.Value != "token-1" {
			apitest.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		apitest.JSON(w, http.StatusOK, domain.CurrentUser{Username: "ann", Roles: []domain.Role{{Name: domain.RoleUser}}})
	})

	ctx := context.Background()
	client := backend.Client(t)
	require.NoError(t, client.Login(ctx, api.LoginRequest{Username: "ann", Password: "secret"}))
	assert.Equal(t, "token-1", client.SessionToken())

	path := filepath.Join(t.TempDir(), "state", "cookies.json")
	require.NoError(t, client.SaveCookies(path))

	restored := backend.Client(t)
	require.NoError(t, restored.LoadCookies(path))
	me, err := restored.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)

	restored.ClearSession()
	assert.Empty(t, restored.SessionToken())
	_, err = restored.Me(ctx)
	assert.True(t, errors.IsUnauthorized(err))

	assert.NoError(t, backend.Client(t).LoadCookies(filepath.Join(t.TempDir(), "missing.json")))
}

func TestFilterPostsQuery(t *testing.T) {
	backend := apitest.NewBackend(t)
	var rawQuery string
	backend.Handle(http.MethodGet, "/private/posts", func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		apitest.JSON(w, http.StatusOK, domain.Page[domain.Post]{Content: []domain.Post{{Id: 1}, {Id: 2}}, TotalElements: 2})
	})

	page, err := backend.Client(t).FilterPosts(context.Background(), api.ListParams{Page: api.Int(1), Size: api.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, "page=1&size=5", rawQuery)
	assert.Len(t, page.Content, 2)
}

func TestPostCountShapes(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "bare number", body: 42},
		{name: "wrapped", body: map[string]int{"totalCount": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Reply(http.MethodGet, "/public/posts/count", http.StatusOK, tt.body)

			n, err := backend.Client(t).PostCount(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(42), n)
		})
	}
}

func TestMeRequiresUsername(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "empty object", body: "{}"},
		{name: "blank username", body: `{"username":"","roles":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Handle(http.MethodGet, "/private/auth/me", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			})

			user, err := backend.Client(t).Me(context.Background())
			assert.Error(t, err)
			assert.Nil(t, user)
		})
	}
}

func TestTagPathIsEscaped(t *testing.T) {
	backend := apitest.NewBackend(t)
	var tag string
	backend.Handle(http.MethodGet, "/private/posts/by-tag/{tagName}", func(w http.ResponseWriter, r *http.Request) {
		tag = r.URL.EscapedPath()
		apitest.JSON(w, http.StatusOK, []domain.Post{})
	})

	_, err := backend.Client(t).PostsByTag(context.Background(), "go lang", 0)
	require.NoError(t, err)
	assert.Equal(t, "/api/private/posts/by-tag/go%20lang", tag)
}
