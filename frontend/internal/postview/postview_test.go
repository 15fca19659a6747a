package postview

import (
	"context"
	"net/http"
	"testing"

	"github.com/forumstartup/forum/frontend/internal/apiclient/apitest"
	"github.com/forumstartup/forum/frontend/internal/comments"
	"github.com/forumstartup/forum/frontend/internal/likes"
	"github.com/forumstartup/forum/frontend/internal/markdown"
	"github.com/forumstartup/forum/frontend/internal/posts"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signedIn struct{}

func (signedIn) CurrentUser() *domain.CurrentUser {
	return &domain.CurrentUser{Id: 4, Username: "ann", Roles: []domain.Role{{Name: domain.RoleUser}}}
}

func (signedIn) HasRole(roles ...domain.RoleName) bool {
	return signedIn{}.CurrentUser().HasRole(roles...)
}

func newView(t *testing.T, backend *apitest.Backend) *View {
	client := backend.Client(t)
	return New(
		posts.NewPost(client, signedIn{}, likes.NewToggler[domain.PostId]("post", 0)),
		comments.NewThread(client, signedIn{}, likes.NewToggler[domain.CommentId]("comment", 0), 10),
		comments.NewEditor(client, signedIn{}),
		markdown.New(),
	)
}

func TestLoad(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Reply(http.MethodGet, "/private/posts/{postId}", http.StatusOK,
		domain.Post{Id: 3, Title: "A title of sixteen", Content: "**hello** <script>x</script>"})
	backend.Reply(http.MethodGet, "/private/posts/{postId}/comments", http.StatusOK,
		domain.Page[domain.Comment]{Content: []domain.Comment{{Id: 1, PostId: 3, Content: "_first_"}}})
	v := newView(t, backend)

	require.NoError(t, v.Load(context.Background(), 3))

	assert.Equal(t, domain.PostId(3), v.Post.Data.Get().Id)
	assert.Len(t, v.Thread.Comments.Get(), 1)
	assert.Equal(t, domain.PostId(3), v.Editor.Form.Get().PostId)
	assert.Contains(t, v.Content(), "<strong>hello</strong>")
	assert.NotContains(t, v.Content(), "<script>")
	assert.Equal(t, "<p><em>first</em></p>", v.CommentHTML(v.Thread.Comments.Get()[0]))
	assert.Empty(t, v.CommentHTML(domain.Comment{Content: "gone", Deleted: true}))
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name          string
		postStatus    int
		commentStatus int
		expected      string
	}{
		{name: "post missing", postStatus: http.StatusNotFound, commentStatus: http.StatusOK, expected: "load post: " + posts.MsgLoadFailed},
		{name: "comments fail", postStatus: http.StatusOK, commentStatus: http.StatusInternalServerError, expected: "load comments: " + comments.MsgLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := apitest.NewBackend(t)
			var post, page any
			if tt.postStatus == http.StatusOK {
				post = domain.Post{Id: 3}
			}
			if tt.commentStatus == http.StatusOK {
				page = domain.Page[domain.Comment]{}
			}
			backend.Reply(http.MethodGet, "/private/posts/{postId}", tt.postStatus, post)
			backend.Reply(http.MethodGet, "/private/posts/{postId}/comments", tt.commentStatus, page)
			v := newView(t, backend)

			err := v.Load(context.Background(), 3)

			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestLoadZeroId(t *testing.T) {
	backend := apitest.NewBackend(t)
	v := newView(t, backend)

	assert.Error(t, v.Load(context.Background(), 0))
	assert.Equal(t, 0, backend.Calls(http.MethodGet, "/private/posts/{postId}"))
}

func TestReply(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Handle(http.MethodPost, "/private/posts/{postId}/comments", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateCommentRequest
		if apitest.Decode(w, r, &req) {
			apitest.JSON(w, http.StatusCreated, domain.Comment{Id: 9, PostId: 3, Content: req.Content})
		}
	})
	v := newView(t, backend)
	v.Editor.Form.Set(comments.Form{PostId: 3, Content: "nice"})

	c, ok := v.Reply(context.Background())

	require.True(t, ok)
	assert.Equal(t, domain.CommentId(9), c.Id)
	got, held := v.Thread.Get(9)
	assert.True(t, held)
	assert.Equal(t, "nice", got.Content)
}
