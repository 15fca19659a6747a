package posts

import (
	"context"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
)

type Client interface {
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	GetPublicPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	CreatePost(ctx context.Context, req api.PostRequest) (*domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, req api.PostRequest) (*domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
	AdminDeletePost(ctx context.Context, id domain.PostId) error
	LikePost(ctx context.Context, id domain.PostId) error
	UnlikePost(ctx context.Context, id domain.PostId) error
	FilterPosts(ctx context.Context, params api.ListParams) (*domain.Page[domain.Post], error)
	RecentPosts(ctx context.Context, limit int) ([]domain.Post, error)
	PostsByAuthor(ctx context.Context, creatorId domain.UserId, limit int) ([]domain.Post, error)
	PostsByTag(ctx context.Context, tag domain.TagName, limit int) ([]domain.Post, error)
	PostCount(ctx context.Context) (int64, error)
	Tags(ctx context.Context) ([]domain.TagName, error)
	AddTags(ctx context.Context, id domain.PostId, tags []domain.TagName) error
	RemoveTag(ctx context.Context, id domain.PostId, tag domain.TagName) error
}

// CurrentUser is the session view posts need.
type CurrentUser interface {
	CurrentUser() *domain.CurrentUser
}
