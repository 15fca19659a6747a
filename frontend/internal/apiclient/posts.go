package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
)

func (c *APIClient) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	return c.post(ctx, http.MethodGet, "/private/posts/{postId}", idPath("/private/posts/%d", id), nil)
}

// GetPublicPost reads a post without a session.
func (c *APIClient) GetPublicPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	return c.post(ctx, http.MethodGet, "/public/posts/{postId}", idPath("/public/posts/%d", id), nil)
}

func (c *APIClient) CreatePost(ctx context.Context, req api.PostRequest) (*domain.Post, error) {
	return c.post(ctx, http.MethodPost, "/private/posts", "/private/posts", req)
}

func (c *APIClient) UpdatePost(ctx context.Context, id domain.PostId, req api.PostRequest) (*domain.Post, error) {
	return c.post(ctx, http.MethodPut, "/private/posts/{postId}", idPath("/private/posts/%d", id), req)
}

func (c *APIClient) DeletePost(ctx context.Context, id domain.PostId) error {
	_, err := c.do(ctx, http.MethodDelete, "/private/posts/{postId}", idPath("/private/posts/%d", id), nil, nil)
	return err
}

func (c *APIClient) AdminDeletePost(ctx context.Context, id domain.PostId) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/posts/{postId}", idPath("/admin/posts/%d", id), nil, nil)
	return err
}

func (c *APIClient) LikePost(ctx context.Context, id domain.PostId) error {
	_, err := c.do(ctx, http.MethodPost, "/private/posts/{postId}/like", idPath("/private/posts/%d/like", id), nil, nil)
	return err
}

func (c *APIClient) UnlikePost(ctx context.Context, id domain.PostId) error {
	_, err := c.do(ctx, http.MethodPost, "/private/posts/{postId}/unlike", idPath("/private/posts/%d/unlike", id), nil, nil)
	return err
}

// FilterPosts lists posts page by page. Unset parameters fall back to the
// backend defaults (page 0, size 12, newest first).
func (c *APIClient) FilterPosts(ctx context.Context, params api.ListParams) (*domain.Page[domain.Post], error) {
	body, err := c.do(ctx, http.MethodGet, "/private/posts", "/private/posts", params.Values(), nil)
	if err != nil {
		return nil, err
	}
	var page domain.Page[domain.Post]
	if err := decodeInto(body, "posts page", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *APIClient) RecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.posts(ctx, "/public/posts/recent", "/public/posts/recent", query)
}

func (c *APIClient) PostsByAuthor(ctx context.Context, creatorId domain.UserId, limit int) ([]domain.Post, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.posts(ctx, "/private/posts/by-author/{creatorId}", idPath("/private/posts/by-author/%d", creatorId), query)
}

func (c *APIClient) PostsByTag(ctx context.Context, tag domain.TagName, limit int) ([]domain.Post, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.posts(ctx, "/private/posts/by-tag/{tagName}", idPath("/private/posts/by-tag/%s", tag), query)
}

// PostCount returns the number of posts on the platform. The backend
// answers with either a bare number or a single-field object.
func (c *APIClient) PostCount(ctx context.Context) (int64, error) {
	body, err := c.do(ctx, http.MethodGet, "/public/posts/count", "/public/posts/count", nil, nil)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := json.Unmarshal(body, &n); err == nil {
		return n, nil
	}
	var wrapped map[string]json.Number
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return 0, fmt.Errorf("cannot decode post count response: %w", err)
	}
	for _, v := range wrapped {
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("cannot decode post count response: no numeric field in %s", body)
}

func (c *APIClient) Tags(ctx context.Context) ([]domain.TagName, error) {
	body, err := c.do(ctx, http.MethodGet, "/public/tags", "/public/tags", nil, nil)
	if err != nil {
		return nil, err
	}
	var tags []domain.TagName
	if err := decodeInto(body, "tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *APIClient) AddTags(ctx context.Context, id domain.PostId, tags []domain.TagName) error {
	_, err := c.do(ctx, http.MethodPost, "/private/posts/{postId}/tags", idPath("/private/posts/%d/tags", id), nil, api.AddTagsRequest{Tags: tags})
	return err
}

func (c *APIClient) RemoveTag(ctx context.Context, id domain.PostId, tag domain.TagName) error {
	_, err := c.do(ctx, http.MethodDelete, "/private/posts/{postId}/tags", idPath("/private/posts/%d/tags", id), nil, api.RemoveTagRequest{Tag: tag})
	return err
}

func (c *APIClient) post(ctx context.Context, method, route, path string, body any) (*domain.Post, error) {
	resp, err := c.do(ctx, method, route, path, nil, body)
	if err != nil {
		return nil, err
	}
	var p domain.Post
	if err := decodeInto(resp, "post", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) posts(ctx context.Context, route, path string, query url.Values) ([]domain.Post, error) {
	body, err := c.do(ctx, http.MethodGet, route, path, query, nil)
	if err != nil {
		return nil, err
	}
	var list []domain.Post
	if err := decodeInto(body, "posts", &list); err != nil {
		return nil, err
	}
	return list, nil
}
