package apiclient

import (
	"context"
	"net/http"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
)

// Comments lists one page of a post's comments, oldest first by default.
func (c *APIClient) Comments(ctx context.Context, postId domain.PostId, params api.ListParams) (*domain.Page[domain.Comment], error) {
	body, err := c.do(ctx, http.MethodGet, "/private/posts/{postId}/comments", idPath("/private/posts/%d/comments", postId), params.Values(), nil)
	if err != nil {
		return nil, err
	}
	var page domain.Page[domain.Comment]
	if err := decodeInto(body, "comments page", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *APIClient) CreateComment(ctx context.Context, postId domain.PostId, req api.CreateCommentRequest) (*domain.Comment, error) {
	return c.comment(ctx, http.MethodPost, "/private/posts/{postId}/comments", idPath("/private/posts/%d/comments", postId), req)
}

func (c *APIClient) UpdateComment(ctx context.Context, id domain.CommentId, req api.UpdateCommentRequest) (*domain.Comment, error) {
	return c.comment(ctx, http.MethodPut, "/private/comments/{id}", idPath("/private/comments/%d", id), req)
}

// DeleteComment soft-deletes a comment the caller owns.
func (c *APIClient) DeleteComment(ctx context.Context, id domain.CommentId) error {
	_, err := c.do(ctx, http.MethodDelete, "/private/comments/{id}", idPath("/private/comments/%d", id), nil, nil)
	return err
}

func (c *APIClient) AdminDeleteComment(ctx context.Context, id domain.CommentId) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/comments/{id}", idPath("/admin/comments/%d", id), nil, nil)
	return err
}

// LikeComment and UnlikeComment return the comment with its new like state.
func (c *APIClient) LikeComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error) {
	return c.comment(ctx, http.MethodPost, "/private/comments/{id}/likes", idPath("/private/comments/%d/likes", id), nil)
}

func (c *APIClient) UnlikeComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error) {
	return c.comment(ctx, http.MethodDelete, "/private/comments/{id}/likes", idPath("/private/comments/%d/likes", id), nil)
}

func (c *APIClient) comment(ctx context.Context, method, route, path string, body any) (*domain.Comment, error) {
	resp, err := c.do(ctx, method, route, path, nil, body)
	if err != nil {
		return nil, err
	}
	var cm domain.Comment
	if err := decodeInto(resp, "comment", &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}
