package posts

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"github.com/forumstartup/forum/frontend/internal/likes"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/validation"
)

const (
	MsgLoadFailed      = "Failed to load post"
	MsgUpdateFailed    = "Failed to update post"
	MsgDeleteFailed    = "Failed to delete post"
	MsgLikeFailed      = "Failed to like post"
	MsgUnlikeFailed    = "Failed to unlike post"
	MsgAddTagsFailed   = "Failed to add tags"
	MsgRemoveTagFailed = "Failed to remove tag"
)

// Post is a single post opened for reading or editing.
type Post struct {
	Data state.Cell[*domain.Post]
	*state.Tracker

	client  Client
	session CurrentUser
	likes   *likes.Toggler[domain.PostId]
}

func NewPost(client Client, session CurrentUser, toggler *likes.Toggler[domain.PostId]) *Post {
	return &Post{
		Tracker: state.NewTracker("post"),
		client:  client,
		session: session,
		likes:   toggler,
	}
}

// FetchByID loads a post. An id of zero does nothing.
func (p *Post) FetchByID(ctx context.Context, id domain.PostId) bool {
	if id == 0 {
		return false
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[*domain.Post]{
		Name:     "post_fetch",
		Call:     func(ctx context.Context) (*domain.Post, error) { return p.client.GetPost(ctx, id) },
		Apply:    p.Data.Set,
		Fallback: MsgLoadFailed,
	})
	return ok
}

// FetchPublic loads a post without requiring a session.
func (p *Post) FetchPublic(ctx context.Context, id domain.PostId) bool {
	if id == 0 {
		return false
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[*domain.Post]{
		Name:     "post_fetch_public",
		Call:     func(ctx context.Context) (*domain.Post, error) { return p.client.GetPublicPost(ctx, id) },
		Apply:    p.Data.Set,
		Fallback: MsgLoadFailed,
	})
	return ok
}

// Edit changes the held post locally, e.g. as the user types.
func (p *Post) Edit(fn func(post *domain.Post)) {
	p.Data.Update(func(cur *domain.Post) *domain.Post {
		if cur == nil {
			return nil
		}
		cp := *cur
		fn(&cp)
		return &cp
	})
}

func postValues(title, content string) validation.Values {
	return validation.Values{
		validation.FieldTitle:   title,
		validation.FieldContent: content,
	}
}

// Validate checks the held post and publishes field errors.
func (p *Post) Validate() bool {
	cur := p.Data.Get()
	if cur == nil {
		return false
	}
	errs := validation.PostRules.Validate(postValues(cur.Title, cur.Content))
	p.FieldErrors.Set(errs)
	return errs.Valid()
}

// Update saves the held post's trimmed title and content.
func (p *Post) Update(ctx context.Context) bool {
	cur := p.Data.Get()
	if cur == nil || cur.Id == 0 {
		return false
	}
	req := api.PostRequest{Title: strings.TrimSpace(cur.Title), Content: strings.TrimSpace(cur.Content)}
	_, ok := state.Run(ctx, p.Tracker, state.Action[*domain.Post]{
		Name: "post_update",
		Validate: func() validation.Errors {
			return validation.PostRules.Validate(postValues(cur.Title, cur.Content))
		},
		Call: func(ctx context.Context) (*domain.Post, error) { return p.client.UpdatePost(ctx, cur.Id, req) },
		Apply: func(updated *domain.Post) {
			if updated == nil || updated.Id == 0 {
				p.Edit(func(post *domain.Post) { post.Title, post.Content = req.Title, req.Content })
				return
			}
			p.Data.Set(updated)
		},
		Fallback: MsgUpdateFailed,
	})
	return ok
}

func (p *Post) Delete(ctx context.Context, id domain.PostId) bool {
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name:     "post_delete",
		Call:     func(ctx context.Context) (struct{}, error) { return struct{}{}, p.client.DeletePost(ctx, id) },
		Apply:    func(struct{}) { p.Data.Set(nil) },
		Fallback: MsgDeleteFailed,
	})
	return ok
}

// AdminDelete removes any post as an administrator.
func (p *Post) AdminDelete(ctx context.Context, id domain.PostId) bool {
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name: "post_admin_delete",
		Call: func(ctx context.Context) (struct{}, error) { return struct{}{}, p.client.AdminDeletePost(ctx, id) },
		Apply: func(struct{}) {
			if cur := p.Data.Get(); cur != nil && cur.Id == id {
				p.Data.Set(nil)
			}
		},
		Fallback: MsgDeleteFailed,
	})
	return ok
}

// Like and Unlike send the change without touching the held post; they
// need a post to be open.
func (p *Post) Like(ctx context.Context, id domain.PostId) bool {
	return p.send(ctx, "post_like", MsgLikeFailed, func(ctx context.Context) error { return p.client.LikePost(ctx, id) })
}

func (p *Post) Unlike(ctx context.Context, id domain.PostId) bool {
	return p.send(ctx, "post_unlike", MsgUnlikeFailed, func(ctx context.Context) error { return p.client.UnlikePost(ctx, id) })
}

func (p *Post) send(ctx context.Context, name, fallback string, call func(ctx context.Context) error) bool {
	if cur := p.Data.Get(); cur == nil || cur.Id == 0 {
		return false
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name:     name,
		Call:     func(ctx context.Context) (struct{}, error) { return struct{}{}, call(ctx) },
		Fallback: fallback,
	})
	return ok
}

// ToggleLike flips the like on the held post at once and reverts it if
// the backend refuses.
func (p *Post) ToggleLike(ctx context.Context) error {
	if p.session.CurrentUser() == nil {
		return errors.ErrNotAuthenticated
	}
	cur := p.Data.Get()
	if cur == nil {
		return likes.ErrUnknownTarget
	}
	id := cur.Id
	target := likeTarget(p.client, id,
		func() (*domain.Post, bool) {
			post := p.Data.Get()
			return post, post != nil && post.Id == id
		},
		func(c likes.Counts) {
			p.Edit(func(post *domain.Post) {
				if post.Id == id {
					post.LikedByCurrentUser, post.LikesCount = c.Liked, c.Count
				}
			})
		})

	err := p.likes.Toggle(ctx, id, target)
	if err != nil && !stderrors.Is(err, likes.ErrToggleInFlight) {
		fallback := MsgLikeFailed
		if cur.LikedByCurrentUser {
			fallback = MsgUnlikeFailed
		}
		p.Fail(state.ErrorMessage(err, fallback))
	}
	return err
}

// likeTarget binds a toggle to a post held somewhere in view state.
func likeTarget(client Client, id domain.PostId, get func() (*domain.Post, bool), apply func(likes.Counts)) likes.Target {
	return likes.Target{
		Current: func() (likes.Counts, bool) {
			post, ok := get()
			if !ok {
				return likes.Counts{}, false
			}
			return likes.Counts{Liked: post.LikedByCurrentUser, Count: post.LikesCount}, true
		},
		Apply: apply,
		Like: func(ctx context.Context) (*likes.Counts, error) {
			return nil, client.LikePost(ctx, id)
		},
		Unlike: func(ctx context.Context) (*likes.Counts, error) {
			return nil, client.UnlikePost(ctx, id)
		},
		Reconcile: func(ctx context.Context) (likes.Counts, error) {
			post, err := client.GetPost(ctx, id)
			if err != nil {
				return likes.Counts{}, err
			}
			return likes.Counts{Liked: post.LikedByCurrentUser, Count: post.LikesCount}, nil
		},
	}
}

// AddTags validates each tag and attaches them to the held post.
func (p *Post) AddTags(ctx context.Context, tags ...domain.TagName) bool {
	cur := p.Data.Get()
	if cur == nil || cur.Id == 0 {
		return false
	}
	cleaned := make([]domain.TagName, 0, len(tags))
	for _, tag := range tags {
		cleaned = append(cleaned, strings.TrimSpace(tag))
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name: "post_add_tags",
		Validate: func() validation.Errors {
			if len(cleaned) == 0 {
				return validation.Errors{validation.FieldTag: "Tag cannot be blank"}
			}
			for _, tag := range cleaned {
				if msg, ok := validation.TagRules.ValidateField(validation.FieldTag, tag); !ok {
					return validation.Errors{validation.FieldTag: msg}
				}
			}
			return validation.Errors{}
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.client.AddTags(ctx, cur.Id, cleaned)
		},
		Apply: func(struct{}) {
			p.Edit(func(post *domain.Post) {
				for _, tag := range cleaned {
					if !slices.Contains(post.Tags, tag) {
						post.Tags = append(slices.Clone(post.Tags), tag)
					}
				}
			})
		},
		Fallback: MsgAddTagsFailed,
	})
	return ok
}

func (p *Post) RemoveTag(ctx context.Context, tag domain.TagName) bool {
	cur := p.Data.Get()
	if cur == nil || cur.Id == 0 {
		return false
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name: "post_remove_tag",
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.client.RemoveTag(ctx, cur.Id, tag)
		},
		Apply: func(struct{}) {
			p.Edit(func(post *domain.Post) {
				post.Tags = slices.DeleteFunc(slices.Clone(post.Tags), func(t domain.TagName) bool { return t == tag })
			})
		},
		Fallback: MsgRemoveTagFailed,
	})
	return ok
}
