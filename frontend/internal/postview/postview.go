// Package postview loads and drives the page of a single post.
package postview

import (
	"context"
	"fmt"

	"github.com/forumstartup/forum/frontend/internal/comments"
	"github.com/forumstartup/forum/frontend/internal/markdown"
	"github.com/forumstartup/forum/frontend/internal/posts"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"golang.org/x/sync/errgroup"
)

type View struct {
	Post   *posts.Post
	Thread *comments.Thread
	Editor *comments.Editor

	renderer *markdown.Renderer
}

func New(post *posts.Post, thread *comments.Thread, editor *comments.Editor, renderer *markdown.Renderer) *View {
	return &View{Post: post, Thread: thread, Editor: editor, renderer: renderer}
}

// Load fetches the post and the first page of its comments in parallel.
// The first failure cancels the other request and is returned.
func (v *View) Load(ctx context.Context, id domain.PostId) error {
	if id == 0 {
		return fmt.Errorf("load post: %s", comments.MsgPostIdMissing)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !v.Post.FetchByID(ctx, id) {
			return failure("load post", v.Post.Tracker)
		}
		return nil
	})
	g.Go(func() error {
		if !v.Thread.Fetch(ctx, id, api.ListParams{}) {
			return failure("load comments", v.Thread.Tracker)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	v.Editor.Form.Set(comments.Form{PostId: id})
	return nil
}

func failure(what string, t *state.Tracker) error {
	if msg := t.Error.Get(); msg != "" {
		return fmt.Errorf("%s: %s", what, msg)
	}
	return fmt.Errorf("%s: %w", what, context.Canceled)
}

// Content is the held post's body as safe HTML.
func (v *View) Content() string {
	p := v.Post.Data.Get()
	if p == nil {
		return ""
	}
	return v.renderer.Render(p.Content)
}

// CommentHTML renders one comment's body. Deleted comments render empty.
func (v *View) CommentHTML(c domain.Comment) string {
	if c.Deleted {
		return ""
	}
	return v.renderer.Render(c.Content)
}

// Reply posts the editor's comment and adds it to the thread.
func (v *View) Reply(ctx context.Context) (*domain.Comment, bool) {
	c, ok := v.Editor.Create(ctx)
	if ok && c != nil {
		v.Thread.Add(*c)
	}
	return c, ok
}
