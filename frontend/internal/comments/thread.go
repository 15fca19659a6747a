package comments

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/forumstartup/forum/frontend/internal/likes"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
)

const (
	MsgLoadFailed   = "Failed to load comments"
	MsgLikeFailed   = "Failed to like comment"
	MsgUnlikeFailed = "Failed to unlike comment"
)

type Client interface {
	Comments(ctx context.Context, postId domain.PostId, params api.ListParams) (*domain.Page[domain.Comment], error)
	CreateComment(ctx context.Context, postId domain.PostId, req api.CreateCommentRequest) (*domain.Comment, error)
	UpdateComment(ctx context.Context, id domain.CommentId, req api.UpdateCommentRequest) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id domain.CommentId) error
	AdminDeleteComment(ctx context.Context, id domain.CommentId) error
	LikeComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error)
	UnlikeComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error)
}

type Session interface {
	CurrentUser() *domain.CurrentUser
	HasRole(roles ...domain.RoleName) bool
}

// Thread holds the comments of one post.
type Thread struct {
	Comments state.Cell[[]domain.Comment]
	*state.Tracker

	client   Client
	session  Session
	likes    *likes.Toggler[domain.CommentId]
	pageSize int
}

func NewThread(client Client, session Session, toggler *likes.Toggler[domain.CommentId], pageSize int) *Thread {
	return &Thread{
		Tracker:  state.NewTracker("comments"),
		client:   client,
		session:  session,
		likes:    toggler,
		pageSize: pageSize,
	}
}

// Fetch loads one page of a post's comments. Page defaults to 0 and size
// to the configured page size.
func (t *Thread) Fetch(ctx context.Context, postId domain.PostId, params api.ListParams) bool {
	if params.Page == nil {
		params.Page = api.Int(0)
	}
	if params.Size == nil && t.pageSize > 0 {
		params.Size = api.Int(t.pageSize)
	}
	_, ok := state.Run(ctx, t.Tracker, state.Action[*domain.Page[domain.Comment]]{
		Name: "comments_fetch",
		Precondition: func() error {
			if u := t.session.CurrentUser(); u == nil || u.Id == 0 {
				return errors.ErrNotAuthenticated
			}
			return nil
		},
		Call: func(ctx context.Context) (*domain.Page[domain.Comment], error) {
			return t.client.Comments(ctx, postId, params)
		},
		Apply: func(page *domain.Page[domain.Comment]) {
			t.Comments.Set(page.Content)
		},
		Fallback: MsgLoadFailed,
	})
	return ok
}

// Add inserts a new comment and keeps the list newest first.
func (t *Thread) Add(c domain.Comment) {
	t.Comments.Update(func(list []domain.Comment) []domain.Comment {
		out := append(slices.Clone(list), c)
		slices.SortStableFunc(out, func(a, b domain.Comment) int {
			return b.CreatedAt.Compare(a.CreatedAt.Time)
		})
		return out
	})
}

// Replace swaps in an updated comment with the same id, if held.
func (t *Thread) Replace(c domain.Comment) {
	t.Comments.Update(func(list []domain.Comment) []domain.Comment {
		i := slices.IndexFunc(list, func(x domain.Comment) bool { return x.Id == c.Id })
		if i < 0 {
			return list
		}
		out := slices.Clone(list)
		out[i] = c
		return out
	})
}

func (t *Thread) Remove(id domain.CommentId) {
	t.Comments.Update(func(list []domain.Comment) []domain.Comment {
		return slices.DeleteFunc(slices.Clone(list), func(x domain.Comment) bool { return x.Id == id })
	})
}

func (t *Thread) Get(id domain.CommentId) (domain.Comment, bool) {
	for _, c := range t.Comments.Get() {
		if c.Id == id {
			return c, true
		}
	}
	return domain.Comment{}, false
}

// TopLevel returns the comments that answer the post itself.
func (t *Thread) TopLevel() []domain.Comment {
	var out []domain.Comment
	for _, c := range t.Comments.Get() {
		if !c.IsReply() {
			out = append(out, c)
		}
	}
	return out
}

func (t *Thread) Replies(parentId domain.CommentId) []domain.Comment {
	var out []domain.Comment
	for _, c := range t.Comments.Get() {
		if c.ParentId != nil && *c.ParentId == parentId {
			out = append(out, c)
		}
	}
	return out
}

// ToggleLike flips the like on a held comment. The backend answers with
// the comment, whose counts replace the optimistic ones.
func (t *Thread) ToggleLike(ctx context.Context, id domain.CommentId) error {
	if t.session.CurrentUser() == nil {
		return errors.ErrNotAuthenticated
	}
	before, held := t.Get(id)
	confirmed := func(c *domain.Comment, err error) (*likes.Counts, error) {
		if err != nil || c == nil {
			return nil, err
		}
		return &likes.Counts{Liked: c.LikedByCurrentUser, Count: c.LikesCount}, nil
	}

	err := t.likes.Toggle(ctx, id, likes.Target{
		Current: func() (likes.Counts, bool) {
			c, ok := t.Get(id)
			return likes.Counts{Liked: c.LikedByCurrentUser, Count: c.LikesCount}, ok
		},
		Apply: func(counts likes.Counts) {
			if c, ok := t.Get(id); ok {
				c.LikedByCurrentUser, c.LikesCount = counts.Liked, counts.Count
				t.Replace(c)
			}
		},
		Like: func(ctx context.Context) (*likes.Counts, error) {
			return confirmed(t.client.LikeComment(ctx, id))
		},
		Unlike: func(ctx context.Context) (*likes.Counts, error) {
			return confirmed(t.client.UnlikeComment(ctx, id))
		},
	})
	if err != nil && held && !stderrors.Is(err, likes.ErrToggleInFlight) {
		fallback := MsgLikeFailed
		if before.LikedByCurrentUser {
			fallback = MsgUnlikeFailed
		}
		t.Fail(state.ErrorMessage(err, fallback))
	}
	return err
}
