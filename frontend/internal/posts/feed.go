package posts

import (
	"context"
	stderrors "errors"

	"github.com/forumstartup/forum/frontend/internal/likes"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
)

const (
	MsgRecentFailed  = "Failed to load recent posts"
	MsgCountFailed   = "Failed to load post count"
	MsgListFailed    = "Failed to load posts"
	MsgMyPostsFailed = "Failed to load your posts"
	MsgTagsFailed    = "Failed to load tags"
)

type PageInfo struct {
	Number        int
	Size          int
	TotalPages    int
	TotalElements int64
	First         bool
	Last          bool
}

// Feed is a listing of posts plus the figures shown next to it.
// Listing calls share one request state, so a newer listing replaces an
// older one still in flight; count and tags have their own.
type Feed struct {
	Posts state.Cell[[]domain.Post]
	Page  state.Cell[PageInfo]
	Count state.Cell[int64]
	Tags  state.Cell[[]domain.TagName]

	*state.Tracker
	CountRequest *state.Tracker
	TagsRequest  *state.Tracker

	client      Client
	session     CurrentUser
	likes       *likes.Toggler[domain.PostId]
	recentLimit int
	pageSize    int
}

func NewFeed(client Client, session CurrentUser, toggler *likes.Toggler[domain.PostId], recentLimit, pageSize int) *Feed {
	return &Feed{
		Tracker:      state.NewTracker("feed"),
		CountRequest: state.NewTracker("feed_count"),
		TagsRequest:  state.NewTracker("feed_tags"),
		client:       client,
		session:      session,
		likes:        toggler,
		recentLimit:  recentLimit,
		pageSize:     pageSize,
	}
}

func (f *Feed) list(ctx context.Context, name, fallback string, precondition func() error, call func(ctx context.Context) ([]domain.Post, error)) bool {
	_, ok := state.Run(ctx, f.Tracker, state.Action[[]domain.Post]{
		Name:         name,
		Precondition: precondition,
		Call:         call,
		Apply:        f.Posts.Set,
		Fallback:     fallback,
	})
	return ok
}

func (f *Feed) requireUser() error {
	if f.session.CurrentUser() == nil {
		return errors.ErrNotAuthenticated
	}
	return nil
}

// requireUserId is requireUser for calls that need to know who the user is.
func (f *Feed) requireUserId() error {
	if u := f.session.CurrentUser(); u == nil || u.Id == 0 {
		return errors.ErrNotAuthenticated
	}
	return nil
}

func (f *Feed) FetchRecent(ctx context.Context) bool {
	return f.list(ctx, "feed_recent", MsgRecentFailed, nil, func(ctx context.Context) ([]domain.Post, error) {
		return f.client.RecentPosts(ctx, f.recentLimit)
	})
}

func (f *Feed) FetchTotalCount(ctx context.Context) bool {
	_, ok := state.Run(ctx, f.CountRequest, state.Action[int64]{
		Name:     "feed_count",
		Call:     f.client.PostCount,
		Apply:    f.Count.Set,
		Fallback: MsgCountFailed,
	})
	return ok
}

// FetchAll loads the first page of posts with the backend's defaults.
func (f *Feed) FetchAll(ctx context.Context) bool {
	return f.page(ctx, "feed_all", f.requireUser, api.ListParams{})
}

// Filter loads one page of posts. Page defaults to 0 and size to the
// configured page size; sort and search are sent only when set.
func (f *Feed) Filter(ctx context.Context, params api.ListParams) bool {
	if params.Page == nil {
		params.Page = api.Int(0)
	}
	if params.Size == nil && f.pageSize > 0 {
		params.Size = api.Int(f.pageSize)
	}
	return f.page(ctx, "feed_filter", nil, params)
}

func (f *Feed) page(ctx context.Context, name string, precondition func() error, params api.ListParams) bool {
	_, ok := state.Run(ctx, f.Tracker, state.Action[*domain.Page[domain.Post]]{
		Name:         name,
		Precondition: precondition,
		Call: func(ctx context.Context) (*domain.Page[domain.Post], error) {
			return f.client.FilterPosts(ctx, params)
		},
		Apply: func(page *domain.Page[domain.Post]) {
			f.Posts.Set(page.Content)
			f.Page.Set(PageInfo{
				Number:        page.Number,
				Size:          page.Size,
				TotalPages:    page.TotalPages,
				TotalElements: page.TotalElements,
				First:         page.First,
				Last:          page.Last,
			})
		},
		Fallback: MsgListFailed,
	})
	return ok
}

func (f *Feed) FetchCurrentUserPosts(ctx context.Context) bool {
	return f.list(ctx, "feed_mine", MsgMyPostsFailed, f.requireUserId, func(ctx context.Context) ([]domain.Post, error) {
		return f.client.PostsByAuthor(ctx, f.session.CurrentUser().Id, 0)
	})
}

// FetchByUser lists another user's posts. An id of zero does nothing.
func (f *Feed) FetchByUser(ctx context.Context, id domain.UserId) bool {
	if id == 0 {
		return false
	}
	return f.list(ctx, "feed_by_user", MsgListFailed, nil, func(ctx context.Context) ([]domain.Post, error) {
		return f.client.PostsByAuthor(ctx, id, 0)
	})
}

func (f *Feed) FetchByTag(ctx context.Context, tag domain.TagName) bool {
	if tag == "" {
		return false
	}
	return f.list(ctx, "feed_by_tag", MsgListFailed, nil, func(ctx context.Context) ([]domain.Post, error) {
		return f.client.PostsByTag(ctx, tag, 0)
	})
}

func (f *Feed) FetchTags(ctx context.Context) bool {
	_, ok := state.Run(ctx, f.TagsRequest, state.Action[[]domain.TagName]{
		Name:     "feed_tags",
		Call:     f.client.Tags,
		Apply:    f.Tags.Set,
		Fallback: MsgTagsFailed,
	})
	return ok
}

// ToggleLike flips the like on a listed post.
func (f *Feed) ToggleLike(ctx context.Context, id domain.PostId) error {
	if f.session.CurrentUser() == nil {
		return errors.ErrNotAuthenticated
	}
	find := func() (*domain.Post, bool) {
		for _, p := range f.Posts.Get() {
			if p.Id == id {
				return &p, true
			}
		}
		return nil, false
	}
	before, _ := find()

	target := likeTarget(f.client, id, find, func(c likes.Counts) {
		f.Posts.Update(func(list []domain.Post) []domain.Post {
			out := make([]domain.Post, len(list))
			copy(out, list)
			for i := range out {
				if out[i].Id == id {
					out[i].LikedByCurrentUser, out[i].LikesCount = c.Liked, c.Count
				}
			}
			return out
		})
	})

	err := f.likes.Toggle(ctx, id, target)
	if err != nil && before != nil && !stderrors.Is(err, likes.ErrToggleInFlight) {
		fallback := MsgLikeFailed
		if before.LikedByCurrentUser {
			fallback = MsgUnlikeFailed
		}
		f.Fail(state.ErrorMessage(err, fallback))
	}
	return err
}
