// Package setup builds the client layer from configuration.
package setup

import (
	"context"
	"fmt"

	"github.com/forumstartup/forum/frontend/internal/apiclient"
	"github.com/forumstartup/forum/frontend/internal/auth"
	"github.com/forumstartup/forum/frontend/internal/comments"
	"github.com/forumstartup/forum/frontend/internal/likes"
	"github.com/forumstartup/forum/frontend/internal/markdown"
	"github.com/forumstartup/forum/frontend/internal/notify"
	"github.com/forumstartup/forum/frontend/internal/posts"
	"github.com/forumstartup/forum/frontend/internal/postview"
	"github.com/forumstartup/forum/frontend/internal/profile"
	"github.com/forumstartup/forum/frontend/internal/router"
	"github.com/forumstartup/forum/frontend/internal/session"
	"github.com/forumstartup/forum/frontend/internal/users"
	"github.com/forumstartup/forum/shared/config"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/logger"
)

type Dependencies struct {
	Public   config.Public
	API      *apiclient.APIClient
	Session  *session.Session
	Router   *router.Router
	Notifier notify.Notifier
	Markdown *markdown.Renderer

	Auth     *auth.Auth
	Register *auth.RegisterForm
	Feed     *posts.Feed
	Post     *posts.Post
	Composer *posts.Composer
	Thread   *comments.Thread
	Editor   *comments.Editor
	Admin    *users.Admin
	Profile  *profile.Profile

	PostLikes    *likes.Toggler[domain.PostId]
	CommentLikes *likes.Toggler[domain.CommentId]

	CancelFunc context.CancelFunc
	bg         context.Context
}

type Option func(*options)

type options struct {
	notifier    notify.Notifier
	apiOpts     []apiclient.Option
	skipLogInit bool
}

// WithNotifier replaces the log-backed notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithClientOptions passes options through to the API client.
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(o *options) { o.apiOpts = append(o.apiOpts, opts...) }
}

// KeepLogger leaves the package logger as it is instead of configuring it.
func KeepLogger() Option {
	return func(o *options) { o.skipLogInit = true }
}

func SetupDependencies(cfg *config.Config, opts ...Option) (*Dependencies, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	pub := cfg.Public
	if !o.skipLogInit {
		logger.Initialize(pub.LogLevel, pub.LogJSON)
	}
	if o.notifier == nil {
		o.notifier = notify.NewLog()
	}

	apiOpts := append([]apiclient.Option{apiclient.WithTimeout(pub.RequestTimeout)}, o.apiOpts...)
	api, err := apiclient.New(pub.BaseURL, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}

	bg, cancel := context.WithCancel(context.Background())

	sess := session.New(api)
	nav := router.New(sess, router.Routes...)

	// A session rejected mid-use signs the user out and re-runs the guard
	// on the page they are on.
	api.OnUnauthorized(func() {
		sess.Expire()
		if _, err := nav.Reload(); err != nil {
			logger.For("setup").Debug("reload after expiry", "error", err)
		}
	})

	postLikes := likes.NewToggler[domain.PostId]("post", pub.LikeReconcileDelay)
	commentLikes := likes.NewToggler[domain.CommentId]("comment", pub.LikeReconcileDelay)

	a := auth.New(api, sess, nav)

	return &Dependencies{
		Public:   pub,
		API:      api,
		Session:  sess,
		Router:   nav,
		Notifier: o.notifier,
		Markdown: markdown.New(),

		Auth:     a,
		Register: auth.NewRegisterForm(api, nav),
		Feed:     posts.NewFeed(api, sess, postLikes, pub.RecentLimit, pub.PageSize),
		Post:     posts.NewPost(api, sess, postLikes),
		Composer: posts.NewComposer(api, nav),
		Thread:   comments.NewThread(api, sess, commentLikes, pub.PageSize),
		Editor:   comments.NewEditor(api, sess),
		Admin:    users.NewAdmin(api),
		Profile:  profile.New(api, sess, a.Logout, o.notifier, pub.AvatarMaxBytes),

		PostLikes:    postLikes,
		CommentLikes: commentLikes,

		CancelFunc: cancel,
		bg:         bg,
	}, nil
}

// Boot resolves the current user, starts the periodic session refresh and
// lands on the home page.
func (d *Dependencies) Boot(ctx context.Context) session.Status {
	status := d.Session.Boot(ctx)
	if d.Public.SessionRefreshInterval > 0 {
		d.Session.StartBackgroundRefresh(d.bg, d.Public.SessionRefreshInterval)
	}
	if _, err := d.Router.Push(router.HomePath); err != nil {
		logger.For("setup").Error("initial navigation failed", "error", err)
	}
	return status
}

// PostView builds the page of one post on the shared post and comment state.
func (d *Dependencies) PostView() *postview.View {
	return postview.New(d.Post, d.Thread, d.Editor, d.Markdown)
}

// CommentItem binds one comment of the open thread for editing and deletion.
func (d *Dependencies) CommentItem(c domain.Comment) *comments.Item {
	return comments.NewItem(c, c.PostId, d.API, d.Session, d.Thread)
}

// Close stops background work and waits for pending like reconciliations.
func (d *Dependencies) Close() {
	d.CancelFunc()
	d.PostLikes.Wait()
	d.CommentLikes.Wait()
}
