package auth

import (
	"context"
	"log/slog"

	"github.com/forumstartup/forum/frontend/internal/router"
	"github.com/forumstartup/forum/frontend/internal/session"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/forumstartup/forum/shared/validation"
)

const (
	MsgBlocked            = "Your account has been blocked due to violation of our terms of use."
	MsgInvalidCredentials = "Invalid credentials."

	blockedDetails = "User is blocked"
)

type Client interface {
	Login(ctx context.Context, req api.LoginRequest) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.CurrentUser, error)
	ClearSession()
}

// Auth signs the user in and out.
type Auth struct {
	Form state.Cell[api.LoginRequest]
	*state.Tracker

	client  Client
	session *session.Session
	nav     router.Navigator
	log     *slog.Logger
}

func New(client Client, sess *session.Session, nav router.Navigator) *Auth {
	return &Auth{
		Tracker: state.NewTracker("auth"),
		client:  client,
		session: sess,
		nav:     nav,
		log:     logger.For("auth"),
	}
}

// Login submits the form. On success the current user is loaded and the
// user lands on the home page.
func (a *Auth) Login(ctx context.Context) bool {
	form := a.Form.Get()
	_, ok := state.Run(ctx, a.Tracker, state.Action[*domain.CurrentUser]{
		Name: "login",
		Validate: func() validation.Errors {
			return validation.Struct(form, validation.LoginMessages)
		},
		Call: func(ctx context.Context) (*domain.CurrentUser, error) {
			if err := a.client.Login(ctx, form); err != nil {
				return nil, err
			}
			return a.FetchCurrentUser(ctx), nil
		},
		Apply: func(u *domain.CurrentUser) {
			a.session.SetUser(u)
			a.Form.Set(api.LoginRequest{})
			a.nav.Navigate(router.HomePath)
		},
		Message: loginFailure,
	})
	return ok
}

func loginFailure(err error) string {
	if e, ok := errors.AsStatus(err); ok && e.Details == blockedDetails {
		return MsgBlocked
	}
	return MsgInvalidCredentials
}

// Logout ends the session. The local session is cleared even when the
// backend call fails.
func (a *Auth) Logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn("logout endpoint failed, clearing client state anyway", "error", err)
	}
	a.client.ClearSession()
	a.session.Clear()
	a.nav.Navigate(router.HomePath)
}

// FetchCurrentUser returns the signed-in user, or nil when there is none
// or the backend cannot tell.
func (a *Auth) FetchCurrentUser(ctx context.Context) *domain.CurrentUser {
	u, err := a.client.Me(ctx)
	if err != nil {
		a.log.Debug("current user unavailable", "error", err)
		return nil
	}
	return u
}

func (a *Auth) IsLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *Auth) HasRole(roles ...domain.RoleName) bool {
	return a.session.HasRole(roles...)
}
