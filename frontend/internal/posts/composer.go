package posts

import (
	"context"
	"net/http"
	"strings"

	"github.com/forumstartup/forum/frontend/internal/router"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/validation"
)

const (
	MsgMustLogInToPost = "You must be logged in to post"
	MsgCreateFailed    = "Failed to create post. Please try again."
)

// Composer is the new-post form.
type Composer struct {
	Form state.Cell[api.PostRequest]
	*state.Tracker

	client Client
	nav    router.Navigator
}

func NewComposer(client Client, nav router.Navigator) *Composer {
	return &Composer{
		Tracker: state.NewTracker("composer"),
		client:  client,
		nav:     nav,
	}
}

func (c *Composer) Validate() bool {
	form := c.Form.Get()
	errs := validation.PostRules.Validate(postValues(form.Title, form.Content))
	c.FieldErrors.Set(errs)
	return errs.Valid()
}

// Create publishes the form and returns to the home page.
func (c *Composer) Create(ctx context.Context) (*domain.Post, bool) {
	form := c.Form.Get()
	req := api.PostRequest{Title: strings.TrimSpace(form.Title), Content: strings.TrimSpace(form.Content)}
	return state.Run(ctx, c.Tracker, state.Action[*domain.Post]{
		Name: "post_create",
		Validate: func() validation.Errors {
			return validation.PostRules.Validate(postValues(form.Title, form.Content))
		},
		Call: func(ctx context.Context) (*domain.Post, error) { return c.client.CreatePost(ctx, req) },
		Apply: func(*domain.Post) {
			c.Form.Set(api.PostRequest{})
			c.nav.Navigate(router.HomePath)
		},
		Message:               createFailure,
		Fallback:              MsgCreateFailed,
		FieldErrorsFromServer: true,
	})
}

func createFailure(err error) string {
	e, ok := errors.AsStatus(err)
	if !ok {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == http.StatusUnauthorized {
		return MsgMustLogInToPost
	}
	return ""
}
