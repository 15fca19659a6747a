package auth

import (
	"context"

	"github.com/forumstartup/forum/frontend/internal/router"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/validation"
)

const MsgRegistrationFailed = "Registration failed. Please try again."

type Registrar interface {
	Register(ctx context.Context, req api.RegisterRequest) error
}

// RegisterForm creates an account and sends the user to the login page.
type RegisterForm struct {
	Form state.Cell[api.RegisterRequest]
	*state.Tracker

	client Registrar
	nav    router.Navigator
}

func NewRegisterForm(client Registrar, nav router.Navigator) *RegisterForm {
	return &RegisterForm{
		Tracker: state.NewTracker("register"),
		client:  client,
		nav:     nav,
	}
}

func registerValues(f api.RegisterRequest) validation.Values {
	return validation.Values{
		validation.FieldFirstName: f.FirstName,
		validation.FieldLastName:  f.LastName,
		validation.FieldEmail:     f.Email,
		validation.FieldUsername:  f.Username,
		validation.FieldPassword:  f.Password,
	}
}

// Validate checks every field and publishes the result.
func (f *RegisterForm) Validate() bool {
	errs := validation.RegisterRules.Validate(registerValues(f.Form.Get()))
	f.FieldErrors.Set(errs)
	return errs.Valid()
}

func (f *RegisterForm) Register(ctx context.Context) bool {
	form := f.Form.Get()
	_, ok := state.Run(ctx, f.Tracker, state.Action[struct{}]{
		Name: "register",
		Validate: func() validation.Errors {
			return validation.RegisterRules.Validate(registerValues(form))
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.client.Register(ctx, form)
		},
		Apply: func(struct{}) {
			f.nav.Navigate(router.LoginPath)
		},
		Fallback:              MsgRegistrationFailed,
		FieldErrorsFromServer: true,
	})
	return ok
}
