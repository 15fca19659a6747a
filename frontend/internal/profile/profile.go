// Package profile is the signed-in user's own account page.
package profile

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forumstartup/forum/frontend/internal/notify"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/validation"
)

const (
	MsgLoadFailed   = "Failed to load profile"
	MsgUpdateFailed = "Failed to update profile"
	MsgDeleteFailed = "Failed to delete account"
	MsgUpdated      = "Profile updated successfully!"
	MsgNotAnImage   = "File must be a GIF, JPEG, PNG or WebP image"

	deletePrompt = "Delete your account permanently? This cannot be undone."
)

// DefaultAvatarMaxBytes is the avatar size limit when none is configured.
const DefaultAvatarMaxBytes = 2 << 20

var errSuperseded = stderrors.New("profile update superseded by a newer one")

type Client interface {
	Profile(ctx context.Context) (*domain.Profile, error)
	UpdateSelf(ctx context.Context, req api.UserSelfUpdateRequest) (*domain.CurrentUser, error)
	DeleteSelf(ctx context.Context) error
}

// Session is the process-wide current user, kept in step with the profile.
type Session interface {
	UpdateUser(fn func(u *domain.CurrentUser))
}

// Logout ends the session after the account is gone.
type Logout func(ctx context.Context)

// Updates names the fields to change. Nil fields keep the loaded value;
// an empty Password keeps the current password.
type Updates struct {
	FirstName       *string
	LastName        *string
	Email           *string
	ProfilePhotoUrl *string
	Password        string
}

type Profile struct {
	Data          state.Cell[domain.Profile]
	AvatarPreview state.Cell[string]
	*state.Tracker

	client         Client
	session        Session
	logout         Logout
	notifier       notify.Notifier
	avatarMaxBytes int64
}

func New(client Client, session Session, logout Logout, notifier notify.Notifier, avatarMaxBytes int64) *Profile {
	if avatarMaxBytes <= 0 {
		avatarMaxBytes = DefaultAvatarMaxBytes
	}
	return &Profile{
		Tracker:        state.NewTracker("profile"),
		client:         client,
		session:        session,
		logout:         logout,
		notifier:       notifier,
		avatarMaxBytes: avatarMaxBytes,
	}
}

// Load fetches the profile and copies its fields onto the current user.
func (p *Profile) Load(ctx context.Context) bool {
	_, ok := state.Run(ctx, p.Tracker, state.Action[*domain.Profile]{
		Name: "profile_load",
		Call: p.client.Profile,
		Apply: func(data *domain.Profile) {
			p.Data.Set(*data)
			p.AvatarPreview.Set(avatarOf(data.ProfilePhotoUrl, FallbackAvatar(string(data.Username))))
			p.session.UpdateUser(func(u *domain.CurrentUser) {
				u.FirstName, u.LastName, u.Email = data.FirstName, data.LastName, data.Email
				u.ProfilePhotoUrl = data.ProfilePhotoUrl
			})
		},
		Fallback: MsgLoadFailed,
	})
	return ok
}

// Update saves the merged profile. The failure is recorded for the view
// and also returned.
func (p *Profile) Update(ctx context.Context, updates Updates) error {
	held := p.Data.Get()
	req := api.UserSelfUpdateRequest{
		FirstName:       pick(updates.FirstName, held.FirstName),
		LastName:        pick(updates.LastName, held.LastName),
		Email:           pick(updates.Email, string(held.Email)),
		ProfilePhotoUrl: held.ProfilePhotoUrl,
		Password:        updates.Password,
	}
	if updates.ProfilePhotoUrl != nil {
		req.ProfilePhotoUrl = updates.ProfilePhotoUrl
	}

	var failure error
	_, ok := state.Run(ctx, p.Tracker, state.Action[*domain.CurrentUser]{
		Name: "profile_update",
		Validate: func() validation.Errors {
			errs := validation.ProfileRules.Validate(validation.Values{
				validation.FieldFirstName: req.FirstName,
				validation.FieldLastName:  req.LastName,
				validation.FieldEmail:     req.Email,
				validation.FieldPassword:  req.Password,
			})
			if !errs.Valid() {
				failure = errs
			}
			return errs
		},
		Call: func(ctx context.Context) (*domain.CurrentUser, error) {
			u, err := p.client.UpdateSelf(ctx, req)
			failure = err
			return u, err
		},
		Apply: func(saved *domain.CurrentUser) {
			p.applySaved(req, saved)
			p.notifier.Success(MsgUpdated)
		},
		Fallback:              MsgUpdateFailed,
		FieldErrorsFromServer: true,
	})
	if ok {
		return nil
	}
	if failure == nil {
		return errSuperseded
	}
	return failure
}

// applySaved stores what was sent. The backend answers with id, username
// and roles only.
func (p *Profile) applySaved(req api.UserSelfUpdateRequest, saved *domain.CurrentUser) {
	p.Data.Update(func(d domain.Profile) domain.Profile {
		d.FirstName, d.LastName, d.Email = req.FirstName, req.LastName, domain.Email(req.Email)
		d.ProfilePhotoUrl = req.ProfilePhotoUrl
		if saved != nil && saved.Username != "" {
			d.Username = saved.Username
		}
		return d
	})
	if req.ProfilePhotoUrl != nil && *req.ProfilePhotoUrl != "" {
		p.AvatarPreview.Set(*req.ProfilePhotoUrl)
	}
	p.session.UpdateUser(func(u *domain.CurrentUser) {
		u.FirstName, u.LastName, u.Email = req.FirstName, req.LastName, domain.Email(req.Email)
		u.ProfilePhotoUrl = req.ProfilePhotoUrl
		if saved == nil {
			return
		}
		if saved.Id != 0 {
			u.Id = saved.Id
		}
		if len(saved.Roles) > 0 {
			u.Roles = saved.Roles
		}
	})
}

// ChangeAvatar checks an uploaded image, previews it and saves it as the
// profile photo.
func (p *Profile) ChangeAvatar(ctx context.Context, data []byte) error {
	if int64(len(data)) > p.avatarMaxBytes {
		msg := fmt.Sprintf("Image must be under %gMB", validation.FormatSizeMB(p.avatarMaxBytes))
		p.Fail(msg)
		p.notifier.Error(msg)
		return validation.ErrPayloadTooLarge
	}
	info, err := validation.ValidateImage(data, p.avatarMaxBytes)
	if err != nil {
		p.Fail(MsgNotAnImage)
		p.notifier.Error(MsgNotAnImage)
		return err
	}

	dataURL := "data:" + info.MimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	p.AvatarPreview.Set(dataURL)
	return p.Update(ctx, Updates{ProfilePhotoUrl: &dataURL})
}

// DeleteAccount removes the account after confirmation and signs out.
func (p *Profile) DeleteAccount(ctx context.Context, confirm notify.Confirm) bool {
	if confirm != nil && !confirm(deletePrompt) {
		return false
	}
	_, ok := state.Run(ctx, p.Tracker, state.Action[struct{}]{
		Name: "profile_delete",
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.client.DeleteSelf(ctx)
		},
		Apply: func(struct{}) {
			if p.logout != nil {
				p.logout(context.WithoutCancel(ctx))
			}
		},
		Fallback: MsgDeleteFailed,
	})
	return ok
}

// FallbackAvatar is a generated avatar showing the username's initial.
func FallbackAvatar(username string) string {
	initial := "U"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(username)); r != utf8.RuneError {
		initial = string(unicode.ToUpper(r))
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(initial) + "&background=6366f1&color=fff&bold=true"
}

func avatarOf(photo *string, fallback string) string {
	if photo != nil && *photo != "" {
		return *photo
	}
	return fallback
}

func pick(v *string, held string) string {
	if v != nil {
		return *v
	}
	return held
}
