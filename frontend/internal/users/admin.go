// Package users is the administrators' view of accounts.
package users

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"

	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/forumstartup/forum/shared/metrics"
)

const (
	MsgLoadFailed    = "Failed to load users"
	MsgLoadOneFailed = "Failed to load user"
	MsgBlockFailed   = "Failed to block user"
	MsgUnblockFailed = "Failed to unblock user"
	MsgPromoteFailed = "Failed to promote user"
	MsgDeleteFailed  = "Failed to delete user"
)

// ErrBusy is returned while another change to the same user is running.
var ErrBusy = stderrors.New("user change already in progress")

type Client interface {
	Users(ctx context.Context, filter api.UserFilter) (*domain.Page[domain.AdminUser], error)
	User(ctx context.Context, id domain.UserId) (*domain.AdminUser, error)
	BlockUser(ctx context.Context, id domain.UserId) error
	UnblockUser(ctx context.Context, id domain.UserId) error
	PromoteUser(ctx context.Context, id domain.UserId) error
	DeleteUser(ctx context.Context, id domain.UserId) error
}

// Admin lists accounts and applies moderation to them. Listing goes
// through the tracker; changes to single users run under a per-user guard
// so that blocking one user never cancels a change to another.
type Admin struct {
	Users      state.Cell[[]domain.AdminUser]
	Selected   state.Cell[*domain.AdminUser]
	TotalPages state.Cell[int]
	*state.Tracker

	client Client
	busy   state.KeyedGuard[domain.UserId]
	log    *slog.Logger
}

func NewAdmin(client Client) *Admin {
	return &Admin{
		Tracker: state.NewTracker("users"),
		client:  client,
		log:     logger.For("users"),
	}
}

// Fetch loads one page of accounts matching filter.
func (a *Admin) Fetch(ctx context.Context, filter api.UserFilter) bool {
	_, ok := state.Run(ctx, a.Tracker, state.Action[*domain.Page[domain.AdminUser]]{
		Name: "users_fetch",
		Call: func(ctx context.Context) (*domain.Page[domain.AdminUser], error) {
			return a.client.Users(ctx, filter)
		},
		Apply: func(page *domain.Page[domain.AdminUser]) {
			a.Users.Set(page.Content)
			a.TotalPages.Set(page.TotalPages)
		},
		Fallback: MsgLoadFailed,
	})
	return ok
}

func (a *Admin) FetchByID(ctx context.Context, id domain.UserId) bool {
	_, ok := state.Run(ctx, a.Tracker, state.Action[*domain.AdminUser]{
		Name:     "users_fetch_one",
		Call:     func(ctx context.Context) (*domain.AdminUser, error) { return a.client.User(ctx, id) },
		Apply:    a.Selected.Set,
		Fallback: MsgLoadOneFailed,
	})
	return ok
}

// IsBlocking reports whether a change to id is in flight.
func (a *Admin) IsBlocking(id domain.UserId) bool {
	return a.busy.Held(id)
}

// Block and the other moderation calls record the failure message and
// also return the error so the caller can react.
func (a *Admin) Block(ctx context.Context, id domain.UserId) error {
	return a.moderate(ctx, id, "users_block", MsgBlockFailed, a.client.BlockUser, func(u *domain.AdminUser) {
		u.IsBlocked = true
	})
}

func (a *Admin) Unblock(ctx context.Context, id domain.UserId) error {
	return a.moderate(ctx, id, "users_unblock", MsgUnblockFailed, a.client.UnblockUser, func(u *domain.AdminUser) {
		u.IsBlocked = false
	})
}

// Promote grants the administrator role.
func (a *Admin) Promote(ctx context.Context, id domain.UserId) error {
	return a.moderate(ctx, id, "users_promote", MsgPromoteFailed, a.client.PromoteUser, func(u *domain.AdminUser) {
		if !u.HasRole(domain.RoleAdmin) {
			u.Roles = append(slices.Clone(u.Roles), domain.Role{Name: domain.RoleAdmin})
		}
	})
}

func (a *Admin) Delete(ctx context.Context, id domain.UserId) error {
	err := a.moderate(ctx, id, "users_delete", MsgDeleteFailed, a.client.DeleteUser, nil)
	if err != nil {
		return err
	}
	a.Users.Update(func(list []domain.AdminUser) []domain.AdminUser {
		return slices.DeleteFunc(slices.Clone(list), func(u domain.AdminUser) bool { return u.Id == id })
	})
	a.Selected.Update(func(u *domain.AdminUser) *domain.AdminUser {
		if u != nil && u.Id == id {
			return nil
		}
		return u
	})
	return nil
}

func (a *Admin) moderate(ctx context.Context, id domain.UserId, name, fallback string,
	call func(context.Context, domain.UserId) error, change func(*domain.AdminUser)) error {
	if !a.busy.TryAcquire(id) {
		return ErrBusy
	}
	defer a.busy.Release(id)

	a.ClearErrors()
	if err := call(ctx, id); err != nil {
		a.Fail(state.ErrorMessage(err, fallback))
		a.log.Warn("action failed", "action", name, "user_id", id, "error", err)
		metrics.ObserveAction(name, metrics.OutcomeFailed)
		return err
	}
	if change != nil {
		a.apply(id, change)
	}
	metrics.ObserveAction(name, metrics.OutcomeOK)
	return nil
}

// apply edits the held copies of user id.
func (a *Admin) apply(id domain.UserId, change func(*domain.AdminUser)) {
	a.Users.Update(func(list []domain.AdminUser) []domain.AdminUser {
		i := slices.IndexFunc(list, func(u domain.AdminUser) bool { return u.Id == id })
		if i < 0 {
			return list
		}
		out := slices.Clone(list)
		change(&out[i])
		return out
	})
	a.Selected.Update(func(u *domain.AdminUser) *domain.AdminUser {
		if u == nil || u.Id != id {
			return u
		}
		cp := *u
		change(&cp)
		return &cp
	})
}
