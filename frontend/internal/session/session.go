package session

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/jwt"
	"github.com/forumstartup/forum/shared/logger"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	Uninitialized Status = iota
	Loading
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Backend is what the session needs from the API client.
type Backend interface {
	Me(ctx context.Context) (*domain.CurrentUser, error)
	SessionToken() string
}

// Session holds the signed-in user shared by every feature.
type Session struct {
	User  state.Cell[*domain.CurrentUser]
	State state.Cell[Status]

	backend Backend
	group   singleflight.Group
	log     *slog.Logger
	now     func() time.Time
}

func New(backend Backend) *Session {
	return &Session{
		backend: backend,
		log:     logger.For("session"),
		now:     time.Now,
	}
}

// Boot resolves the session once at startup: Authenticated when the
// backend recognizes the session cookie, Anonymous otherwise.
func (s *Session) Boot(ctx context.Context) Status {
	s.State.Set(Loading)
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Info("no active session", "error", err)
		// A rejected session was already cleared by Refresh.
		if s.Status() == Loading {
			s.Clear()
		}
	}
	return s.Status()
}

// Refresh re-reads the current user. Concurrent callers share a single
// request. A rejected session clears the user; a transport failure
// leaves the session as it was.
func (s *Session) Refresh(ctx context.Context) (*domain.CurrentUser, error) {
	if token := s.backend.SessionToken(); token != "" {
		if claims, err := jwt.Inspect(token); err == nil && claims.Expired(s.now()) {
			s.Clear()
			return nil, errors.ErrNotAuthenticated
		}
	}

	v, err, _ := s.group.Do("me", func() (any, error) {
		return s.backend.Me(ctx)
	})
	if err != nil {
		if errors.IsUnauthorized(err) {
			s.Clear()
		}
		return nil, err
	}
	user := v.(*domain.CurrentUser)
	s.SetUser(s.merge(user))
	return s.CurrentUser(), nil
}

// merge keeps profile fields that /me does not report.
func (s *Session) merge(fresh *domain.CurrentUser) *domain.CurrentUser {
	cur := s.CurrentUser()
	if cur == nil || cur.Username != fresh.Username {
		return fresh
	}
	merged := *fresh
	if merged.Id == 0 {
		merged.Id = cur.Id
	}
	if merged.FirstName == "" {
		merged.FirstName = cur.FirstName
	}
	if merged.LastName == "" {
		merged.LastName = cur.LastName
	}
	if merged.Email == "" {
		merged.Email = cur.Email
	}
	if merged.ProfilePhotoUrl == nil {
		merged.ProfilePhotoUrl = cur.ProfilePhotoUrl
	}
	return &merged
}

// SetUser stores u; nil means signed out. A user reported without an id
// takes the id carried by the session token, when there is one.
func (s *Session) SetUser(u *domain.CurrentUser) {
	if u != nil && u.Id == 0 {
		if id := s.tokenUserId(); id != 0 {
			cp := *u
			cp.Id = id
			u = &cp
		}
	}
	s.User.Set(u)
	if u == nil {
		s.State.Set(Anonymous)
		return
	}
	s.State.Set(Authenticated)
}

func (s *Session) tokenUserId() domain.UserId {
	token := s.backend.SessionToken()
	if token == "" {
		return 0
	}
	claims, err := jwt.Inspect(token)
	if err != nil && !stderrors.Is(err, jwt.ErrNoExpiry) {
		return 0
	}
	return claims.UserId
}

func (s *Session) Clear() {
	s.SetUser(nil)
}

// Expire is called when the backend rejects the session mid-use.
func (s *Session) Expire() {
	if s.Status() == Authenticated {
		s.log.Info("session expired")
	}
	s.Clear()
}

// UpdateUser applies fn to a copy of the current user and stores the
// result. It does nothing when signed out.
func (s *Session) UpdateUser(fn func(u *domain.CurrentUser)) {
	s.User.Update(func(u *domain.CurrentUser) *domain.CurrentUser {
		if u == nil {
			return nil
		}
		cp := *u
		fn(&cp)
		return &cp
	})
}

func (s *Session) CurrentUser() *domain.CurrentUser {
	return s.User.Get()
}

func (s *Session) Status() Status {
	return s.State.Get()
}

func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// HasRole reports whether the current user holds any of roles.
func (s *Session) HasRole(roles ...domain.RoleName) bool {
	return s.CurrentUser().HasRole(roles...)
}

// ExpiresAt reads the expiry of the session cookie. The token is not
// verified; the backend remains the authority.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.backend.SessionToken()
	if token == "" {
		return time.Time{}, false
	}
	claims, err := jwt.Inspect(token)
	if err != nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

// StartBackgroundRefresh re-reads the current user every interval until
// ctx is done, so a block or expiry is noticed without user action.
func (s *Session) StartBackgroundRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	s.log.Info("started session background refresh", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !s.IsAuthenticated() {
					continue
				}
				if _, err := s.Refresh(ctx); err != nil {
					s.log.Error("session refresh failed", "error", err)
				}
			case <-ctx.Done():
				s.log.Info("session refresh shutting down")
				return
			}
		}
	}()
}
