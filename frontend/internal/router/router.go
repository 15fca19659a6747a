package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/go-chi/chi/v5"
)

var ErrNoRoute = errors.New("no route matches path")

// Location is where navigation ended up after the guard ran.
type Location struct {
	Name   Name
	Path   string
	Params map[string]string
	Query  url.Values
}

// Param returns the named path parameter, e.g. "postId".
func (l Location) Param(key string) string {
	return l.Params[key]
}

// Auth is the session view the guard needs.
type Auth interface {
	IsAuthenticated() bool
	HasRole(roles ...domain.RoleName) bool
}

// Navigator is what features use to move between screens.
type Navigator interface {
	Navigate(path string)
}

type Router struct {
	Current state.Cell[Location]

	mux    *chi.Mux
	routes map[string]Route
	auth   Auth
	log    *slog.Logger
}

// New builds a router over routes, or over Routes when none are given.
func New(auth Auth, routes ...Route) *Router {
	if len(routes) == 0 {
		routes = Routes
	}
	r := &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route, len(routes)),
		auth:   auth,
		log:    logger.For("router"),
	}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, route := range routes {
		r.mux.Get(route.Pattern, noop)
		r.routes[route.Pattern] = route
	}
	return r
}

// Match finds the route for path without running the guard.
func (r *Router) Match(path string) (Route, Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Route{}, Location{}, fmt.Errorf("%w: %q: %w", ErrNoRoute, path, err)
	}
	p := u.Path
	if p == "" {
		p = HomePath
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, p) {
		return Route{}, Location{}, fmt.Errorf("%w: %q", ErrNoRoute, path)
	}
	route, ok := r.routes[rctx.RoutePattern()]
	if !ok {
		return Route{}, Location{}, fmt.Errorf("%w: %q", ErrNoRoute, path)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return route, Location{Name: route.Name, Path: p, Params: params, Query: u.Query()}, nil
}

// Resolve runs the guard for path: an unauthenticated visit to a
// protected route ends at the login page, an authenticated user lacking
// the route's roles ends at home.
func (r *Router) Resolve(path string) (Location, error) {
	route, loc, err := r.Match(path)
	if err != nil {
		return Location{}, err
	}

	authenticated := r.auth.IsAuthenticated()
	switch {
	case route.RequiresAuth && !authenticated:
		return r.redirect(LoginPath)
	case len(route.Roles) > 0 && authenticated && !r.auth.HasRole(route.Roles...):
		return r.redirect(HomePath)
	}
	return loc, nil
}

func (r *Router) redirect(path string) (Location, error) {
	_, loc, err := r.Match(path)
	return loc, err
}

// Push navigates to path and stores where the guard let it land.
func (r *Router) Push(path string) (Location, error) {
	loc, err := r.Resolve(path)
	if err != nil {
		return Location{}, err
	}
	if loc.Path != path {
		r.log.Debug("navigation redirected", "requested", path, "path", loc.Path)
	}
	r.Current.Set(loc)
	return loc, nil
}

// Navigate is Push for callers that have nowhere to report a bad path.
func (r *Router) Navigate(path string) {
	if _, err := r.Push(path); err != nil {
		r.log.Error("navigation failed", "path", path, "error", err)
	}
}

// Reload re-runs the guard on the current location, e.g. after the
// session changed.
func (r *Router) Reload() (Location, error) {
	path := r.Current.Get().Path
	if path == "" {
		path = HomePath
	}
	return r.Push(path)
}
