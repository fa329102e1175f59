package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrNoRoute = errors.New("no route")

// Location is a parsed navigation target.
type Location struct {
	Path     string
	Query    url.Values
	Fragment string
}

// ParseLocation accepts "/path?query#fragment". A relative path is taken
// from the root and a trailing slash is dropped, so "/user/orders/" is
// "/user/orders".
func ParseLocation(target string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", target, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return Location{}, fmt.Errorf("location %q: must be a path", target)
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
		p = trimmed
	} else {
		p = "/"
	}
	return Location{Path: p, Query: u.Query(), Fragment: u.Fragment}, nil
}

// FullPath renders the location the way it is carried in ?redirect=.
func (l Location) FullPath() string {
	s := l.Path
	if len(l.Query) > 0 {
		s += "?" + l.Query.Encode()
	}
	if l.Fragment != "" {
		s += "#" + l.Fragment
	}
	return s
}

// Match is a resolved location.
type Match struct {
	Route    Route
	Location Location
	Params   map[string]string
}

// Table resolves paths to flattened routes.
type Table struct {
	mux    *chi.Mux
	routes map[string]Route
	list   []Route
}

var noop = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// NewTable flattens routes and registers every pattern.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{mux: chi.NewMux(), routes: map[string]Route{}}
	for _, r := range Flatten(routes) {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route %s: pattern %q must start with /", r.Name, r.Pattern)
		}
		if _, dup := t.routes[r.Pattern]; dup {
			return nil, fmt.Errorf("route %s: duplicate pattern %q", r.Name, r.Pattern)
		}
		t.routes[r.Pattern] = r
		t.list = append(t.list, r)
		t.mux.Get(r.Pattern, noop)
	}
	return t, nil
}

// Resolve finds the route for loc.Path.
func (t *Table) Resolve(loc Location) (Match, error) {
	rctx := chi.NewRouteContext()
	pattern := t.mux.Find(rctx, http.MethodGet, loc.Path)
	r, ok := t.routes[pattern]
	if !ok {
		return Match{}, fmt.Errorf("%w for %s", ErrNoRoute, loc.Path)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return Match{Route: r, Location: loc, Params: params}, nil
}

// Routes returns the flattened routes in registration order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.list...)
}
