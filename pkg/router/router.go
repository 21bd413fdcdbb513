// Package router maps URLs to typed routes and back.
//
// A Router holds an ordered list of definitions, each pairing a glob pattern
// with a constructor of route values. Matching tries the definitions in
// order and the first match wins; a URL that matches nothing yields the
// not-found route built from the attempted path, so matching never fails.
package router

import (
	"fmt"
	"net/url"
	"strings"

	"loam.dev/pkg/glob"
	"loam.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[router] ")

// Match is passed to a route constructor.
type Match struct {
	// The matched path, unescaped.
	Path string
	// Parameters captured by :name segments.
	Params map[string]string
	// Remainder captured by a trailing *, still escaped.
	Rest  string
	Query url.Values
}

// Def defines a route.
type Def[R any] struct {
	Pattern string
	Make    func(Match) R
}

// Config configures a Router.
type Config[R any] struct {
	// NotFound builds the route for a URL that matches no definition. It
	// receives the attempted path.
	NotFound func(path string) R
	// ToURL is the inverse of matching. For every route r a definition can
	// produce, matching ToURL(r) must produce a route equal to r.
	ToURL func(R) string
}

// Router maps URLs to routes of type R.
type Router[R any] struct {
	cfg  Config[R]
	defs []compiledDef[R]
}

type compiledDef[R any] struct {
	pattern glob.Pattern
	make    func(Match) R
}

// New creates a Router. It returns an error if a pattern is malformed or a
// required function is missing.
func New[R any](cfg Config[R], defs ...Def[R]) (*Router[R], error) {
	if cfg.NotFound == nil || cfg.ToURL == nil {
		return nil, fmt.Errorf("router config needs both NotFound and ToURL")
	}
	r := &Router[R]{cfg: cfg}
	for _, def := range defs {
		if def.Make == nil {
			return nil, fmt.Errorf("route %q has no constructor", def.Pattern)
		}
		p, err := glob.Parse(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bad route pattern: %w", err)
		}
		r.defs = append(r.defs, compiledDef[R]{p, def.Make})
	}
	return r, nil
}

// MustNew is like New, but panics on errors.
func MustNew[R any](cfg Config[R], defs ...Def[R]) *Router[R] {
	r, err := New(cfg, defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Match returns the route for a URL, or the not-found route.
func (r *Router[R]) Match(rawURL string) R {
	route, _ := r.Lookup(rawURL)
	return route
}

// Lookup is like Match, but also reports whether a definition matched.
func (r *Router[R]) Lookup(rawURL string) (R, bool) {
	// A leading "//" would be parsed as an authority.
	if strings.HasPrefix(rawURL, "//") {
		rawURL = "/" + strings.TrimLeft(rawURL, "/")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		logger.Printf("unparsable URL %q: %v", rawURL, err)
		return r.cfg.NotFound(rawURL), false
	}
	for _, def := range r.defs {
		caps, ok := def.pattern.Match(u.EscapedPath())
		if ok {
			return def.make(Match{u.Path, caps.Params, caps.Rest, u.Query()}), true
		}
	}
	return r.cfg.NotFound(u.Path), false
}

// NotFound returns the not-found route for a path.
func (r *Router[R]) NotFound(path string) R { return r.cfg.NotFound(path) }

// URL returns the URL of a route.
func (r *Router[R]) URL(route R) string { return r.cfg.ToURL(route) }

// Canonical returns the URL of the route a URL matches. Two URLs leading to
// equal routes have the same canonical form.
func (r *Router[R]) Canonical(rawURL string) string {
	return r.URL(r.Match(rawURL))
}

// Build expands a pattern with parameters and appends a query string. The
// remainder for a trailing * is taken from params["*"]. Build is a helper for
// writing Config.ToURL.
func Build(pattern string, params map[string]string, query url.Values) (string, error) {
	p, err := glob.Parse(pattern)
	if err != nil {
		return "", err
	}
	path, err := p.Expand(params, params["*"])
	if err != nil {
		return "", err
	}
	if q := query.Encode(); q != "" {
		path += "?" + q
	}
	return path, nil
}

// MustBuild is like Build, but panics on errors. Use it with patterns and
// parameters that are known to be valid.
func MustBuild(pattern string, params map[string]string, query url.Values) string {
	s, err := Build(pattern, params, query)
	if err != nil {
		panic(err)
	}
	return s
}

// Path joins a pattern's literal prefix with the given segments. It is the
// simple form of Build for patterns whose parameters appear in order:
//
//	Path("/hello/:name", "Ada") == "/hello/Ada"
func Path(pattern string, args ...string) string {
	p := glob.MustParse(pattern)
	names := p.Params()
	if len(args) < len(names) {
		panic(fmt.Sprintf("pattern %s needs %d arguments, got %d", pattern, len(names), len(args)))
	}
	params := make(map[string]string, len(names))
	for i, name := range names {
		params[name] = args[i]
	}
	path, err := p.Expand(params, strings.Join(args[len(names):], "/"))
	if err != nil {
		panic(err)
	}
	return path
}
