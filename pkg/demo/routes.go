package demo

import (
	"loam.dev/pkg/page"
	"loam.dev/pkg/router"
)

// Route is a route of the demo app.
type Route interface {
	page.Route
	isRoute()
}

// Routes of the demo app.
type (
	// Landing is the home page, at "/".
	Landing struct{}
	// Hello greets Name, at "/hello/:name".
	Hello struct{ Name string }
	// Flag shows the stored flag, at "/flag". If Set is not empty the flag is
	// first written with it, at "/flag/:value".
	Flag struct{ Set string }
	// NotFound is shown for any other path.
	NotFound struct{ Path string }
)

// Page keys.
const (
	LandingKey  = "landing"
	HelloKey    = "hello"
	FlagKey     = "flag"
	NotFoundKey = "notFound"
)

func (Landing) PageKey() string  { return LandingKey }
func (Hello) PageKey() string    { return HelloKey }
func (Flag) PageKey() string     { return FlagKey }
func (NotFound) PageKey() string { return NotFoundKey }

func (Landing) isRoute()  {}
func (Hello) isRoute()    {}
func (Flag) isRoute()     {}
func (NotFound) isRoute() {}

// Router maps the URLs of the demo app to routes and back.
var Router = router.MustNew(
	router.Config[Route]{
		NotFound: func(path string) Route { return NotFound{path} },
		ToURL:    routeURL,
	},
	router.Def[Route]{Pattern: "/",
		Make: func(router.Match) Route { return Landing{} }},
	router.Def[Route]{Pattern: "/hello/:name",
		Make: func(m router.Match) Route { return Hello{m.Params["name"]} }},
	router.Def[Route]{Pattern: "/flag",
		Make: func(router.Match) Route { return Flag{} }},
	router.Def[Route]{Pattern: "/flag/:value",
		Make: func(m router.Match) Route { return Flag{m.Params["value"]} }},
)

func routeURL(r Route) string {
	switch r := r.(type) {
	case Landing:
		return "/"
	case Hello:
		if r.Name == "" {
			// Matches no pattern, so it comes back as NotFound.
			return "/hello"
		}
		return router.Path("/hello/:name", r.Name)
	case Flag:
		if r.Set == "" {
			return "/flag"
		}
		return router.Path("/flag/:value", r.Set)
	case NotFound:
		return r.Path
	}
	// Route is sealed.
	panic("unreachable")
}
