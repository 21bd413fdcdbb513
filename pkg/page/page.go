// Package page composes pages into an application.
//
// A page is a component with its own state and message types. The App owns
// the mapping from routes to pages: on a route change it resumes the page's
// retained state or initializes it, and it forwards page messages to the page
// that issued them, re-wrapping everything the page returns. Pages only know
// their own message type; the cross-cutting variants of msg.Msg (navigation,
// the ready signal, toasts) pass through every layer unchanged.
package page

import (
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/view"
)

// Route is implemented by the route type of an application. PageKey names the
// page that shows the route; routes of the same page share its retained
// state.
type Route interface {
	PageKey() string
}

// Page is a component shown for some routes. S is the page state, M the
// page message type, R the route type and Sh the type of the state shared by
// all pages.
//
// All methods must be synchronous and must not mutate their arguments.
// Effects are returned as commands.
type Page[S, M any, R Route, Sh any] interface {
	Init(route R, shared Sh) (S, []cmd.Cmd[msg.Msg[M, R]])
	Update(state S, m M) (S, []cmd.Cmd[msg.Msg[M, R]])
	View(state S, dispatch msg.Dispatch[M, R]) view.Node
}

// Alert is a persistent notice shown above a page.
type Alert struct {
	Level msg.Level
	Text  string
}

// Modal is a dialog shown over a page.
type Modal struct {
	Title string
	Body  view.Node
}

// Breadcrumb is one step of the path leading to a page.
type Breadcrumb[R any] struct {
	Label string
	Route R
}

// Action is an action offered in the context of a page, leading to a route.
type Action[R any] struct {
	Key   string
	Label string
	Route R
}

// Metadata describes a page.
type Metadata struct {
	Title       string
	Description string
}

// Optional hooks. A page implements the ones it needs; each is a pure
// function of the page state.
type (
	Alerter[S any] interface {
		Alerts(S) []Alert
	}
	Modaler[S any] interface {
		Modal(S) (Modal, bool)
	}
	Breadcrumber[S, R any] interface {
		Breadcrumbs(S) []Breadcrumb[R]
	}
	Actioner[S, R any] interface {
		ContextualActions(S) []Action[R]
	}
	Metadataer[S any] interface {
		Metadata(S) Metadata
	}
)
