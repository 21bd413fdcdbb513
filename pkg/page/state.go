package page

import (
	"loam.dev/pkg/msg"
	"loam.dev/pkg/persistent/hashmap"
)

// State is the state of an App.
type State[R Route, Sh any] struct {
	Shared      Sh
	ActiveRoute R
	// Pages retained by the app, by page key. The active page is always
	// present.
	Pages  hashmap.Map[string, Slot[R]]
	Nav    Nav
	Toasts []msg.Toast
	// Seq numbers the generations and toast IDs minted by the app.
	Seq uint64
}

// Slot is the retained state of one page.
type Slot[R Route] struct {
	Route R
	// Canonical URL of Route. A route change resumes the slot when the new
	// route has the same URL.
	URL   string
	Gen   Gen
	State any
	Ready bool
}

// Nav is the navigation state of an App.
type Nav struct {
	// URL of the active route as it was navigated to.
	URL string
	// Loading is true until the active page has sent its ready signal.
	Loading  bool
	Viewport Viewport
}

// Viewport is the size of the area the App is shown in.
type Viewport struct{ Width, Height int }

// ActiveKey returns the key of the active page.
func (s State[R, Sh]) ActiveKey() string { return s.ActiveRoute.PageKey() }

// Active returns the slot of the active page.
func (s State[R, Sh]) Active() (Slot[R], bool) {
	return s.Pages.Index(s.ActiveKey())
}
