package page

import (
	"loam.dev/pkg/immutable"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/persistent/hashmap"
)

// Lenses into the state of an App. Update goes through these instead of
// unwrapping the root value.

type stateLens[R Route, Sh any, A any] = immutable.Lens[State[R, Sh], A]

func pagesLens[R Route, Sh any]() stateLens[R, Sh, hashmap.Map[string, Slot[R]]] {
	return stateLens[R, Sh, hashmap.Map[string, Slot[R]]]{
		Get: func(s State[R, Sh]) hashmap.Map[string, Slot[R]] { return s.Pages },
		Set: func(s State[R, Sh], p hashmap.Map[string, Slot[R]]) State[R, Sh] { s.Pages = p; return s },
	}
}

// The slot of the page with the given key.
func slotLens[R Route, Sh any](key string) stateLens[R, Sh, Slot[R]] {
	return immutable.Compose(pagesLens[R, Sh](), immutable.Entry[string, Slot[R]](key))
}

func navLens[R Route, Sh any]() stateLens[R, Sh, Nav] {
	return stateLens[R, Sh, Nav]{
		Get: func(s State[R, Sh]) Nav { return s.Nav },
		Set: func(s State[R, Sh], n Nav) State[R, Sh] { s.Nav = n; return s },
	}
}

func loadingLens[R Route, Sh any]() stateLens[R, Sh, bool] {
	return immutable.Compose(navLens[R, Sh](), immutable.Lens[Nav, bool]{
		Get: func(n Nav) bool { return n.Loading },
		Set: func(n Nav, l bool) Nav { n.Loading = l; return n },
	})
}

func viewportLens[R Route, Sh any]() stateLens[R, Sh, Viewport] {
	return immutable.Compose(navLens[R, Sh](), immutable.Lens[Nav, Viewport]{
		Get: func(n Nav) Viewport { return n.Viewport },
		Set: func(n Nav, vp Viewport) Nav { n.Viewport = vp; return n },
	})
}

func toastsLens[R Route, Sh any]() stateLens[R, Sh, []msg.Toast] {
	return stateLens[R, Sh, []msg.Toast]{
		Get: func(s State[R, Sh]) []msg.Toast { return s.Toasts },
		Set: func(s State[R, Sh], ts []msg.Toast) State[R, Sh] { s.Toasts = ts; return s },
	}
}

func seqLens[R Route, Sh any]() stateLens[R, Sh, uint64] {
	return stateLens[R, Sh, uint64]{
		Get: func(s State[R, Sh]) uint64 { return s.Seq },
		Set: func(s State[R, Sh], n uint64) State[R, Sh] { s.Seq = n; return s },
	}
}
