package msg

// Cases handles every variant of Msg[I, R], producing a T.
type Cases[I, R, T any] interface {
	Inner(I) T
	IncomingRoute(R) T
	NewRoute(R) T
	ReplaceRoute(R) T
	NewURL(string) T
	ReplaceURL(string) T
	PageReady() T
	Reload() T
	ShowToast(Toast) T
	Noop() T
}

// Match calls the method of c corresponding to the variant of m. A nil m is
// treated as Noop.
func Match[I, R, T any](m Msg[I, R], c Cases[I, R, T]) T {
	switch m := m.(type) {
	case Inner[I, R]:
		return c.Inner(m.Value)
	case IncomingRoute[I, R]:
		return c.IncomingRoute(m.Route)
	case NewRoute[I, R]:
		return c.NewRoute(m.Route)
	case ReplaceRoute[I, R]:
		return c.ReplaceRoute(m.Route)
	case NewURL[I, R]:
		return c.NewURL(m.URL)
	case ReplaceURL[I, R]:
		return c.ReplaceURL(m.URL)
	case PageReady[I, R]:
		return c.PageReady()
	case Reload[I, R]:
		return c.Reload()
	case ShowToast[I, R]:
		return c.ShowToast(m.Toast)
	case Noop[I, R], nil:
		return c.Noop()
	}
	// Msg is sealed and every variant is listed above.
	panic("unreachable")
}

// Map rewrites the inner payload of m with f. Every other variant is passed
// through with the same payload; only its inner type parameter changes.
func Map[A, B, R any](m Msg[A, R], f func(A) B) Msg[B, R] {
	return Match[A, R, Msg[B, R]](m, mapper[A, B, R]{f})
}

type mapper[A, B, R any] struct{ f func(A) B }

func (mp mapper[A, B, R]) Inner(a A) Msg[B, R]        { return Inner[B, R]{mp.f(a)} }
func (mapper[A, B, R]) IncomingRoute(r R) Msg[B, R]   { return IncomingRoute[B, R]{r} }
func (mapper[A, B, R]) NewRoute(r R) Msg[B, R]        { return NewRoute[B, R]{r} }
func (mapper[A, B, R]) ReplaceRoute(r R) Msg[B, R]    { return ReplaceRoute[B, R]{r} }
func (mapper[A, B, R]) NewURL(u string) Msg[B, R]     { return NewURL[B, R]{u} }
func (mapper[A, B, R]) ReplaceURL(u string) Msg[B, R] { return ReplaceURL[B, R]{u} }
func (mapper[A, B, R]) PageReady() Msg[B, R]          { return PageReady[B, R]{} }
func (mapper[A, B, R]) Reload() Msg[B, R]             { return Reload[B, R]{} }
func (mapper[A, B, R]) ShowToast(t Toast) Msg[B, R]   { return ShowToast[B, R]{t} }
func (mapper[A, B, R]) Noop() Msg[B, R]               { return Noop[B, R]{} }

// Dispatch submits a message to the update loop.
type Dispatch[I, R any] func(Msg[I, R])

// MapDispatch builds the dispatch function of a child component whose inner
// messages are embedded in the parent's with f.
func MapDispatch[A, B, R any](dispatch Dispatch[B, R], f func(A) B) Dispatch[A, R] {
	return func(m Msg[A, R]) { dispatch(Map[A, B, R](m, f)) }
}
