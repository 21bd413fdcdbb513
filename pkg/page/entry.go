package page

import (
	"fmt"

	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/view"
)

// Entry is a page with its state and message types erased, so that pages of
// different types can live in one App.
type Entry[R Route, Sh any] interface {
	// Key is the key of the page; it must equal the PageKey of the routes
	// shown by the page.
	Key() string

	init(route R, shared Sh) (any, []cmd.Cmd[msg.Msg[any, R]])
	update(state, m any) (any, []cmd.Cmd[msg.Msg[any, R]], error)
	view(state any, dispatch msg.Dispatch[any, R]) view.Node
	hooks(state any) hookValues[R]
}

type hookValues[R any] struct {
	alerts      []Alert
	modal       *Modal
	breadcrumbs []Breadcrumb[R]
	actions     []Action[R]
	metadata    Metadata
}

// Register erases the types of a page.
func Register[S, M any, R Route, Sh any](key string, p Page[S, M, R, Sh]) Entry[R, Sh] {
	return entry[S, M, R, Sh]{key, p}
}

type entry[S, M any, R Route, Sh any] struct {
	key string
	p   Page[S, M, R, Sh]
}

func (e entry[S, M, R, Sh]) Key() string { return e.key }

func (e entry[S, M, R, Sh]) init(route R, shared Sh) (any, []cmd.Cmd[msg.Msg[any, R]]) {
	s, cmds := e.p.Init(route, shared)
	return s, cmd.MapMany(cmds, erase[M, R])
}

func (e entry[S, M, R, Sh]) update(state, m any) (any, []cmd.Cmd[msg.Msg[any, R]], error) {
	s, ok := state.(S)
	if !ok {
		return state, nil, fmt.Errorf("page %s: state has type %T", e.key, state)
	}
	pm, ok := m.(M)
	if !ok {
		return state, nil, fmt.Errorf("page %s: message has type %T", e.key, m)
	}
	s, cmds := e.p.Update(s, pm)
	return s, cmd.MapMany(cmds, erase[M, R]), nil
}

func (e entry[S, M, R, Sh]) view(state any, dispatch msg.Dispatch[any, R]) view.Node {
	s, ok := state.(S)
	if !ok {
		return view.Empty
	}
	return e.p.View(s, msg.MapDispatch(dispatch, toAny[M]))
}

func (e entry[S, M, R, Sh]) hooks(state any) hookValues[R] {
	var h hookValues[R]
	s, ok := state.(S)
	if !ok {
		return h
	}
	if p, ok := e.p.(Alerter[S]); ok {
		h.alerts = p.Alerts(s)
	}
	if p, ok := e.p.(Modaler[S]); ok {
		if m, ok := p.Modal(s); ok {
			h.modal = &m
		}
	}
	if p, ok := e.p.(Breadcrumber[S, R]); ok {
		h.breadcrumbs = p.Breadcrumbs(s)
	}
	if p, ok := e.p.(Actioner[S, R]); ok {
		h.actions = p.ContextualActions(s)
	}
	if p, ok := e.p.(Metadataer[S]); ok {
		h.metadata = p.Metadata(s)
	}
	return h
}

func erase[M any, R Route](m msg.Msg[M, R]) msg.Msg[any, R] { return msg.Map[M, any, R](m, toAny[M]) }

func toAny[M any](m M) any { return m }
