package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/view"
)

// Frame is what a layout arranges: the active page's view and hooks, and the
// app-level state.
type Frame[R Route] struct {
	Key         string
	Nav         Nav
	Toasts      []msg.Toast
	Alerts      []Alert
	Modal       *Modal
	Breadcrumbs []Breadcrumb[R]
	Actions     []Action[R]
	Metadata    Metadata
	Body        view.Node
}

// DefaultLayout shows the title, breadcrumbs, alerts, the page, contextual
// actions and toasts, one below the other. A modal replaces the page.
func DefaultLayout[R Route](f Frame[R]) view.Node {
	header := view.Empty
	if f.Metadata.Title != "" {
		header = view.Styled(view.Theme.Title, view.Text(f.Metadata.Title))
	}
	crumbs := view.Empty
	if len(f.Breadcrumbs) > 0 {
		labels := make([]string, len(f.Breadcrumbs))
		for i, b := range f.Breadcrumbs {
			labels[i] = b.Label
		}
		crumbs = view.Styled(view.Theme.Muted, view.Text(strings.Join(labels, " › ")))
	}
	var alerts []view.Node
	for _, a := range f.Alerts {
		alerts = append(alerts, view.Styled(levelStyle(a.Level), view.Text(a.Text)))
	}

	body := f.Body
	if f.Nav.Loading {
		body = view.Column(view.Styled(view.Theme.Muted, view.Text("Loading…")), body)
	}
	if f.Modal != nil {
		body = view.Box(f.Modal.Title, f.Modal.Body)
	}

	actions := view.Empty
	if len(f.Actions) > 0 {
		var sb strings.Builder
		for i, a := range f.Actions {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString("[" + a.Key + "] " + a.Label)
		}
		actions = view.Styled(view.Theme.Muted, view.Text(sb.String()))
	}
	var toasts []view.Node
	for _, t := range f.Toasts {
		toasts = append(toasts, view.Styled(levelStyle(t.Level), view.Text("● "+t.Text)))
	}

	return view.Column(
		header, crumbs, view.Column(alerts...), body, actions, view.Column(toasts...))
}

func levelStyle(l msg.Level) lipgloss.Style {
	switch l {
	case msg.Success:
		return view.Theme.Success
	case msg.Warning:
		return view.Theme.Warning
	case msg.Error:
		return view.Theme.Error
	default:
		return view.Theme.Info
	}
}

// View renders the active page inside the layout. Messages dispatched by the
// page are tagged with its key and generation.
func (a *App[R, Sh]) View(s State[R, Sh], dispatch func(Msg[R])) view.Node {
	f := Frame[R]{Key: s.ActiveKey(), Nav: s.Nav, Toasts: s.Toasts, Body: view.Empty}
	if slot, ok := s.Active(); ok {
		if e, ok := a.pages[f.Key]; ok {
			lifted := lift[R](f.Key, slot.Gen)
			f.Body = e.view(slot.State, func(m msg.Msg[any, R]) { dispatch(lifted(m)) })
			h := e.hooks(slot.State)
			f.Alerts, f.Modal, f.Breadcrumbs = h.alerts, h.modal, h.breadcrumbs
			f.Actions, f.Metadata = h.actions, h.metadata
		}
	}
	return a.cfg.Layout(f)
}

func (a *App[R, Sh]) activeHooks(s State[R, Sh]) hookValues[R] {
	slot, ok := s.Active()
	if !ok {
		return hookValues[R]{}
	}
	e, ok := a.pages[s.ActiveKey()]
	if !ok {
		return hookValues[R]{}
	}
	return e.hooks(slot.State)
}

// Alerts returns the alerts of the active page.
func (a *App[R, Sh]) Alerts(s State[R, Sh]) []Alert { return a.activeHooks(s).alerts }

// Modal returns the modal of the active page, if any.
func (a *App[R, Sh]) Modal(s State[R, Sh]) (Modal, bool) {
	if m := a.activeHooks(s).modal; m != nil {
		return *m, true
	}
	return Modal{}, false
}

// Breadcrumbs returns the breadcrumbs of the active page.
func (a *App[R, Sh]) Breadcrumbs(s State[R, Sh]) []Breadcrumb[R] {
	return a.activeHooks(s).breadcrumbs
}

// ContextualActions returns the actions offered by the active page.
func (a *App[R, Sh]) ContextualActions(s State[R, Sh]) []Action[R] {
	return a.activeHooks(s).actions
}

// Metadata returns the metadata of the active page.
func (a *App[R, Sh]) Metadata(s State[R, Sh]) Metadata { return a.activeHooks(s).metadata }
