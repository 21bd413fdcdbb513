package page

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/immutable"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/loop"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/persistent/hashmap"
	"loam.dev/pkg/router"
	"loam.dev/pkg/view"
)

var logger = logutil.GetLogger("[page] ")

// Namespace of the generations and toast IDs minted by apps. They are derived
// from a sequence number, so that Update stays a pure function of its input.
var idSpace = uuid.MustParse("6f1c1a3e-3c1e-4d55-9a2b-6c6f616d0001")

// Errors returned by NewApp.
var (
	ErrNoRouter     = errors.New("app has no router")
	ErrDuplicateKey = errors.New("duplicate page key")
	ErrNoNotFound   = errors.New("no page for the not-found route")
)

// EvictPolicy decides whether the retained, inactive page with the given key
// and slot is dropped after a navigation to active.
type EvictPolicy[R Route] func(key string, slot Slot[R], active string) bool

// EvictInactive drops every page that is not active.
func EvictInactive[R Route](key string, _ Slot[R], active string) bool {
	return key != active
}

// Config configures an App.
type Config[R Route, Sh any] struct {
	Router *router.Router[R]
	Shared Sh
	Pages  []Entry[R, Sh]
	// Evict is consulted for every retained page after each navigation. If
	// nil, all pages are retained.
	Evict EvictPolicy[R]
	// Layout arranges a page and the app chrome. If nil, DefaultLayout is
	// used.
	Layout func(Frame[R]) view.Node
}

// App is the top-level component of an application.
type App[R Route, Sh any] struct {
	cfg   Config[R, Sh]
	pages map[string]Entry[R, Sh]
}

// NewApp creates an App.
func NewApp[R Route, Sh any](cfg Config[R, Sh]) (*App[R, Sh], error) {
	if cfg.Router == nil {
		return nil, ErrNoRouter
	}
	if cfg.Layout == nil {
		cfg.Layout = DefaultLayout[R]
	}
	pages := make(map[string]Entry[R, Sh], len(cfg.Pages))
	for _, e := range cfg.Pages {
		if _, dup := pages[e.Key()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key())
		}
		pages[e.Key()] = e
	}
	// Any URL may lead to the not-found route, so its page must exist.
	nf := cfg.Router.NotFound("/")
	if any(nf) == nil {
		return nil, fmt.Errorf("%w: router returned a nil route", ErrNoNotFound)
	}
	if _, ok := pages[nf.PageKey()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoNotFound, nf.PageKey())
	}
	return &App[R, Sh]{cfg, pages}, nil
}

// Router returns the router of the app.
func (a *App[R, Sh]) Router() *router.Router[R] { return a.cfg.Router }

// Program returns the loop program of the app, starting at initialURL. Every
// committed state is rendered with View and passed to render.
func (a *App[R, Sh]) Program(initialURL string, render func(view.Node)) loop.Program[State[R, Sh], Msg[R]] {
	return loop.Program[State[R, Sh], Msg[R]]{
		Init: func() (immutable.Value[State[R, Sh]], []cmd.Cmd[Msg[R]]) {
			return a.Init(initialURL)
		},
		Update: a.Update,
		View: func(s State[R, Sh], dispatch func(Msg[R])) {
			if render != nil {
				render(a.View(s, dispatch))
			}
		},
	}
}

// Init returns the initial state, with the page for initialURL active.
func (a *App[R, Sh]) Init(initialURL string) (immutable.Value[State[R, Sh]], []cmd.Cmd[Msg[R]]) {
	v := immutable.Of(State[R, Sh]{Shared: a.cfg.Shared, Pages: hashmap.Strings[Slot[R]]()})
	return a.activate(v, a.cfg.Router.Match(initialURL), initialURL)
}

// Update processes one message.
func (a *App[R, Sh]) Update(v immutable.Value[State[R, Sh]], m Msg[R]) (immutable.Value[State[R, Sh]], []cmd.Cmd[Msg[R]]) {
	r := msg.Match[AppMsg, R, result[R, Sh]](m, updater[R, Sh]{a, v})
	return r.v, r.cmds
}

type result[R Route, Sh any] struct {
	v    immutable.Value[State[R, Sh]]
	cmds []cmd.Cmd[Msg[R]]
}

// updater handles every message variant for an App.
type updater[R Route, Sh any] struct {
	a *App[R, Sh]
	v immutable.Value[State[R, Sh]]
}

func (u updater[R, Sh]) unchanged() result[R, Sh] { return result[R, Sh]{u.v, nil} }

func (u updater[R, Sh]) Inner(m AppMsg) result[R, Sh] {
	switch m := m.(type) {
	case ToPage:
		return u.toPage(m)
	case PageReadyFor:
		return u.ready(m.Key, m.Gen)
	case DismissToast:
		v := immutable.Update(u.v, toastsLens[R, Sh](), func(ts []msg.Toast) []msg.Toast {
			return slices.DeleteFunc(slices.Clone(ts), func(t msg.Toast) bool { return t.ID == m.ID })
		})
		return result[R, Sh]{v, nil}
	case Resize:
		return result[R, Sh]{immutable.Set(u.v, viewportLens[R, Sh](), Viewport{m.Width, m.Height}), nil}
	}
	// AppMsg is sealed and every variant is listed above.
	panic(fmt.Sprintf("unknown app message %T", m))
}

func (u updater[R, Sh]) IncomingRoute(r R) result[R, Sh] {
	return u.navigate(r, u.a.cfg.Router.URL(r), nil)
}

func (u updater[R, Sh]) NewRoute(r R) result[R, Sh] {
	url := u.a.cfg.Router.URL(r)
	return u.navigate(r, url, &historyChange{url, false})
}

func (u updater[R, Sh]) ReplaceRoute(r R) result[R, Sh] {
	url := u.a.cfg.Router.URL(r)
	return u.navigate(r, url, &historyChange{url, true})
}

func (u updater[R, Sh]) NewURL(url string) result[R, Sh] {
	return u.navigate(u.a.cfg.Router.Match(url), url, &historyChange{url, false})
}

func (u updater[R, Sh]) ReplaceURL(url string) result[R, Sh] {
	return u.navigate(u.a.cfg.Router.Match(url), url, &historyChange{url, true})
}

// PageReady from outside any page applies to the active page.
func (u updater[R, Sh]) PageReady() result[R, Sh] {
	s := u.v.Get()
	slot, ok := s.Active()
	if !ok {
		return u.unchanged()
	}
	return u.ready(s.ActiveKey(), slot.Gen)
}

func (u updater[R, Sh]) Reload() result[R, Sh] {
	s := u.v.Get()
	v := immutable.Update(u.v, pagesLens[R, Sh](), func(p hashmap.Map[string, Slot[R]]) hashmap.Map[string, Slot[R]] {
		return p.Dissoc(s.ActiveKey())
	})
	v, cmds := u.a.activate(v, s.ActiveRoute, s.Nav.URL)
	return result[R, Sh]{v, cmds}
}

func (u updater[R, Sh]) ShowToast(t msg.Toast) result[R, Sh] {
	v := u.v
	if t.ID == "" {
		var id uuid.UUID
		v, id = mint(v, "toast")
		t.ID = id.String()
	}
	v = immutable.Update(v, toastsLens[R, Sh](), func(ts []msg.Toast) []msg.Toast {
		return append(slices.Clip(ts), t)
	})
	var cmds []cmd.Cmd[Msg[R]]
	if t.Timeout > 0 {
		cmds = append(cmds, cmd.Delay(t.Timeout, ToApp[R](DismissToast{t.ID})))
	}
	return result[R, Sh]{v, cmds}
}

func (u updater[R, Sh]) Noop() result[R, Sh] { return u.unchanged() }

type historyChange struct {
	url     string
	replace bool
}

func (u updater[R, Sh]) navigate(r R, url string, h *historyChange) result[R, Sh] {
	v, cmds := u.a.activate(u.v, r, url)
	if h != nil {
		cmds = append(cmds, cmd.Navigate(h.url, h.replace, navigated[R]))
	}
	return result[R, Sh]{v, cmds}
}

func navigated[R Route](err error) Msg[R] {
	if err != nil {
		return msg.ShowToastMsg[AppMsg, R](msg.Toast{
			Level: msg.Error, Text: "Could not record navigation: " + err.Error()})
	}
	return msg.None[AppMsg, R]()
}

func (u updater[R, Sh]) toPage(m ToPage) result[R, Sh] {
	slot, ok := immutable.View(u.v, pagesLens[R, Sh]()).Index(m.Key)
	if !ok || slot.Gen != m.Gen {
		logger.Debug().Str("page", m.Key).Msg("dropped stale page message")
		return u.unchanged()
	}
	e := u.a.pages[m.Key]
	state, pageCmds, err := e.update(slot.State, m.Msg)
	if err != nil {
		logger.Error().Err(err).Msg("page update")
		return u.unchanged()
	}
	v := immutable.Update(u.v, slotLens[R, Sh](m.Key), func(sl Slot[R]) Slot[R] {
		sl.State = state
		return sl
	})
	return result[R, Sh]{v, cmd.MapMany(pageCmds, lift[R](m.Key, m.Gen))}
}

func (u updater[R, Sh]) ready(key string, gen Gen) result[R, Sh] {
	slot, ok := immutable.View(u.v, pagesLens[R, Sh]()).Index(key)
	if !ok || slot.Gen != gen {
		return u.unchanged()
	}
	v := u.v
	if !slot.Ready {
		slot.Ready = true
		v = immutable.Set(v, slotLens[R, Sh](key), slot)
	}
	if key == v.Get().ActiveKey() {
		v = immutable.Set(v, loadingLens[R, Sh](), false)
	}
	return result[R, Sh]{v, nil}
}

// activate makes route the active route, resuming or initializing its page,
// and applies the eviction policy.
func (a *App[R, Sh]) activate(v immutable.Value[State[R, Sh]], route R, url string) (immutable.Value[State[R, Sh]], []cmd.Cmd[Msg[R]]) {
	key := route.PageKey()
	e, ok := a.pages[key]
	if !ok {
		logger.Error().Str("page", key).Msg("no page for route")
		var id uuid.UUID
		v, id = mint(v, "toast")
		v = immutable.Update(v, toastsLens[R, Sh](), func(ts []msg.Toast) []msg.Toast {
			return append(slices.Clip(ts), msg.Toast{
				ID: id.String(), Level: msg.Error, Text: fmt.Sprintf("No page for %s", url)})
		})
		return v, nil
	}

	v = v.With(func(s State[R, Sh]) State[R, Sh] {
		s.ActiveRoute = route
		s.Nav.URL = url
		return s
	})
	canonical := a.cfg.Router.URL(route)

	var cmds []cmd.Cmd[Msg[R]]
	slot, retained := immutable.View(v, pagesLens[R, Sh]()).Index(key)
	if retained && slot.URL == canonical {
		logger.Debug().Str("page", key).Msg("resume")
	} else {
		var gen Gen
		v, gen = mint(v, key)
		state, pageCmds := e.init(route, v.Get().Shared)
		slot = Slot[R]{Route: route, URL: canonical, Gen: gen, State: state}
		cmds = cmd.MapMany(pageCmds, lift[R](key, gen))
		logger.Debug().Str("page", key).Str("gen", gen.String()).Msg("init")
	}
	v = immutable.Set(v, slotLens[R, Sh](key), slot)
	v = immutable.Set(v, loadingLens[R, Sh](), !slot.Ready)

	if a.cfg.Evict != nil {
		v = immutable.Update(v, pagesLens[R, Sh](), func(p hashmap.Map[string, Slot[R]]) hashmap.Map[string, Slot[R]] {
			for k, other := range p.All() {
				if k != key && a.cfg.Evict(k, other, key) {
					p = p.Dissoc(k)
				}
			}
			return p
		})
	}
	return v, cmds
}

// mint advances the sequence number and derives an ID in the given scope
// from it.
func mint[R Route, Sh any](v immutable.Value[State[R, Sh]], scope string) (immutable.Value[State[R, Sh]], uuid.UUID) {
	v = immutable.Update(v, seqLens[R, Sh](), func(n uint64) uint64 { return n + 1 })
	return v, mintID(scope, immutable.View(v, seqLens[R, Sh]()))
}

// lift turns a message of the page with the given key and generation into a
// message of the app. Inner messages become ToPage and the ready signal is
// scoped to the page; other variants pass through.
func lift[R Route](key string, gen Gen) func(msg.Msg[any, R]) Msg[R] {
	return func(m msg.Msg[any, R]) Msg[R] {
		if _, ok := m.(msg.PageReady[any, R]); ok {
			return ToApp[R](PageReadyFor{key, gen})
		}
		return msg.Map[any, AppMsg, R](m, func(v any) AppMsg { return ToPage{key, gen, v} })
	}
}

func mintID(scope string, seq uint64) uuid.UUID {
	return uuid.NewSHA1(idSpace, fmt.Appendf(nil, "%s#%d", scope, seq))
}
