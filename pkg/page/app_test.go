package page

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/immutable"
	"loam.dev/pkg/loop"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/router"
	"loam.dev/pkg/store"
	"loam.dev/pkg/testutil"
	"loam.dev/pkg/view"
)

type harness struct {
	app     *App[route, shared]
	m       *loop.Manager[State[route, shared], Msg[route]]
	history *router.MemHistory

	mu   sync.Mutex
	tags []string
	last view.Node
}

func startApp(t *testing.T, app *App[route, shared], url string) *harness {
	t.Helper()
	h := &harness{app: app, history: router.NewMemHistory(url)}
	p := app.Program(url, func(n view.Node) {
		h.mu.Lock()
		h.last = n
		h.mu.Unlock()
	})
	update := p.Update
	p.Update = func(s immutable.Value[State[route, shared]], m Msg[route]) (immutable.Value[State[route, shared]], []cmd.Cmd[Msg[route]]) {
		h.mu.Lock()
		h.tags = append(h.tags, m.Tag())
		h.mu.Unlock()
		return update(s, m)
	}
	ex := &cmd.Executor{Store: store.NewMemStore(), History: h.history}
	m, err := loop.Start(context.Background(), p, loop.Options{Executor: ex})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Stop)
	h.m = m
	h.waitIdle(t)
	return h
}

func (h *harness) waitIdle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testutil.Scaled(5*time.Second))
	defer cancel()
	if err := h.m.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
}

func (h *harness) dispatch(t *testing.T, m Msg[route]) {
	t.Helper()
	h.m.Dispatch(m)
	h.waitIdle(t)
}

func (h *harness) sawTag(tag string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Contains(h.tags, tag)
}

func (h *harness) rendered(width int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last.Render(width)
}

func slotOf(t *testing.T, s State[route, shared], key string) Slot[route] {
	t.Helper()
	slot, ok := s.Pages.Index(key)
	if !ok {
		t.Fatalf("no slot for page %s", key)
	}
	return slot
}

func toFlag(m flagMsg, s State[route, shared]) Msg[route] {
	slot, _ := s.Pages.Index("flag")
	return ToApp[route](ToPage{"flag", slot.Gen, m})
}

func TestScenario_Navigation(t *testing.T) {
	h := startApp(t, newTestApp(&helloPage{}, nil), "/")
	if got := h.m.State().ActiveRoute; got != (landingRoute{}) {
		t.Fatalf("initial route = %v", got)
	}

	h.dispatch(t, msg.Push[AppMsg, route](helloRoute{"Ada"}))

	s := h.m.State()
	if s.ActiveRoute != (helloRoute{"Ada"}) {
		t.Errorf("ActiveRoute = %v, want hello Ada", s.ActiveRoute)
	}
	slot := slotOf(t, s, "hello")
	if diff := cmp.Diff(helloState{"Ada", "Hello, Ada"}, slot.State); diff != "" {
		t.Errorf("hello state (-want +got):\n%s", diff)
	}
	if !slot.Ready || s.Nav.Loading {
		t.Errorf("page not ready: Ready=%v Loading=%v", slot.Ready, s.Nav.Loading)
	}
	if !h.sawTag("@pageReady") {
		t.Errorf("no @pageReady message processed")
	}
	if diff := cmp.Diff([]string{"/", "/hello/Ada"}, h.history.Entries()); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
	if out := h.rendered(0); !strings.Contains(out, "Hello, Ada") {
		t.Errorf("rendered view %q lacks greeting", out)
	}
}

func TestScenario_StorageRoundTrip(t *testing.T) {
	h := startApp(t, newTestApp(&helloPage{}, nil), "/flag")
	h.dispatch(t, toFlag(setFlag{"true"}, h.m.State()))
	h.dispatch(t, toFlag(loadFlag{}, h.m.State()))

	got := slotOf(t, h.m.State(), "flag").State.(flagState)
	if diff := cmp.Diff(flagState{Value: "true", Loaded: true}, got); diff != "" {
		t.Errorf("flag state (-want +got):\n%s", diff)
	}
}

func TestScenario_StaleEffect(t *testing.T) {
	hello := &helloPage{hold: make(chan string)}
	h := startApp(t, newTestApp(hello, nil), "/")

	// Ada's greeting is held while the page is initialized again for Bob.
	h.m.Dispatch(msg.Push[AppMsg, route](helloRoute{"Ada"}))
	testutil.WaitFor(t, 5*time.Second, "hello init", func() bool { return hello.inits.Load() == 1 })
	h.m.Dispatch(msg.Push[AppMsg, route](helloRoute{"Bob"}))
	testutil.WaitFor(t, 5*time.Second, "hello re-init", func() bool { return hello.inits.Load() == 2 })

	// Both greetings are computed; whichever arrives first, only Bob's is for
	// the current generation.
	hello.hold <- "!"
	hello.hold <- "!"
	h.waitIdle(t)

	slot := slotOf(t, h.m.State(), "hello")
	if diff := cmp.Diff(helloState{"Bob", "Hello, Bob!"}, slot.State); diff != "" {
		t.Errorf("hello state (-want +got):\n%s", diff)
	}
}

func TestStaleMessageIsDropped(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/flag")
	old := slotOf(t, v.Get(), "flag").Gen

	v, _ = app.Update(v, msg.ReloadPage[AppMsg, route]())
	if slotOf(t, v.Get(), "flag").Gen == old {
		t.Fatalf("reload did not mint a new generation")
	}
	stale := ToApp[route](ToPage{"flag", old, flagLoaded{cmd.Item{Value: "x", Found: true}}})
	next, cmds := app.Update(v, stale)
	if got := slotOf(t, next.Get(), "flag").State.(flagState); got != (flagState{}) {
		t.Errorf("stale message changed state to %+v", got)
	}
	if cmds != nil {
		t.Errorf("stale message produced commands")
	}
	// Messages for pages that were never initialized are dropped too.
	unknown := ToApp[route](ToPage{"hello", old, greeted{"x"}})
	if next, _ := app.Update(v, unknown); next.Get().Pages.HasKey("hello") {
		t.Errorf("message for unknown slot created a slot")
	}
}

func TestPageReadyIsScoped(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/hello/Ada")
	ada := slotOf(t, v.Get(), "hello").Gen
	v, _ = app.Update(v, msg.Push[AppMsg, route](helloRoute{"Bob"}))

	v, _ = app.Update(v, ToApp[route](PageReadyFor{"hello", ada}))
	if slotOf(t, v.Get(), "hello").Ready || !v.Get().Nav.Loading {
		t.Errorf("ready signal of an old generation was applied")
	}
	bob := slotOf(t, v.Get(), "hello").Gen
	v, _ = app.Update(v, ToApp[route](PageReadyFor{"hello", bob}))
	if !slotOf(t, v.Get(), "hello").Ready || v.Get().Nav.Loading {
		t.Errorf("ready signal of the current generation was not applied")
	}
}

func TestReadySignalIsLiftedFromPageCommands(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, cmds := app.Init("/")
	if len(cmds) != 1 {
		t.Fatalf("landing init returned %d commands", len(cmds))
	}
	got := cmds[0].Project(struct{}{})
	want := ToApp[route](PageReadyFor{"landing", slotOf(t, v.Get(), "landing").Gen})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUpdateIsPure(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/")
	for _, m := range []Msg[route]{
		msg.Push[AppMsg, route](helloRoute{"Ada"}),
		msg.Replace[AppMsg, route](flagRoute{}),
		msg.PushURL[AppMsg, route]("/nowhere"),
		msg.ShowToastMsg[AppMsg, route](msg.Toast{Text: "hi", Timeout: time.Second}),
		msg.ReloadPage[AppMsg, route](),
		ToApp[route](Resize{80, 24}),
	} {
		s1, c1 := app.Update(v, m)
		s2, c2 := app.Update(v, m)
		if diff := cmp.Diff(flatten(s1.Get()), flatten(s2.Get())); diff != "" {
			t.Errorf("%s: states differ (-first +second):\n%s", m.Tag(), diff)
		}
		if diff := cmp.Diff(effects(c1), effects(c2), cmp.Comparer(sameCall)); diff != "" {
			t.Errorf("%s: commands differ (-first +second):\n%s", m.Tag(), diff)
		}
		v = s1
	}
}

func TestUpdateLeavesInputIntact(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/hello/Ada")
	v, _ = app.Update(v, msg.ShowToastMsg[AppMsg, route](msg.Toast{ID: "t1", Text: "kept"}))
	before := flatten(v.Get())

	next, _ := app.Update(v, msg.Push[AppMsg, route](landingRoute{}))
	next, _ = app.Update(next, ToApp[route](DismissToast{"t1"}))
	next, _ = app.Update(next, msg.ShowToastMsg[AppMsg, route](msg.Toast{Text: "new"}))
	next, _ = app.Update(next, ToApp[route](Resize{120, 50}))

	if diff := cmp.Diff(before, flatten(v.Get())); diff != "" {
		t.Errorf("input state changed (-before +after):\n%s", diff)
	}
	if got := next.Get().Nav.Viewport; got != (Viewport{120, 50}) {
		t.Errorf("viewport = %v, want 120x50", got)
	}
	if got := next.Get().Toasts; len(got) != 1 || got[0].Text != "new" {
		t.Errorf("toasts = %v, want just the new one", got)
	}
}

type flatState struct {
	Active route
	Pages  map[string]Slot[route]
	Nav    Nav
	Toasts []msg.Toast
	Seq    uint64
}

func flatten(s State[route, shared]) flatState {
	return flatState{s.ActiveRoute, maps.Collect(s.Pages.All()), s.Nav, s.Toasts, s.Seq}
}

func effects(cs []cmd.Cmd[Msg[route]]) []cmd.Effect {
	var es []cmd.Effect
	for _, c := range cs {
		es = append(es, c.Effect())
	}
	return es
}

// Calls carry functions, which cannot be compared; compare their names.
func sameCall(a, b cmd.Call) bool { return a.Name == b.Name }

func TestResumeAndEvict(t *testing.T) {
	hello := &helloPage{}
	app := newTestApp(hello, nil)
	v, _ := app.Init("/hello/Ada")
	gen := slotOf(t, v.Get(), "hello").Gen
	v, _ = app.Update(v, msg.Push[AppMsg, route](landingRoute{}))
	v, cmds := app.Update(v, msg.Push[AppMsg, route](helloRoute{"Ada"}))
	if slotOf(t, v.Get(), "hello").Gen != gen {
		t.Errorf("returning to the same route re-initialized the page")
	}
	if hello.inits.Load() != 1 {
		t.Errorf("Init called %d times, want 1", hello.inits.Load())
	}
	// Only the history effect; no init commands.
	if len(cmds) != 1 || cmds[0].Effect().Kind() != "navigate" {
		t.Errorf("resume returned commands %v", effects(cmds))
	}
	if v.Get().Pages.Len() != 2 {
		t.Errorf("retained %d pages, want 2", v.Get().Pages.Len())
	}

	evicting := newTestApp(&helloPage{}, EvictInactive[route])
	v, _ = evicting.Init("/hello/Ada")
	v, _ = evicting.Update(v, msg.Push[AppMsg, route](landingRoute{}))
	if diff := cmp.Diff([]string{"landing"}, v.Get().Pages.Keys()); diff != "" {
		t.Errorf("retained pages (-want +got):\n%s", diff)
	}
}

func TestNavigationIntents(t *testing.T) {
	h := startApp(t, newTestApp(&helloPage{}, nil), "/")
	h.dispatch(t, msg.Push[AppMsg, route](flagRoute{}))
	h.dispatch(t, msg.Replace[AppMsg, route](helloRoute{"Ada"}))
	h.dispatch(t, msg.PushURL[AppMsg, route]("/no/such/page"))
	h.dispatch(t, msg.ReplaceURLMsg[AppMsg, route]("/flag"))
	if diff := cmp.Diff([]string{"/", "/hello/Ada", "/flag"}, h.history.Entries()); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}

	back, err := h.history.Back()
	if err != nil {
		t.Fatal(err)
	}
	h.dispatch(t, msg.Incoming[AppMsg, route](testRouter.Match(back)))
	if got := h.m.State().ActiveRoute; got != (helloRoute{"Ada"}) {
		t.Errorf("after back, active route = %v", got)
	}
	if diff := cmp.Diff([]string{"/", "/hello/Ada"}, h.history.Entries()); diff != "" {
		t.Errorf("incoming route touched history (-want +got):\n%s", diff)
	}
}

func TestNotFound(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/definitely-unmatched-path")
	s := v.Get()
	if s.ActiveRoute != (notFoundRoute{"/definitely-unmatched-path"}) {
		t.Errorf("ActiveRoute = %v", s.ActiveRoute)
	}
	if got := slotOf(t, s, "notFound").State; got != "/definitely-unmatched-path" {
		t.Errorf("not-found page state = %v", got)
	}
}

func TestToasts(t *testing.T) {
	h := startApp(t, newTestApp(&helloPage{}, nil), "/")
	h.dispatch(t, msg.ShowToastMsg[AppMsg, route](msg.Toast{Text: "sticky"}))
	h.dispatch(t, msg.ShowToastMsg[AppMsg, route](msg.Toast{Text: "brief", Timeout: time.Millisecond}))

	toasts := h.m.State().Toasts
	if len(toasts) != 1 || toasts[0].Text != "sticky" || toasts[0].ID == "" {
		t.Fatalf("toasts = %+v, want only sticky with an ID", toasts)
	}
	h.dispatch(t, ToApp[route](DismissToast{toasts[0].ID}))
	if got := h.m.State().Toasts; len(got) != 0 {
		t.Errorf("toasts after dismiss = %+v", got)
	}
}

func TestResize(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/")
	v, _ = app.Update(v, ToApp[route](Resize{100, 40}))
	if got := v.Get().Nav.Viewport; got != (Viewport{100, 40}) {
		t.Errorf("Viewport = %v", got)
	}
}

func TestHooks(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/hello/Ada")
	s := v.Get()
	if got := app.Metadata(s).Title; got != "Hello Ada" {
		t.Errorf("Metadata().Title = %q", got)
	}
	if got := app.Breadcrumbs(s); len(got) != 2 || got[1].Route != (helloRoute{"Ada"}) {
		t.Errorf("Breadcrumbs() = %v", got)
	}
	if got := app.Alerts(s); len(got) != 1 {
		t.Errorf("Alerts() = %v", got)
	}
	if got := app.ContextualActions(s); len(got) != 1 || got[0].Route != (flagRoute{}) {
		t.Errorf("ContextualActions() = %v", got)
	}
	if _, ok := app.Modal(s); ok {
		t.Errorf("hello page has a modal")
	}

	v, _ = app.Update(v, msg.Push[AppMsg, route](flagRoute{}))
	v, _ = app.Update(v, toFlag(flagSaved{errors.New("disk full")}, v.Get()))
	if m, ok := app.Modal(v.Get()); !ok || m.Title != "Error" {
		t.Errorf("Modal() = %v, %v", m, ok)
	}
	out := app.View(v.Get(), func(Msg[route]) {}).Render(0)
	if !strings.Contains(out, "disk full") {
		t.Errorf("view %q does not show the modal", out)
	}
}

func TestLiftedDispatch(t *testing.T) {
	app := newTestApp(&helloPage{}, nil)
	v, _ := app.Init("/")
	gen := slotOf(t, v.Get(), "landing").Gen

	var got []Msg[route]
	lifted := lift[route]("landing", gen)
	dispatch := msg.MapDispatch(func(m msg.Msg[any, route]) { got = append(got, lifted(m)) },
		func(m landingMsg) any { return m })
	dispatch(msg.Wrap[landingMsg, route](landingMsg{}))
	dispatch(msg.Push[landingMsg, route](flagRoute{}))

	want := []Msg[route]{
		ToApp[route](ToPage{"landing", gen, landingMsg{}}),
		msg.Push[AppMsg, route](flagRoute{}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNewApp_Errors(t *testing.T) {
	if _, err := NewApp(Config[route, shared]{}); !errors.Is(err, ErrNoRouter) {
		t.Errorf("got %v, want ErrNoRouter", err)
	}
	_, err := NewApp(Config[route, shared]{
		Router: testRouter,
		Pages: []Entry[route, shared]{
			Register[flagState, flagMsg, route, shared]("flag", flagPage{}),
			Register[flagState, flagMsg, route, shared]("flag", flagPage{}),
		},
	})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("got %v, want ErrDuplicateKey", err)
	}
	_, err = NewApp(Config[route, shared]{
		Router: testRouter,
		Pages: []Entry[route, shared]{
			Register[flagState, flagMsg, route, shared]("flag", flagPage{}),
		},
	})
	if !errors.Is(err, ErrNoNotFound) {
		t.Errorf("got %v, want ErrNoNotFound", err)
	}
	nilRouter := router.MustNew(router.Config[route]{
		NotFound: func(string) route { return nil },
		ToURL:    func(route) string { return "/" },
	})
	_, err = NewApp(Config[route, shared]{
		Router: nilRouter,
		Pages: []Entry[route, shared]{
			Register[string, struct{}, route, shared]("notFound", notFoundPage{}),
		},
	})
	if !errors.Is(err, ErrNoNotFound) {
		t.Errorf("got %v, want ErrNoNotFound for a nil route", err)
	}
}
