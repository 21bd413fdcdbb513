package page

import (
	"context"
	"fmt"
	"sync/atomic"

	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/router"
	"loam.dev/pkg/view"
)

type route interface {
	Route
	isRoute()
}

type (
	landingRoute  struct{}
	helloRoute    struct{ Name string }
	flagRoute     struct{}
	notFoundRoute struct{ Path string }
)

func (landingRoute) PageKey() string  { return "landing" }
func (helloRoute) PageKey() string    { return "hello" }
func (flagRoute) PageKey() string     { return "flag" }
func (notFoundRoute) PageKey() string { return "notFound" }

func (landingRoute) isRoute()  {}
func (helloRoute) isRoute()    {}
func (flagRoute) isRoute()     {}
func (notFoundRoute) isRoute() {}

var testRouter = router.MustNew(
	router.Config[route]{
		NotFound: func(path string) route { return notFoundRoute{path} },
		ToURL: func(r route) string {
			switch r := r.(type) {
			case landingRoute:
				return "/"
			case helloRoute:
				return router.Path("/hello/:name", r.Name)
			case flagRoute:
				return "/flag"
			case notFoundRoute:
				return r.Path
			}
			panic("unreachable")
		},
	},
	router.Def[route]{Pattern: "/", Make: func(router.Match) route { return landingRoute{} }},
	router.Def[route]{Pattern: "/hello/:name", Make: func(m router.Match) route { return helloRoute{m.Params["name"]} }},
	router.Def[route]{Pattern: "/flag", Make: func(router.Match) route { return flagRoute{} }},
)

type shared struct{ Greeting string }

type pageMsg[M any] = msg.Msg[M, route]

// Landing page: ready immediately.

type landingPage struct{}

type landingState struct{ Clicks int }

type landingMsg struct{}

func (landingPage) Init(route, shared) (landingState, []cmd.Cmd[pageMsg[landingMsg]]) {
	return landingState{}, []cmd.Cmd[pageMsg[landingMsg]]{cmd.Now(msg.Ready[landingMsg, route]())}
}

func (landingPage) Update(s landingState, _ landingMsg) (landingState, []cmd.Cmd[pageMsg[landingMsg]]) {
	s.Clicks++
	return s, nil
}

func (landingPage) View(s landingState, _ msg.Dispatch[landingMsg, route]) view.Node {
	return view.Textf("Clicks: %d", s.Clicks)
}

// Hello page: greets asynchronously, ready after the greeting arrives.

type helloPage struct {
	inits atomic.Int32
	// If not nil, the greeting waits for a value from this channel.
	hold chan string
}

type helloState struct {
	Name     string
	Greeting string
}

type greeted struct{ Text string }

func (greeted) Tag() string { return "greeted" }

func (p *helloPage) Init(r route, sh shared) (helloState, []cmd.Cmd[pageMsg[greeted]]) {
	p.inits.Add(1)
	name := r.(helloRoute).Name
	greet := cmd.Perform("greet", func(ctx context.Context) (string, error) {
		suffix := ""
		if p.hold != nil {
			select {
			case suffix = <-p.hold:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return fmt.Sprintf("%s, %s%s", sh.Greeting, name, suffix), nil
	}, func(text string, err error) pageMsg[greeted] {
		if err != nil {
			return msg.ShowToastMsg[greeted, route](msg.Toast{Level: msg.Error, Text: err.Error()})
		}
		return msg.Wrap[greeted, route](greeted{text})
	})
	return helloState{Name: name}, []cmd.Cmd[pageMsg[greeted]]{greet}
}

func (p *helloPage) Update(s helloState, m greeted) (helloState, []cmd.Cmd[pageMsg[greeted]]) {
	s.Greeting = m.Text
	return s, []cmd.Cmd[pageMsg[greeted]]{cmd.Now(msg.Ready[greeted, route]())}
}

func (p *helloPage) View(s helloState, _ msg.Dispatch[greeted, route]) view.Node {
	return view.Text(s.Greeting)
}

func (p *helloPage) Metadata(s helloState) Metadata {
	return Metadata{Title: "Hello " + s.Name}
}

func (p *helloPage) Breadcrumbs(s helloState) []Breadcrumb[route] {
	return []Breadcrumb[route]{{"Home", landingRoute{}}, {s.Name, helloRoute{s.Name}}}
}

func (p *helloPage) Alerts(s helloState) []Alert {
	if s.Greeting == "" {
		return []Alert{{msg.Info, "Waiting for a greeting"}}
	}
	return nil
}

func (p *helloPage) ContextualActions(helloState) []Action[route] {
	return []Action[route]{{"f", "Flag", flagRoute{}}}
}

// Flag page: storage round trip.

type flagPage struct{}

type flagState struct {
	Value  string
	Loaded bool
	Err    string
}

type flagMsg interface{ isFlagMsg() }

type (
	setFlag    struct{ Value string }
	flagSaved  struct{ Err error }
	loadFlag   struct{}
	flagLoaded struct{ Item cmd.Item }
)

func (setFlag) isFlagMsg()    {}
func (flagSaved) isFlagMsg()  {}
func (loadFlag) isFlagMsg()   {}
func (flagLoaded) isFlagMsg() {}

func wrapFlag(m flagMsg) pageMsg[flagMsg] { return msg.Wrap[flagMsg, route](m) }

func (flagPage) Init(route, shared) (flagState, []cmd.Cmd[pageMsg[flagMsg]]) {
	return flagState{}, []cmd.Cmd[pageMsg[flagMsg]]{cmd.Now(msg.Ready[flagMsg, route]())}
}

func (flagPage) Update(s flagState, m flagMsg) (flagState, []cmd.Cmd[pageMsg[flagMsg]]) {
	switch m := m.(type) {
	case setFlag:
		return s, []cmd.Cmd[pageMsg[flagMsg]]{cmd.SetItem("flag", m.Value,
			func(err error) pageMsg[flagMsg] { return wrapFlag(flagSaved{err}) })}
	case flagSaved:
		if m.Err != nil {
			s.Err = m.Err.Error()
		}
	case loadFlag:
		return s, []cmd.Cmd[pageMsg[flagMsg]]{cmd.GetItem("flag",
			func(it cmd.Item) pageMsg[flagMsg] { return wrapFlag(flagLoaded{it}) })}
	case flagLoaded:
		s.Value, s.Loaded = m.Item.Value, m.Item.Found
		if m.Item.Err != nil {
			s.Err = m.Item.Err.Error()
		}
	}
	return s, nil
}

func (flagPage) View(s flagState, _ msg.Dispatch[flagMsg, route]) view.Node {
	return view.Textf("flag = %q", s.Value)
}

func (flagPage) Modal(s flagState) (Modal, bool) {
	if s.Err != "" {
		return Modal{"Error", view.Text(s.Err)}, true
	}
	return Modal{}, false
}

// Not-found page.

type notFoundPage struct{}

func (notFoundPage) Init(r route, _ shared) (string, []cmd.Cmd[pageMsg[struct{}]]) {
	return r.(notFoundRoute).Path, []cmd.Cmd[pageMsg[struct{}]]{cmd.Now(msg.Ready[struct{}, route]())}
}

func (notFoundPage) Update(s string, _ struct{}) (string, []cmd.Cmd[pageMsg[struct{}]]) {
	return s, nil
}

func (notFoundPage) View(s string, _ msg.Dispatch[struct{}, route]) view.Node {
	return view.Textf("Not found: %s", s)
}

func newTestApp(hello *helloPage, evict EvictPolicy[route]) *App[route, shared] {
	app, err := NewApp(Config[route, shared]{
		Router: testRouter,
		Shared: shared{Greeting: "Hello"},
		Pages: []Entry[route, shared]{
			Register[landingState, landingMsg, route, shared]("landing", landingPage{}),
			Register[helloState, greeted, route, shared]("hello", hello),
			Register[flagState, flagMsg, route, shared]("flag", flagPage{}),
			Register[string, struct{}, route, shared]("notFound", notFoundPage{}),
		},
		Evict: evict,
	})
	if err != nil {
		panic(err)
	}
	return app
}
