package demo

import (
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/view"
)

// LandingPage is the home page.
type LandingPage struct{}

// LandingState is the state of the landing page.
type LandingState struct{ Greeting string }

// LandingMsg is the message type of the landing page, which has none.
type LandingMsg struct{}

func (LandingPage) Init(_ Route, sh Shared) (LandingState, []cmd.Cmd[pageMsg[LandingMsg]]) {
	return LandingState{sh.Greeting}, []cmd.Cmd[pageMsg[LandingMsg]]{
		cmd.Now(msg.Ready[LandingMsg, Route]())}
}

func (LandingPage) Update(s LandingState, _ LandingMsg) (LandingState, []cmd.Cmd[pageMsg[LandingMsg]]) {
	return s, nil
}

func (LandingPage) View(s LandingState, _ msg.Dispatch[LandingMsg, Route]) view.Node {
	return view.Column(
		view.Textf("%s from loam.", s.Greeting),
		hint("Try /hello/<name>, /flag or /flag/<value>."),
	)
}

func (LandingPage) Metadata(LandingState) page.Metadata {
	return page.Metadata{Title: "loam", Description: "Landing page"}
}

func (LandingPage) ContextualActions(LandingState) []page.Action[Route] {
	return []page.Action[Route]{
		{Key: "w", Label: "Hello, world", Route: Hello{"world"}},
		{Key: "f", Label: "Flag", Route: Flag{}},
	}
}
