package demo

import (
	"time"

	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/view"
)

// FlagPage shows a flag kept in the store under StoreKey. A Flag route with
// Set writes the flag before reading it back; storage failures are shown as
// toasts.
type FlagPage struct{ ToastTimeout time.Duration }

// FlagState is the state of the flag page.
type FlagState struct {
	Value string
	Found bool
	// Busy is set while a read or write is in flight.
	Busy bool
}

// FlagMsg is the message type of the flag page.
type FlagMsg interface{ isFlagMsg() }

// Toggle flips the flag between "on" and "off".
type Toggle struct{}

type (
	flagSaved  struct{ Err error }
	flagLoaded struct{ Item cmd.Item }
)

func (Toggle) isFlagMsg()     {}
func (flagSaved) isFlagMsg()  {}
func (flagLoaded) isFlagMsg() {}

func (Toggle) Tag() string     { return "toggle" }
func (flagSaved) Tag() string  { return "flagSaved" }
func (flagLoaded) Tag() string { return "flagLoaded" }

type flagCmds = []cmd.Cmd[pageMsg[FlagMsg]]

func (FlagPage) Init(r Route, _ Shared) (FlagState, flagCmds) {
	if set := r.(Flag).Set; set != "" {
		return FlagState{Busy: true}, flagCmds{writeFlag(set)}
	}
	return FlagState{Busy: true}, flagCmds{readFlag()}
}

func (p FlagPage) Update(s FlagState, m FlagMsg) (FlagState, flagCmds) {
	switch m := m.(type) {
	case Toggle:
		s.Busy = true
		return s, flagCmds{writeFlag(toggled(s.Value))}
	case flagSaved:
		if m.Err != nil {
			s.Busy = false
			return s, flagCmds{
				cmd.Now(errorToast[FlagMsg]("cannot save flag: "+m.Err.Error(), p.ToastTimeout)),
				cmd.Now(msg.Ready[FlagMsg, Route]()),
			}
		}
		return s, flagCmds{readFlag()}
	case flagLoaded:
		s.Busy = false
		cmds := flagCmds{cmd.Now(msg.Ready[FlagMsg, Route]())}
		if m.Item.Err != nil {
			cmds = append(cmds, cmd.Now(errorToast[FlagMsg]("cannot load flag: "+m.Item.Err.Error(), p.ToastTimeout)))
			return s, cmds
		}
		s.Value, s.Found = m.Item.Value, m.Item.Found
		return s, cmds
	}
	return s, nil
}

func (FlagPage) View(s FlagState, _ msg.Dispatch[FlagMsg, Route]) view.Node {
	switch {
	case s.Busy:
		return hint("Talking to the store...")
	case !s.Found:
		return view.Text("The flag is not set.")
	}
	return view.Textf("The flag is %s.", view.Theme.Bold.Render(s.Value))
}

func (FlagPage) Alerts(s FlagState) []page.Alert {
	if !s.Busy && !s.Found {
		return []page.Alert{{Level: msg.Warning, Text: "Nothing stored under " + StoreKey}}
	}
	return nil
}

func (FlagPage) Breadcrumbs(FlagState) []page.Breadcrumb[Route] {
	return []page.Breadcrumb[Route]{{Label: "Home", Route: Landing{}}, {Label: "Flag", Route: Flag{}}}
}

func (FlagPage) ContextualActions(s FlagState) []page.Action[Route] {
	return []page.Action[Route]{
		{Key: "t", Label: "Turn " + toggled(s.Value), Route: Flag{toggled(s.Value)}},
		{Key: "h", Label: "Home", Route: Landing{}},
	}
}

func (FlagPage) Metadata(FlagState) page.Metadata {
	return page.Metadata{Title: "Flag", Description: "A value kept in the store"}
}

func toggled(v string) string {
	if v == "on" {
		return "off"
	}
	return "on"
}

func writeFlag(v string) cmd.Cmd[pageMsg[FlagMsg]] {
	return cmd.SetItem(StoreKey, v, func(err error) pageMsg[FlagMsg] {
		return msg.Wrap[FlagMsg, Route](flagSaved{err})
	})
}

func readFlag() cmd.Cmd[pageMsg[FlagMsg]] {
	return cmd.GetItem(StoreKey, func(it cmd.Item) pageMsg[FlagMsg] {
		return msg.Wrap[FlagMsg, Route](flagLoaded{it})
	})
}
