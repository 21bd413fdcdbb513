package demo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"loam.dev/pkg/cmd"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/view"
)

// HelloPage greets the name in its route. The greeting is fetched from
// Shared.GreetingURL if set, and computed locally otherwise; the page is
// ready once it arrives.
type HelloPage struct{ ToastTimeout time.Duration }

// HelloState is the state of the hello page.
type HelloState struct {
	Name     string
	Greeting string
}

// HelloMsg is the message type of the hello page.
type HelloMsg struct {
	Greeting string
	// Err is set when the greeting could not be fetched; Greeting then holds
	// a fallback.
	Err string
}

func (HelloMsg) Tag() string { return "greeted" }

func (HelloPage) Init(r Route, sh Shared) (HelloState, []cmd.Cmd[pageMsg[HelloMsg]]) {
	name := r.(Hello).Name
	return HelloState{Name: name}, []cmd.Cmd[pageMsg[HelloMsg]]{greet(name, sh)}
}

func (p HelloPage) Update(s HelloState, m HelloMsg) (HelloState, []cmd.Cmd[pageMsg[HelloMsg]]) {
	s.Greeting = m.Greeting
	cmds := []cmd.Cmd[pageMsg[HelloMsg]]{cmd.Now(msg.Ready[HelloMsg, Route]())}
	if m.Err != "" {
		cmds = append(cmds, cmd.Now(errorToast[HelloMsg]("cannot fetch greeting: "+m.Err, p.ToastTimeout)))
	}
	return s, cmds
}

func (HelloPage) View(s HelloState, _ msg.Dispatch[HelloMsg, Route]) view.Node {
	if s.Greeting == "" {
		return hint("Thinking of a greeting for " + s.Name + "...")
	}
	return view.Styled(view.Theme.Title, view.Text(s.Greeting))
}

func (HelloPage) Alerts(s HelloState) []page.Alert {
	if s.Greeting == "" {
		return []page.Alert{{Level: msg.Info, Text: "Waiting for a greeting"}}
	}
	return nil
}

func (HelloPage) Breadcrumbs(s HelloState) []page.Breadcrumb[Route] {
	return []page.Breadcrumb[Route]{{Label: "Home", Route: Landing{}}, {Label: s.Name, Route: Hello{s.Name}}}
}

func (HelloPage) ContextualActions(HelloState) []page.Action[Route] {
	return []page.Action[Route]{
		{Key: "h", Label: "Home", Route: Landing{}},
		{Key: "f", Label: "Flag", Route: Flag{}},
	}
}

func (HelloPage) Metadata(s HelloState) page.Metadata {
	return page.Metadata{Title: "Hello " + s.Name}
}

func greet(name string, sh Shared) cmd.Cmd[pageMsg[HelloMsg]] {
	local := fmt.Sprintf("%s, %s!", sh.Greeting, name)
	if sh.GreetingURL != "" {
		req := cmd.Request{URL: sh.GreetingURL + "?name=" + url.QueryEscape(name)}
		return cmd.Fetch(req, func(resp cmd.Response) pageMsg[HelloMsg] {
			g := resp.JSON("greeting")
			switch {
			case resp.Err != nil:
				return greeted(local, resp.Err.Error())
			case !resp.OK():
				return greeted(local, fmt.Sprintf("status %d", resp.Status))
			case !g.Exists():
				return greeted(local, "no greeting in response")
			}
			return greeted(g.String(), "")
		})
	}
	return cmd.Perform("greet", func(ctx context.Context) (string, error) {
		if sh.Latency > 0 {
			t := time.NewTimer(sh.Latency)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return local, nil
	}, func(text string, err error) pageMsg[HelloMsg] {
		if err != nil {
			return greeted(local, err.Error())
		}
		return greeted(text, "")
	})
}

func greeted(text, err string) pageMsg[HelloMsg] {
	return msg.Wrap[HelloMsg, Route](HelloMsg{text, err})
}
