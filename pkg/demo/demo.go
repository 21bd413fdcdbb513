// Package demo is a small application built on the page runtime. It is run by
// "loam run" and exercised by end-to-end tests.
//
// It has four pages:
//
//   - landing, ready as soon as it is shown;
//   - hello, which fetches or computes a greeting asynchronously and signals
//     readiness when it arrives;
//   - flag, which writes and reads a value in the store;
//   - not found, shown for every unknown path.
package demo

import (
	"time"

	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/view"
)

// Shared is the state shared by all pages.
type Shared struct {
	// Greeting is the word used to greet.
	Greeting string
	// GreetingURL, if not empty, is fetched with a name query parameter and
	// is expected to return a JSON object with a greeting field.
	GreetingURL string
	// Latency delays greetings computed locally.
	Latency time.Duration
	// ToastTimeout is how long error toasts stay; zero keeps them until
	// dismissed.
	ToastTimeout time.Duration
}

// StoreKey is the store key of the flag.
const StoreKey = "demo.flag"

// Msg is a message of the demo app.
type Msg = page.Msg[Route]

// State is the root state of the demo app.
type State = page.State[Route, Shared]

// App is the demo app.
type App = page.App[Route, Shared]

type pageMsg[M any] = msg.Msg[M, Route]

// New builds the demo app.
func New(shared Shared) (*App, error) {
	return page.NewApp(page.Config[Route, Shared]{
		Router: Router,
		Shared: shared,
		Pages: []page.Entry[Route, Shared]{
			page.Register[LandingState, LandingMsg, Route, Shared](LandingKey, LandingPage{}),
			page.Register[HelloState, HelloMsg, Route, Shared](HelloKey, HelloPage{shared.ToastTimeout}),
			page.Register[FlagState, FlagMsg, Route, Shared](FlagKey, FlagPage{shared.ToastTimeout}),
			page.Register[NotFoundState, struct{}, Route, Shared](NotFoundKey, NotFoundPage{}),
		},
	})
}

// Navigate returns the message that navigates to a URL with a new history
// entry.
func Navigate(url string) Msg { return msg.PushURL[page.AppMsg, Route](url) }

func errorToast[M any](text string, timeout time.Duration) pageMsg[M] {
	return msg.ShowToastMsg[M, Route](msg.Toast{Level: msg.Error, Text: text, Timeout: timeout})
}

func hint(s string) view.Node { return view.Styled(view.Theme.Muted, view.Text(s)) }
