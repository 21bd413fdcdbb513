// Package msg defines the messages processed by the update loop.
//
// A Msg[I, R] is either an Inner message carrying a component-local value of
// type I, or one of a fixed set of cross-cutting variants owned by the
// runtime: route changes, URL changes, the ready signal, reload, toasts and
// the no-op. The set is closed: Msg has an unexported method, so no other
// package can add variants. Code that needs to handle every variant does so
// through Match, which takes a Cases value; a Cases implementation that
// misses a variant does not compile.
package msg

import (
	"fmt"
	"time"
)

// Msg is a message with inner payload type I and route type R.
type Msg[I, R any] interface {
	// Tag returns the tag of the message, such as "@pageReady".
	Tag() string
	isMsg()
}

// Tagger may be implemented by inner message types to give Inner a more
// informative tag for logging and metrics.
type Tagger interface {
	Tag() string
}

// Inner carries a component-local message.
type Inner[I, R any] struct{ Value I }

// IncomingRoute reports a route change that has already happened outside the
// runtime, such as the user going back in history.
type IncomingRoute[I, R any] struct{ Route R }

// NewRoute requests navigation to a route, adding a history entry.
type NewRoute[I, R any] struct{ Route R }

// ReplaceRoute requests navigation to a route, replacing the current history
// entry.
type ReplaceRoute[I, R any] struct{ Route R }

// NewURL requests navigation to a raw URL, adding a history entry.
type NewURL[I, R any] struct{ URL string }

// ReplaceURL requests navigation to a raw URL, replacing the current history
// entry.
type ReplaceURL[I, R any] struct{ URL string }

// PageReady signals that a page has finished its asynchronous initialization.
type PageReady[I, R any] struct{}

// Reload requests the active page to be initialized again.
type Reload[I, R any] struct{}

// ShowToast requests a toast to be shown.
type ShowToast[I, R any] struct{ Toast Toast }

// Noop does nothing.
type Noop[I, R any] struct{}

func (Inner[I, R]) isMsg()         {}
func (IncomingRoute[I, R]) isMsg() {}
func (NewRoute[I, R]) isMsg()      {}
func (ReplaceRoute[I, R]) isMsg()  {}
func (NewURL[I, R]) isMsg()        {}
func (ReplaceURL[I, R]) isMsg()    {}
func (PageReady[I, R]) isMsg()     {}
func (Reload[I, R]) isMsg()        {}
func (ShowToast[I, R]) isMsg()     {}
func (Noop[I, R]) isMsg()          {}

func (m Inner[I, R]) Tag() string {
	if t, ok := any(m.Value).(Tagger); ok {
		return t.Tag()
	}
	return "inner"
}

func (IncomingRoute[I, R]) Tag() string { return "@incomingRoute" }
func (NewRoute[I, R]) Tag() string      { return "@newRoute" }
func (ReplaceRoute[I, R]) Tag() string  { return "@replaceRoute" }
func (NewURL[I, R]) Tag() string        { return "@newUrl" }
func (ReplaceURL[I, R]) Tag() string    { return "@replaceUrl" }
func (PageReady[I, R]) Tag() string     { return "@pageReady" }
func (Reload[I, R]) Tag() string        { return "@reload" }
func (ShowToast[I, R]) Tag() string     { return "@showToast" }
func (Noop[I, R]) Tag() string          { return "noop" }

// Level is the severity of a Toast.
type Level uint8

const (
	Info Level = iota
	Success
	Warning
	Error
)

var levelNames = [...]string{"info", "success", "warning", "error"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", l)
}

// Toast is a transient notification. A zero Timeout means the toast stays
// until dismissed. An empty ID is filled in by the app when shown.
type Toast struct {
	ID      string
	Level   Level
	Text    string
	Timeout time.Duration
}
