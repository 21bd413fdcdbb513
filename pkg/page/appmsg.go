package page

import (
	"fmt"

	"github.com/google/uuid"
	"loam.dev/pkg/msg"
)

// Gen identifies one initialization of a page. A page gets a new generation
// every time it is initialized; messages carrying an older generation are
// stale and are dropped.
type Gen = uuid.UUID

// AppMsg is the inner message type of an App. The set of variants is closed.
type AppMsg interface {
	Tag() string
	isAppMsg()
}

// Msg is the message type processed by an App's update loop.
type Msg[R Route] = msg.Msg[AppMsg, R]

// ToPage carries a message of the page with key Key, initialized as
// generation Gen.
type ToPage struct {
	Key string
	Gen Gen
	Msg any
}

// PageReadyFor is the ready signal of a page, scoped to the page and
// generation that sent it.
type PageReadyFor struct {
	Key string
	Gen Gen
}

// DismissToast removes a toast.
type DismissToast struct{ ID string }

// Resize reports a new size of the viewport. It is dispatched by the host.
type Resize struct{ Width, Height int }

func (ToPage) isAppMsg()       {}
func (PageReadyFor) isAppMsg() {}
func (DismissToast) isAppMsg() {}
func (Resize) isAppMsg()       {}

func (m ToPage) Tag() string {
	if t, ok := m.Msg.(msg.Tagger); ok {
		return fmt.Sprintf("%s/%s", m.Key, t.Tag())
	}
	return fmt.Sprintf("%s/%T", m.Key, m.Msg)
}

func (PageReadyFor) Tag() string { return "@pageReady" }
func (DismissToast) Tag() string { return "dismissToast" }
func (Resize) Tag() string       { return "resize" }

// ToApp returns a message for the App.
func ToApp[R Route](m AppMsg) Msg[R] { return msg.Wrap[AppMsg, R](m) }
