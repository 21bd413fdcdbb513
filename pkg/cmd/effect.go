package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Effect describes a side effect. The set of effects is closed; Executor.Exec
// knows how to perform each of them.
type Effect interface {
	// Kind returns a short name of the effect, used in logs and metrics.
	Kind() string
	isEffect()
}

// Immediate resolves as soon as it is executed.
type Immediate struct{}

// Sleep resolves after Duration.
type Sleep struct{ Duration time.Duration }

// ReadItem reads a key from the store. It resolves to an Item.
type ReadItem struct{ Key string }

// WriteItem writes a key to the store. It resolves to an error or nil.
type WriteItem struct{ Key, Value string }

// Call runs Fn. It resolves to a CallResult. Fn is only called by the
// executor.
type Call struct {
	Name string
	Fn   func(context.Context) (any, error)
}

// Request performs an HTTP request. It resolves to a Response.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HistoryChange records a navigation in the history. It resolves to an error
// or nil.
type HistoryChange struct {
	URL     string
	Replace bool
}

func (Immediate) isEffect()     {}
func (Sleep) isEffect()         {}
func (ReadItem) isEffect()      {}
func (WriteItem) isEffect()     {}
func (Call) isEffect()          {}
func (Request) isEffect()       {}
func (HistoryChange) isEffect() {}

func (Immediate) Kind() string     { return "now" }
func (Sleep) Kind() string         { return "delay" }
func (ReadItem) Kind() string      { return "getItem" }
func (WriteItem) Kind() string     { return "setItem" }
func (Call) Kind() string          { return "call" }
func (Request) Kind() string       { return "fetch" }
func (HistoryChange) Kind() string { return "navigate" }

// Item is the result of ReadItem.
type Item struct {
	Value string
	Found bool
	Err   error
}

// CallResult is the result of Call.
type CallResult struct {
	Value any
	Err   error
}

// Response is the result of Request. Err is set when the request could not be
// performed or its body exceeded the limit; non-2xx statuses are not errors.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

// OK reports whether the request succeeded with a 2xx status.
func (r Response) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// JSON extracts a value from a JSON body with a gjson path, such as
// "user.name" or "items.#".
func (r Response) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}
