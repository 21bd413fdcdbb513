// Package cmd implements commands: side effects described as data.
//
// A Cmd[M] pairs an Effect with a projection from the effect's result to a
// message of type M. Building a Cmd never performs the effect; an Executor
// does that when the update loop runs the command, and the projected message
// is dispatched back into the loop.
//
// Effect failures are never panics or returned errors: they are part of the
// result (Item.Err, Response.Err, the error argument of projections), so that
// update handles them like any other data.
package cmd

import (
	"context"
	"time"
)

// Cmd is a command producing a message of type M.
type Cmd[M any] struct {
	effect  Effect
	project func(any) M
}

// Effect returns the effect described by c.
func (c Cmd[M]) Effect() Effect { return c.effect }

// Project maps a result of c's effect to a message. The result must have the
// type documented for the effect.
func (c Cmd[M]) Project(result any) M { return c.project(result) }

// Run performs c's effect with ex and projects the result.
func (c Cmd[M]) Run(ctx context.Context, ex *Executor) M {
	return c.project(ex.Exec(ctx, c.effect))
}

// Now returns a command that produces m as soon as it is run.
func Now[M any](m M) Cmd[M] {
	return Cmd[M]{Immediate{}, func(any) M { return m }}
}

// Delay returns a command that produces m after d.
func Delay[M any](d time.Duration, m M) Cmd[M] {
	return Cmd[M]{Sleep{d}, func(any) M { return m }}
}

// GetItem returns a command that reads key from the store.
func GetItem[M any](key string, f func(Item) M) Cmd[M] {
	return Cmd[M]{ReadItem{key}, func(r any) M {
		item, _ := r.(Item)
		return f(item)
	}}
}

// SetItem returns a command that writes value under key in the store.
func SetItem[M any](key, value string, f func(error) M) Cmd[M] {
	return Cmd[M]{WriteItem{key, value}, projectErr(f)}
}

// Perform returns a command that calls fn. The name identifies the call in
// logs and metrics.
func Perform[A, M any](name string, fn func(context.Context) (A, error), f func(A, error) M) Cmd[M] {
	call := Call{name, func(ctx context.Context) (any, error) { return fn(ctx) }}
	return Cmd[M]{call, func(r any) M {
		cr, _ := r.(CallResult)
		a, _ := cr.Value.(A)
		return f(a, cr.Err)
	}}
}

// Fetch returns a command that performs an HTTP request.
func Fetch[M any](req Request, f func(Response) M) Cmd[M] {
	return Cmd[M]{req, func(r any) M {
		resp, _ := r.(Response)
		return f(resp)
	}}
}

// Navigate returns a command that records url in the history, either as a
// new entry or replacing the current one.
func Navigate[M any](url string, replace bool, f func(error) M) Cmd[M] {
	return Cmd[M]{HistoryChange{url, replace}, projectErr(f)}
}

func projectErr[M any](f func(error) M) func(any) M {
	return func(r any) M {
		err, _ := r.(error)
		return f(err)
	}
}

// Map re-tags the message produced by c with f.
func Map[A, B any](c Cmd[A], f func(A) B) Cmd[B] {
	return Cmd[B]{c.effect, func(r any) B { return f(c.project(r)) }}
}

// MapMany applies Map to every command in cs.
func MapMany[A, B any](cs []Cmd[A], f func(A) B) []Cmd[B] {
	if cs == nil {
		return nil
	}
	mapped := make([]Cmd[B], len(cs))
	for i, c := range cs {
		mapped[i] = Map(c, f)
	}
	return mapped
}

// Batch concatenates several lists of commands, keeping their order.
func Batch[M any](lists ...[]Cmd[M]) []Cmd[M] {
	var all []Cmd[M]
	for _, cs := range lists {
		all = append(all, cs...)
	}
	return all
}

// None is an empty list of commands, for readability at return sites.
func None[M any]() []Cmd[M] { return nil }
