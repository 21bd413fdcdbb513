// Package loop implements the state manager: the loop that owns the root
// state, runs update for one message at a time and executes the commands
// update returns.
//
// The loop is serial. Update and View are only ever called from the loop's
// own goroutine, one message to completion before the next one, so a View
// that dispatches in response to a state change never re-enters Update; the
// message is queued behind the one being processed. Commands run on their own
// goroutines and re-enter the loop through Dispatch like any other message.
package loop

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"loam.dev/pkg/cmd"
	"loam.dev/pkg/immutable"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/metrics"
)

var logger = logutil.GetLogger("[loop] ")

// Errors reported by the Manager.
var (
	ErrCrashed = errors.New("update loop crashed")
	ErrStopped = errors.New("update loop stopped")
)

// Program is the application run by the loop.
type Program[S, M any] struct {
	// Init builds the initial state and commands.
	Init func() (immutable.Value[S], []cmd.Cmd[M])
	// Update computes the next state from the current one and a message. It
	// must be synchronous and must not mutate the current state.
	Update func(immutable.Value[S], M) (immutable.Value[S], []cmd.Cmd[M])
	// View is called with every committed state. It may hold on to the
	// dispatch function, and may call it synchronously.
	View func(S, func(M))
	// Tag names a message in logs and metrics. If nil, messages with a Tag
	// method are named by it and other messages by their type.
	Tag func(M) string
}

// Options configures a Manager.
type Options struct {
	// Executor performs the commands. If nil, an Executor with no store and
	// no history is used.
	Executor *cmd.Executor
	// Debug enables logging of every message. It has no effect on how
	// messages are processed.
	Debug bool
	// OnCrash is called once, from the goroutine that crashed, when Update,
	// View or a command projection panics.
	OnCrash func(error)
}

// Stats is a snapshot of the Manager's activity.
type Stats struct {
	Processed uint64
	Queued    int
	InFlight  int
	Crashed   bool
	Stopped   bool
}

// Manager runs a Program.
type Manager[S, M any] struct {
	p    Program[S, M]
	ex   *cmd.Executor
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	stateMu sync.RWMutex
	state   immutable.Value[S]

	mu    sync.Mutex
	queue []M
	// Number of queued messages, plus the one being processed, plus commands
	// in flight. The loop is idle when it is zero.
	busy int
	// Open while busy > 0.
	idle     chan struct{}
	crashErr error
	wake     chan struct{}

	processed atomic.Uint64
	inFlight  atomic.Int64
}

// Start runs the program's Init, renders the initial state and starts the
// loop. The loop runs until ctx is canceled, Stop is called or the program
// crashes. An error is returned if Init panics or the program is incomplete.
func Start[S, M any](ctx context.Context, p Program[S, M], opts Options) (*Manager[S, M], error) {
	if p.Init == nil || p.Update == nil || p.View == nil {
		return nil, errors.New("program needs Init, Update and View")
	}
	ex := opts.Executor
	if ex == nil {
		ex = &cmd.Executor{}
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Manager[S, M]{
		p: p, ex: ex, opts: opts,
		ctx: ctx, cancel: cancel, done: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}

	var cmds []cmd.Cmd[M]
	err := catch(func() {
		var state immutable.Value[S]
		state, cmds = p.Init()
		m.state = state
		p.View(state.Get(), m.Dispatch)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	m.schedule(cmds)
	go m.run()
	logger.Debug().Bool("debug", opts.Debug).Msg("started")
	return m, nil
}

// Dispatch enqueues a message. It never blocks and may be called from any
// goroutine, including from View. Messages dispatched after the loop has
// stopped are dropped.
func (m *Manager[S, M]) Dispatch(msg M) {
	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		logger.Debug().Str("msg", m.tag(msg)).Msg("dropped after stop")
		return
	}
	m.queue = append(m.queue, msg)
	m.addBusyLocked(1)
	metrics.SetQueueDepth(len(m.queue))
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Value returns the current root state.
func (m *Manager[S, M]) Value() immutable.Value[S] {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// State returns the value held by the current root state.
func (m *Manager[S, M]) State() S { return m.Value().Get() }

// Snapshot returns statistics about the Manager.
func (m *Manager[S, M]) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Processed: m.processed.Load(),
		Queued:    len(m.queue),
		InFlight:  int(m.inFlight.Load()),
		Crashed:   m.crashErr != nil,
		Stopped:   m.ctx.Err() != nil,
	}
}

// WaitIdle waits until no message is queued or being processed and no
// command is in flight. It returns early with an error if ctx is done or the
// loop stops.
func (m *Manager[S, M]) WaitIdle(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()
	if idle == nil {
		return m.stopErr()
	}
	select {
	case <-idle:
		return m.stopErr()
	case <-m.done:
		return m.stopErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the loop. Commands in flight see their context canceled and
// their results are dropped. It does not wait for the loop to exit.
func (m *Manager[S, M]) Stop() { m.cancel() }

// Wait waits for the loop to exit, and returns the crash error if it exited
// because of a crash.
func (m *Manager[S, M]) Wait() error {
	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crashErr
}

func (m *Manager[S, M]) stopErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.crashErr != nil {
		return m.crashErr
	}
	if m.ctx.Err() != nil {
		return ErrStopped
	}
	return nil
}

func (m *Manager[S, M]) run() {
	defer close(m.done)
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.wake:
		}
		for {
			msg, ok := m.pop()
			if !ok {
				break
			}
			if err := m.process(msg); err != nil {
				m.crash(err)
				return
			}
			m.addBusy(-1)
			if m.ctx.Err() != nil {
				return
			}
		}
	}
}

func (m *Manager[S, M]) pop() (M, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		var zero M
		return zero, false
	}
	msg := m.queue[0]
	var zero M
	m.queue[0] = zero
	m.queue = m.queue[1:]
	metrics.SetQueueDepth(len(m.queue))
	return msg, true
}

func (m *Manager[S, M]) process(msg M) error {
	start := time.Now()
	tag := m.tag(msg)
	if m.opts.Debug {
		logger.Debug().Str("msg", tag).Msg("update")
	}
	prev := m.Value()
	var (
		next immutable.Value[S]
		cmds []cmd.Cmd[M]
	)
	if err := catch(func() { next, cmds = m.p.Update(prev, msg) }); err != nil {
		return fmt.Errorf("processing %s: %w", tag, err)
	}
	m.commit(next)
	if err := catch(func() { m.p.View(next.Get(), m.Dispatch) }); err != nil {
		// The state that could not be viewed is taken back.
		m.commit(prev)
		return fmt.Errorf("processing %s: %w", tag, err)
	}
	m.processed.Add(1)
	metrics.ObserveMessage(tag, time.Since(start))
	m.schedule(cmds)
	return nil
}

func (m *Manager[S, M]) commit(v immutable.Value[S]) {
	m.stateMu.Lock()
	m.state = v
	m.stateMu.Unlock()
}

// schedule starts commands in order, each on its own goroutine.
func (m *Manager[S, M]) schedule(cmds []cmd.Cmd[M]) {
	for _, c := range cmds {
		if m.opts.Debug {
			logger.Debug().Str("effect", c.Effect().Kind()).Msg("run command")
		}
		m.addBusy(1)
		m.inFlight.Add(1)
		metrics.AddInFlight(1)
		go m.runCmd(c)
	}
}

func (m *Manager[S, M]) runCmd(c cmd.Cmd[M]) {
	defer func() {
		m.inFlight.Add(-1)
		metrics.AddInFlight(-1)
		m.addBusy(-1)
	}()
	var msg M
	err := catch(func() { msg = c.Run(m.ctx, m.ex) })
	if err != nil {
		m.crash(fmt.Errorf("command %s: %w", c.Effect().Kind(), err))
		return
	}
	if m.ctx.Err() != nil {
		return
	}
	m.Dispatch(msg)
}

func (m *Manager[S, M]) crash(err error) {
	m.mu.Lock()
	if m.crashErr != nil {
		m.mu.Unlock()
		return
	}
	m.crashErr = err
	m.mu.Unlock()
	m.cancel()

	metrics.Crash()
	logger.Error().Err(err).Msg("crashed")
	if m.opts.OnCrash != nil {
		m.opts.OnCrash(err)
	}
}

func (m *Manager[S, M]) addBusy(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addBusyLocked(delta)
}

func (m *Manager[S, M]) addBusyLocked(delta int) {
	if m.busy == 0 && delta > 0 {
		m.idle = make(chan struct{})
	}
	m.busy += delta
	if m.busy == 0 && m.idle != nil {
		close(m.idle)
		m.idle = nil
	}
}

func (m *Manager[S, M]) tag(msg M) string {
	if m.p.Tag != nil {
		return m.p.Tag(msg)
	}
	if t, ok := any(msg).(interface{ Tag() string }); ok {
		return t.Tag()
	}
	return fmt.Sprintf("%T", msg)
}

// catch calls f, converting a panic into an error wrapping ErrCrashed.
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCrashed, r)
			logger.Error().Str("stack", string(debug.Stack())).Msg("panic")
		}
	}()
	f()
	return nil
}
