// Package shell hosts an application in a terminal.
//
// The host reads commands from its input, one per line, turns them into
// messages for the application and draws the view after the application has
// settled. When the output is a terminal, the view is redrawn in place
// whenever a new state is committed, and the viewport follows the terminal
// size.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/debug"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/loop"
	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
	"loam.dev/pkg/router"
	"loam.dev/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// ErrNoApp is returned by Run when Config.App is nil.
var ErrNoApp = errors.New("no app to run")

const (
	defaultWidth  = 80
	defaultHeight = 24
	defaultSettle = time.Second
)

// Config configures a shell session.
type Config[R page.Route, Sh any] struct {
	App *page.App[R, Sh]
	// StartURL is the URL of the first page; "/" if empty.
	StartURL string
	// Executor performs the commands of the app. Its History is replaced by
	// the history of the session.
	Executor cmd.Executor
	// Debug turns on message logging in the loop, and the inspector if
	// Inspector is not empty.
	Debug     bool
	Inspector string
	// Settle bounds how long a command waits for the app to become idle
	// before the view is drawn. Zero means one second.
	Settle time.Duration
	// ToastTimeout is the timeout of toasts shown with the toast command.
	ToastTimeout time.Duration
}

type session[R page.Route, Sh any] struct {
	cfg     Config[R, Sh]
	m       *loop.Manager[page.State[R, Sh], page.Msg[R]]
	history *router.MemHistory
	scr     *screen
	stderr  *os.File
}

// Run runs a session on the given stdin, stdout and stderr until the input
// ends, the quit command is read, a terminating signal arrives or ctx is
// done. It returns an error if the app crashes.
func Run[R page.Route, Sh any](ctx context.Context, fds [3]*os.File, cfg Config[R, Sh]) error {
	if cfg.App == nil {
		return ErrNoApp
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "/"
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettle
	}
	history := router.NewMemHistory(cfg.StartURL)
	ex := cfg.Executor
	ex.History = history

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scr := newScreen(fds[1], sys.IsATTY(fds[1]))
	m, err := loop.Start(ctx, cfg.App.Program(cfg.StartURL, scr.show), loop.Options{
		Executor: &ex,
		Debug:    cfg.Debug,
		OnCrash: func(err error) {
			fmt.Fprintln(fds[2], "Application crashed:", err)
		},
	})
	if err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	s := &session[R, Sh]{cfg, m, history, scr, fds[2]}
	s.resize()
	logger.Info().Str("url", cfg.StartURL).Bool("tty", scr.tty).Msg("session started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return scr.run(gctx) })
	g.Go(func() error {
		s.watchResize(gctx)
		return nil
	})
	g.Go(func() error {
		s.watchSignals(gctx, cancel)
		return nil
	})
	if cfg.Debug && cfg.Inspector != "" {
		g.Go(func() error {
			target := debug.Inspect(m, func(url string) page.Msg[R] {
				return msg.PushURL[page.AppMsg, R](url)
			})
			if err := debug.Serve(gctx, cfg.Inspector, debug.NewHandler(target)); err != nil {
				fmt.Fprintln(fds[2], "Warning: inspector not available:", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return s.readCommands(gctx, fds[0])
	})
	g.Go(func() error {
		err := m.Wait()
		cancel()
		return err
	})

	err = g.Wait()
	scr.flush()
	logger.Info().Err(err).Msg("session ended")
	return err
}

func (s *session[R, Sh]) dispatch(m page.Msg[R]) { s.m.Dispatch(m) }

// Waits for the app to become idle, but no longer than the settle time.
func (s *session[R, Sh]) settle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Settle)
	defer cancel()
	if err := s.m.WaitIdle(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Debug().Err(err).Msg("settle")
	}
}

func (s *session[R, Sh]) resize() {
	rows, cols := sys.WinSize(s.scr.out)
	if rows <= 0 || cols <= 0 {
		rows, cols = defaultHeight, defaultWidth
	}
	s.scr.resize(cols)
	s.dispatch(page.ToApp[R](page.Resize{Width: cols, Height: rows}))
}

func (s *session[R, Sh]) watchResize(ctx context.Context) {
	if !s.scr.tty {
		return
	}
	ch := make(chan os.Signal, 1)
	stop := sys.NotifyResize(ch)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			s.resize()
		}
	}
}

func (s *session[R, Sh]) watchSignals(ctx context.Context, quit func()) {
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			logger.Info().Str("signal", sig.String()).Msg("signal")
			if handleSignal(sig, s.stderr) {
				quit()
				return
			}
		}
	}
}
