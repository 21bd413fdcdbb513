package shell

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"loam.dev/pkg/view"
)

const (
	clearScreen = "\033[H\033[2J"
	prompt      = "> "
)

// screen draws the latest view. Drawing happens on flush; show and resize
// only record what to draw and wake up run.
type screen struct {
	out *os.File
	tty bool

	mu      sync.Mutex
	node    view.Node
	width   int
	version uint64
	drawn   uint64

	dirty chan struct{}
}

func newScreen(out *os.File, tty bool) *screen {
	return &screen{out: out, tty: tty, width: defaultWidth, dirty: make(chan struct{}, 1)}
}

func (s *screen) show(n view.Node) {
	s.mu.Lock()
	s.node = n
	s.version++
	s.mu.Unlock()
	s.wake()
}

func (s *screen) resize(width int) {
	s.mu.Lock()
	s.width = width
	s.version++
	s.mu.Unlock()
	s.wake()
}

// Forces the next flush to draw even if nothing has changed.
func (s *screen) invalidate() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

func (s *screen) wake() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Redraws on every change. Only terminals are redrawn in the background;
// other outputs get one frame per command.
func (s *screen) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.dirty:
			if s.tty {
				s.flush()
			}
		}
	}
}

func (s *screen) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.node == nil || s.drawn == s.version {
		return
	}
	s.drawn = s.version
	var sb strings.Builder
	if s.tty {
		sb.WriteString(clearScreen)
	}
	sb.WriteString(s.node.Render(s.width))
	sb.WriteString("\n")
	if s.tty {
		sb.WriteString(prompt)
	} else {
		sb.WriteString("\n")
	}
	if _, err := s.out.WriteString(sb.String()); err != nil {
		logger.Warn().Err(err).Msg("cannot draw")
	}
}

func (s *screen) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
