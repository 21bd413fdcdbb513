package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"loam.dev/pkg/msg"
	"loam.dev/pkg/page"
)

const helpText = `Commands:
  go <url>       navigate to url
  replace <url>  navigate to url, replacing the current history entry
  back           go back in history
  reload         initialize the current page again
  toast <text>   show a toast
  actions        list the actions of the current page
  history        show the history
  state          print the root state as JSON
  stats          print loop statistics
  help           show this help
  quit           end the session
An action is run by typing its key. An empty line redraws the view.
`

// Reads commands until the input ends, quit is read or ctx is done. The
// reading goroutine can't be interrupted; it ends with the input.
func (s *session[R, Sh]) readCommands(ctx context.Context, in *os.File) error {
	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	s.settle(ctx)
	s.scr.flush()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return scanErr
			}
			if s.exec(line) {
				return nil
			}
			s.settle(ctx)
			s.scr.flush()
		}
	}
}

// Executes one command and reports whether the session should end.
func (s *session[R, Sh]) exec(line string) (quit bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	logger.Debug().Str("command", name).Str("arg", arg).Msg("exec")

	switch name {
	case "":
		s.scr.invalidate()
	case "quit", "exit":
		return true
	case "help":
		s.scr.printf("%s", helpText)
	case "go", "replace":
		if arg == "" {
			s.errorf("usage: %s <url>", name)
			break
		}
		if name == "go" {
			s.dispatch(msg.PushURL[page.AppMsg, R](arg))
		} else {
			s.dispatch(msg.ReplaceURLMsg[page.AppMsg, R](arg))
		}
	case "back":
		url, err := s.history.Back()
		if err != nil {
			s.errorf("cannot go back: %v", err)
			break
		}
		s.dispatch(msg.Incoming[page.AppMsg](s.cfg.App.Router().Match(url)))
	case "reload":
		s.dispatch(msg.ReloadPage[page.AppMsg, R]())
	case "toast":
		s.dispatch(msg.ShowToastMsg[page.AppMsg, R](
			msg.Toast{Level: msg.Info, Text: arg, Timeout: s.cfg.ToastTimeout}))
	case "actions":
		for _, a := range s.cfg.App.ContextualActions(s.m.State()) {
			s.scr.printf("  %s  %s\n", a.Key, a.Label)
		}
	case "history":
		entries := s.history.Entries()
		for i, e := range entries {
			marker := " "
			if i == len(entries)-1 {
				marker = "*"
			}
			s.scr.printf("%s %s\n", marker, e)
		}
	case "state":
		b, err := json.MarshalIndent(s.m.State(), "", "  ")
		if err != nil {
			s.errorf("cannot encode state: %v", err)
			break
		}
		s.scr.printf("%s\n", b)
	case "stats":
		st := s.m.Snapshot()
		s.scr.printf("processed %d, queued %d, in flight %d\n", st.Processed, st.Queued, st.InFlight)
	default:
		if arg == "" {
			for _, a := range s.cfg.App.ContextualActions(s.m.State()) {
				if a.Key == name {
					s.dispatch(msg.Push[page.AppMsg](a.Route))
					return false
				}
			}
		}
		s.errorf("unknown command %q; try help", name)
	}
	return false
}

func (s *session[R, Sh]) errorf(format string, args ...any) {
	fmt.Fprintf(s.stderr, format+"\n", args...)
}
