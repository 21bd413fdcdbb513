//go:build unix

package shell

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"golang.org/x/sys/unix"
)

func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, unix.SIGHUP, unix.SIGINT, unix.SIGTERM, unix.SIGUSR1)
}

// Handles a signal and reports whether the session should end. SIGUSR1 dumps
// the stacks of all goroutines.
func handleSignal(sig os.Signal, stderr io.Writer) (quit bool) {
	if sig == unix.SIGUSR1 {
		fmt.Fprint(stderr, dumpStack())
		return false
	}
	return true
}

func dumpStack() string {
	buf := make([]byte, 1<<20)
	return string(buf[:runtime.Stack(buf, true)])
}
