// Package sys provides terminal utilities with the same API across OSes.
package sys

import (
	"os"

	"github.com/mattn/go-isatty"
)

// WinSize queries the size of the terminal referenced by the given file. It
// returns -1, -1 if the file is not a terminal.
func WinSize(file *os.File) (row, col int) { return winSize(file) }

// IsATTY determines whether the given file is a terminal.
func IsATTY(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NotifyResize arranges for a value to be sent on ch when the terminal is
// resized. It returns a function that stops the notifications. On systems
// without resize signals, nothing is ever sent.
func NotifyResize(ch chan<- os.Signal) (stop func()) { return notifyResize(ch) }
