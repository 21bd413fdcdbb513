// Package logutil provides logging utilities.
//
// All loggers share one output, which discards everything until SetOutput or
// SetOutputFile is called. Packages keep a logger in a package-level
// variable:
//
//	var logger = logutil.GetLogger("[loop] ")
package logutil

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var out = &switchWriter{w: io.Discard}

// GetLogger gets a logger with a prefix. The prefix is recorded in the
// "component" field, stripped of brackets and spaces.
func GetLogger(prefix string) *zerolog.Logger {
	component := strings.Trim(prefix, "[] ")
	logger := zerolog.New(out).With().Timestamp().Str("component", component).Logger()
	return &logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newout io.Writer) {
	out.set(newout, nil)
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file. If the old output was a file opened by SetOutputFile, it is
// closed. The new file is truncated. SetOutputFile("") is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	out.set(file, file)
	return nil
}

// SetDebug switches the global level between debug and info.
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
	// Closes w when it is replaced; nil if w is not owned.
	closer io.Closer
}

// set replaces the writer and closes the old one if it was owned.
func (sw *switchWriter) set(w io.Writer, closer io.Closer) {
	sw.mu.Lock()
	old := sw.closer
	sw.w, sw.closer = w, closer
	sw.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (sw *switchWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}
