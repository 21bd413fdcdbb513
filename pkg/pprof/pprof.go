// Package pprof writes the profiles requested on the command line.
package pprof

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
)

// Profiles names the files to write profiles to. Empty names are skipped.
type Profiles struct {
	CPU    string
	Allocs string
}

// Start starts CPU profiling and returns a function that stops it and writes
// the memory allocation profile. A profile that can't be started is reported
// on stderr and the program continues without it.
func (p Profiles) Start(stderr io.Writer) (stop func()) {
	var cleanups []func()
	if p.CPU != "" {
		f, err := os.Create(p.CPU)
		if err == nil {
			err = pprof.StartCPUProfile(f)
			if err != nil {
				f.Close()
			}
		}
		if err != nil {
			fmt.Fprintln(stderr, "Warning: cannot create CPU profile:", err)
			fmt.Fprintln(stderr, "Continuing without CPU profiling.")
		} else {
			cleanups = append(cleanups, func() {
				pprof.StopCPUProfile()
				f.Close()
			})
		}
	}
	if p.Allocs != "" {
		f, err := os.Create(p.Allocs)
		if err != nil {
			fmt.Fprintln(stderr, "Warning: cannot create memory allocation profile:", err)
			fmt.Fprintln(stderr, "Continuing without memory allocation profiling.")
		} else {
			cleanups = append(cleanups, func() {
				pprof.Lookup("allocs").WriteTo(f, 0)
				f.Close()
			})
		}
	}
	return func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}
}
