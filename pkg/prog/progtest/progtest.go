// Package progtest provides a framework for testing the loam command line.
//
// A test is a list of cases, each built from ThatLoam and refined with
// methods that describe the expected behavior:
//
//	progtest.Test(t,
//		ThatLoam("version").WritesStdoutContaining("0."),
//		ThatLoam("bad").ExitsWith(2).WritesStderrContaining("unknown command"),
//	)
//
// Unless described otherwise, a case is expected to exit with 0 and write
// nothing to stdout or stderr.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"loam.dev/pkg/must"
	"loam.dev/pkg/prog"
)

// Case is a test case.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit           int
	stdout, stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) matches(s string) bool {
	if o.partial {
		return strings.Contains(s, o.content)
	}
	return s == o.content
}

// ThatLoam returns a Case running loam with the given arguments.
func ThatLoam(args ...string) Case {
	return Case{args: append([]string{"loam"}, args...)}
}

// WithStdin returns an altered Case that feeds s to stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c unchanged. It is useful for marking cases that are
// expected to exit with 0 without writing anything.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that expects the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that expects exactly s on stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{s, false}
	return c
}

// WritesStdoutContaining returns an altered Case that expects stdout to
// contain s.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{s, true}
	return c
}

// WritesStderr returns an altered Case that expects exactly s on stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{s, false}
	return c
}

// WritesStderrContaining returns an altered Case that expects stderr to
// contain s.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{s, true}
	return c
}

// Test runs the cases.
func Test(t *testing.T, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(c.args, c.stdin)
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			if !c.want.stdout.matches(stdout) {
				t.Errorf("got stdout %q, want %s", stdout, describe(c.want.stdout))
			}
			if !c.want.stderr.matches(stderr) {
				t.Errorf("got stderr %q, want %s", stderr, describe(c.want.stderr))
			}
		})
	}
}

func describe(o output) string {
	if o.partial {
		return "containing " + quote(o.content)
	}
	return quote(o.content)
}

func quote(s string) string { return "\"" + strings.ReplaceAll(s, "\n", "\\n") + "\"" }

// Run runs prog.Run with args, feeding it stdin, and returns its exit code and
// output.
func Run(args []string, stdin string) (exit int, stdout, stderr string) {
	r0, w0 := must.OK2(os.Pipe())
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())
	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	outCh, errCh := readAll(r1), readAll(r2)

	exit = prog.Run([3]*os.File{r0, w1, w2}, args)
	w1.Close()
	w2.Close()
	r0.Close()
	return exit, <-outCh, <-errCh
}

// Output is read as it is written, so that a program writing more than a pipe
// can buffer doesn't deadlock.
func readAll(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer r.Close()
		ch <- string(must.OK1(io.ReadAll(r)))
	}()
	return ch
}
