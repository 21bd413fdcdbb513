package prog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"loam.dev/pkg/must"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantExit   int
		wantStderr string
	}{
		{"nil", nil, 0, ""},
		{"bad usage", BadUsage("lorem ipsum"), 2, "lorem ipsum\nusage\n"},
		{"wrapped bad usage", fmt.Errorf("run: %w", BadUsage("x")), 2, "run: x\nusage\n"},
		{"exit", Exit(3), 3, ""},
		{"exit 0", Exit(0), 0, ""},
		{"other error", errors.New("boom"), 2, "boom\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, w := must.OK2(os.Pipe())
			exit := exitCode(w, test.err, func() string { return "usage\n" })
			w.Close()
			stderr := string(must.OK1(io.ReadAll(r)))
			if exit != test.wantExit {
				t.Errorf("exit = %d, want %d", exit, test.wantExit)
			}
			if stderr != test.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr, test.wantStderr)
			}
		})
	}
}
