// Loam runs effect-driven applications in the terminal. "loam run" starts the
// demo application; see "loam --help" for the other commands.
package main

import (
	"os"

	"loam.dev/pkg/prog"
)

func main() {
	os.Exit(prog.Run([3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args))
}
