// Command datascript is the CLI entry point: it reads a .ds source file (or
// inline -e expression), lexes, parses, and evaluates it via pkg/datascript.
// Process entry and argument handling are intentionally thin — spec.md §1
// lists "process entry and CLI argument handling" as an out-of-scope
// collaborator of the language core, consuming only the module loader's
// resolve and the evaluator's run-program entry.
package main

import (
	"fmt"
	"os"

	"github.com/dstanley-scripts/datascript/cmd/datascript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
