// Package main-level CLI integration tests driven by testscript, in the
// style this pack's CLI-shaped repos use for black-box "run the binary,
// check stdout/exit-code" coverage: each testdata/script/*.txtar file is a
// self-contained scenario script.
package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/dstanley-scripts/datascript/cmd/datascript/cmd"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"datascript": func() int {
			if err := cmd.Execute(); err != nil {
				return 1
			}
			return 0
		},
	}))
}

func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
