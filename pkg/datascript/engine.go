// Package datascript is the embedding surface for the interpreter: it wires
// the lexer, parser, evaluator, native function library, and the default
// mongo-driver-backed DSL connector into a single Engine, the way go-dws's
// pkg/dwscript package wires its own lexer/parser/interp triad for hosts
// that don't want to reach into internal/.
package datascript

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dstanley-scripts/datascript/internal/builtins"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/module"
	"github.com/dstanley-scripts/datascript/internal/mongostore"
	"github.com/dstanley-scripts/datascript/internal/parser"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Engine owns one Evaluator and the module loader it runs against. A single
// Engine is not safe for concurrent Run/Eval calls — spec.md §5 specifies a
// single-threaded cooperative evaluator, and the Engine does not add
// locking on top of that contract.
type Engine struct {
	ev     *eval.Evaluator
	loader *module.Loader

	// Pending construction-time settings, applied in New after the
	// Evaluator exists; kept off the Evaluator itself so Option values can
	// be collected before anything that needs them is constructed.
	root   string
	writer io.Writer
	ctx    context.Context
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithWriter redirects `print`/`debug`/`info`/`warn`/`error` native output;
// the default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(e *Engine) { e.writer = w }
}

// WithRoot sets the directory relative imports resolve against at the top
// level; the default is the process working directory.
func WithRoot(root string) Option {
	return func(e *Engine) { e.root = root }
}

// WithContext sets the context.Context threaded through blocking natives
// (`connect`, `disconnect`, and the DSL operations; `sleep` does not use
// it). The default is context.Background().
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// New builds an Engine with the native function library registered and the
// default mongo-driver connector wired for `using mongo`/`connect`
// (spec.md §6's driver interface; internal/mongostore is the concrete
// implementation, kept out of the interpreter core itself).
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	root := e.root
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		} else {
			root = "."
		}
	}
	e.loader = module.New(root)
	e.ev = eval.New(e.loader, os.Stdout)
	e.ev.Connector = mongostore.Connect
	if e.writer != nil {
		e.ev.Out = e.writer
	}
	if e.ctx != nil {
		e.ev.Ctx = e.ctx
	}
	builtins.Register(e.ev)
	return e
}

// RunFile parses and evaluates the named file as the top-level program.
func (e *Engine) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return e.Run(string(src), path)
}

// Run parses and evaluates src, using file only for diagnostics (a blank
// file yields errors that give line:column without a file name, matching
// how go-dws's pkg/dwscript treats -e/--eval input).
func (e *Engine) Run(src, file string) error {
	prog, err := parser.Parse(src, file)
	if err != nil {
		return err
	}
	return e.ev.Run(prog)
}

// Eval parses and evaluates src as a single expression statement sequence,
// returning the last statement's Value — the embedding equivalent of the
// CLI's `-e` inline mode.
func (e *Engine) Eval(src string) (runtime.Value, error) {
	prog, err := parser.Parse(src, "<eval>")
	if err != nil {
		return nil, err
	}
	return e.ev.RunForValue(prog)
}

// Global exposes the top-level environment, e.g. for a host that wants to
// declare additional native bindings before Run.
func (e *Engine) Global() *runtime.Environment { return e.ev.Global }

// Loader exposes the module loader, e.g. for a CLI's `--show-modules`.
func (e *Engine) Loader() *module.Loader { return e.loader }
