// Package eval implements Datascript's tree-walking evaluator: statement
// and expression dispatch, control-flow signals, schema/instance semantics,
// module import/export handling, and the document-store DSL statements and
// operators (spec.md §4.5-§4.7).
package eval

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/dsl"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/module"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// Evaluator dispatches on AST node variant. It owns the state spec.md §5
// identifies as process-wide and shared across the single cooperative
// thread of execution: the module loader's caches/in-progress set, and the
// DSL's active-database/collection registry.
type Evaluator struct {
	Global *runtime.Environment
	Loader *module.Loader
	Out    io.Writer
	Ctx    context.Context

	// Connector opens database handles for `using mongo`/`connect`. Nil
	// until the host wires one (pkg/datascript defaults it to
	// internal/mongostore.Connect).
	Connector dsl.Connector

	dsl     dslState
	timers  *timerRegistry
	modules map[string]*runtime.Object // resolved path -> cached namespace
}

// New creates an Evaluator with a fresh, empty global environment. Callers
// typically follow this with builtins.Register(ev) before Run.
func New(loader *module.Loader, out io.Writer) *Evaluator {
	return &Evaluator{
		Global:  runtime.NewEnvironment(),
		Loader:  loader,
		Out:     out,
		Ctx:     context.Background(),
		timers:  newTimerRegistry(),
		modules: make(map[string]*runtime.Object),
	}
}

// Run evaluates an already-parsed top-level program in the global
// environment.
func (e *Evaluator) Run(prog *ast.Program) error {
	_, err := e.evalStatements(prog.Statements, e.Global)
	return err
}

// RunForValue evaluates prog like Run but also returns the last statement's
// Value, for embedders that want an expression result (pkg/datascript's
// Eval) rather than just a pass/fail outcome.
func (e *Evaluator) RunForValue(prog *ast.Program) (runtime.Value, error) {
	return e.evalStatements(prog.Statements, e.Global)
}

// evalStatements runs stmts in env in declaration order, stopping at the
// first error or signal. It returns the value of the last expression
// statement; RunForValue passes it on, while Run and module loading discard
// it.
func (e *Evaluator) evalStatements(stmts []ast.Stmt, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.Null{}
	for _, s := range stmts {
		v, err := e.evalStatement(s, env)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

func (e *Evaluator) fatalf(pos token.Position, kind derrors.Kind, format string, args ...interface{}) error {
	return derrors.New(kind, pos, fmt.Sprintf(format, args...), "", "")
}

// Sleep returns a Promise resolving to Null after d (spec.md §4.8's
// `sleep(ms)`). Exported for internal/builtins.
func (e *Evaluator) Sleep(d time.Duration) *runtime.Promise {
	return e.timers.Sleep(d)
}

// ScheduleTimer runs invoke after d and returns a numeric timer id
// (spec.md §4.8's `schedule(delay, callable, argsArray?)`).
func (e *Evaluator) ScheduleTimer(d time.Duration, invoke func()) float64 {
	return e.timers.Schedule(d, invoke)
}

// Connect opens a database handle via the configured Connector (spec.md
// §6/§4.8's `connect`).
func (e *Evaluator) Connect(uri, dbName string) (dsl.DatabaseHandle, error) {
	if e.Connector == nil {
		return nil, fmt.Errorf("no database connector is configured")
	}
	return e.Connector(e.Ctx, uri, dbName)
}

// ActiveDatabase returns the current active database binding, or nil.
func (e *Evaluator) ActiveDatabase() *dsl.DatabaseValue {
	return e.dsl.activeDatabase
}

// SetActiveDatabase installs db as the active database binding (spec.md
// §4.8's `connect`), clearing any previously cached collections/idents the
// way `database ident = expr;` does.
func (e *Evaluator) SetActiveDatabase(db *dsl.DatabaseValue) {
	e.dsl.activeDatabase = db
	e.dsl.activeIdent = ""
	e.dsl.collections = nil
	e.dsl.idents = nil
}

// ClearActiveDatabase clears the active database/collection registrations
// (spec.md §4.8's `disconnect`).
func (e *Evaluator) ClearActiveDatabase() {
	e.dsl.activeDatabase = nil
	e.dsl.activeIdent = ""
	e.dsl.collections = nil
	e.dsl.idents = nil
}

// Context returns the evaluator's background context, used by natives
// (`connect`/`disconnect`) that call directly into a DatabaseHandle.
func (e *Evaluator) Context() context.Context {
	return e.Ctx
}

// CallValue invokes an already-resolved callee with already-evaluated
// arguments. Used by natives (`schedule`) that call back into user code
// outside of any CallExpr.
func (e *Evaluator) CallValue(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return e.callValue(callee, args, token.Position{})
}
