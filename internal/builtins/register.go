// Package builtins populates an Evaluator's global environment with the
// native function library spec.md §4.8 enumerates. Datascript's calling
// convention already resolves any callable as a first-class environment
// value, so unlike go-dws's name-dispatch switch (internal/interp/functions.go)
// each native here is registered directly as a *runtime.NativeFn closure —
// the same mechanism evalCall already uses for user-defined functions.
package builtins

import (
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Register installs every native function spec.md §4.8 lists into ev's
// global environment. Callers invoke this once, before Run/Eval.
func Register(ev *eval.Evaluator) {
	registerCore(ev)
	registerMath(ev)
	registerStrings(ev)
	registerCollections(ev)
	registerSchema(ev)
	registerSystem(ev)
	registerAsync(ev)
	registerDSL(ev)
}

// define binds name to a NativeFn in ev's global environment. Registration
// order is fixed and names never collide, so a declaration error here is a
// programming mistake, not a user-facing condition.
func define(ev *eval.Evaluator, name string, fn func(args []runtime.Value, env *runtime.Environment) (runtime.Value, error)) {
	if err := ev.Global.DeclareVar(name, &runtime.NativeFn{Name: name, Fn: fn}, true); err != nil {
		panic(err)
	}
}
