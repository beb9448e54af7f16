package eval

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/dsl"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// evalCall evaluates a call expression's callee and arguments, then
// dispatches on the callee's concrete kind (spec.md §4.5's call semantics;
// §4.6 for class-value callees, which instantiate rather than invoke).
func (e *Evaluator) evalCall(ex *ast.CallExpr, env *runtime.Environment) (runtime.Value, error) {
	callee, err := e.evalExpr(ex.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := e.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return e.callValue(callee, args, ex.Pos())
}

// callValue dispatches on callee's concrete kind, used both by evalCall and
// by CallValue (exported for natives like `schedule` that invoke user code
// outside of any CallExpr).
func (e *Evaluator) callValue(callee runtime.Value, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.Function:
		return e.invokeFunction(fn, args)
	case *runtime.NativeFn:
		for i := range args {
			args[i] = dsl.Unwrap(args[i])
		}
		v, err := fn.Fn(args, e.Global)
		if err != nil {
			return nil, WrapHostError(err)
		}
		return v, nil
	case *runtime.Class:
		return e.instantiate(fn, args, pos)
	default:
		return nil, e.fatalf(pos, derrors.KindType, "value of type %s is not callable", callee.Type())
	}
}

// invokeFunction runs fn's body in a fresh scope parented on its closure
// environment. Missing arguments without a default, or surplus arguments,
// are fatal (spec.md §4.5).
func (e *Evaluator) invokeFunction(fn *runtime.Function, args []runtime.Value) (runtime.Value, error) {
	callEnv := fn.Env.NewChild()
	if err := e.bindParams(fn.Params, args, callEnv, "function "+fn.Name); err != nil {
		return nil, err
	}
	result, err := e.evalStatements(fn.Body, callEnv)
	if err != nil {
		switch sig := err.(type) {
		case ReturnSignal:
			return sig.Value, nil
		case BreakSignal:
			return nil, derrors.New(derrors.KindEval, token.Position{}, "break used outside of a loop", "", "")
		case ContinueSignal:
			return nil, derrors.New(derrors.KindEval, token.Position{}, "continue used outside of a loop", "", "")
		default:
			return nil, err
		}
	}
	return result, nil
}

// bindParams binds params against args into env: positional, with defaults
// evaluated in env for unsupplied trailing parameters, fatal on a missing
// value with no default or on surplus arguments. Annotated parameters are
// structurally type-checked (spec.md §4.5/§4.6).
func (e *Evaluator) bindParams(params []ast.Param, args []runtime.Value, env *runtime.Environment, label string) error {
	if len(args) > len(params) {
		return e.fatalf(token.Position{}, derrors.KindType, "%s: too many arguments (%d > %d)", label, len(args), len(params))
	}
	for i, p := range params {
		var v runtime.Value
		if i < len(args) {
			v = args[i]
		} else if p.Default != nil {
			var err error
			v, err = e.evalExpr(p.Default, env)
			if err != nil {
				return err
			}
		} else {
			return e.fatalf(token.Position{}, derrors.KindType, "%s: missing required argument %q", label, p.Name)
		}
		required := p.Default == nil
		if err := e.typeCheck(v, p.Annotation, required, "", label+" parameter "+p.Name, token.Position{}); err != nil {
			return err
		}
		if err := env.DeclareVar(p.Name, v, false); err != nil {
			return err
		}
	}
	return nil
}
