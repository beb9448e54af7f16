package eval

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// evalStatement dispatches on stmt's AST variant (spec.md §4.2's statement
// list). It returns the value of ExprStatements (used by some callers as a
// program's "result") and nil for everything else.
func (e *Evaluator) evalStatement(stmt ast.Stmt, env *runtime.Environment) (runtime.Value, error) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return nil, e.evalVarDeclaration(s, env)
	case *ast.FunctionDeclaration:
		fn := &runtime.Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
		return nil, env.DeclareVar(s.Name, fn, false)
	case *ast.ClassDeclaration:
		class, err := e.evalClassDeclaration(s, env)
		if err != nil {
			return nil, err
		}
		return nil, env.DeclareVar(s.Name, class, false)
	case *ast.IfStatement:
		return nil, e.evalIfStatement(s, env)
	case *ast.WhileStatement:
		return nil, e.evalWhileStatement(s, env)
	case *ast.ReturnStatement:
		var v runtime.Value = runtime.Null{}
		if s.Value != nil {
			var err error
			v, err = e.evalExpr(s.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return nil, ReturnSignal{Value: v}
	case *ast.BreakStatement:
		return nil, BreakSignal{}
	case *ast.ContinueStatement:
		return nil, ContinueSignal{}
	case *ast.TryCatchStatement:
		return nil, e.evalTryCatch(s, env)
	case *ast.ThrowStatement:
		v, err := e.evalExpr(s.Value, env)
		if err != nil {
			return nil, err
		}
		return nil, Thrown{Value: v}
	case *ast.ImportStatement:
		return nil, e.evalImport(s, env)
	case *ast.ExportDeclaration:
		return nil, e.evalExport(s, env)
	case *ast.DatabaseStatement:
		return nil, e.evalDatabaseStatement(s, env)
	case *ast.CollectionStatement:
		return nil, e.evalCollectionStatement(s, env)
	case *ast.UseCollectionStatement:
		return nil, e.evalUseCollectionStatement(s, env)
	case *ast.UsingStatement:
		return nil, e.evalUsingStatement(s, env)
	case *ast.ExprStatement:
		return e.evalExpr(s.Expr, env)
	default:
		return nil, e.fatalf(stmt.Pos(), derrors.KindEval, "unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) evalVarDeclaration(s *ast.VarDeclaration, env *runtime.Environment) error {
	var v runtime.Value = runtime.Null{}
	if s.Init != nil {
		var err error
		v, err = e.evalExpr(s.Init, env)
		if err != nil {
			return err
		}
	}
	return env.DeclareVar(s.Name, v, s.Const)
}

func (e *Evaluator) evalIfStatement(s *ast.IfStatement, env *runtime.Environment) error {
	cond, err := e.evalExpr(s.Cond, env)
	if err != nil {
		return err
	}
	if runtime.Truthy(cond) {
		_, err := e.evalStatements(s.Then, env.NewChild())
		return err
	}
	if s.Else != nil {
		_, err := e.evalStatements(s.Else, env.NewChild())
		return err
	}
	return nil
}

func (e *Evaluator) evalWhileStatement(s *ast.WhileStatement, env *runtime.Environment) error {
	for {
		cond, err := e.evalExpr(s.Cond, env)
		if err != nil {
			return err
		}
		if !runtime.Truthy(cond) {
			return nil
		}
		_, err = e.evalStatements(s.Body, env.NewChild())
		if err != nil {
			if _, ok := err.(BreakSignal); ok {
				return nil
			}
			if _, ok := err.(ContinueSignal); ok {
				continue
			}
			return err
		}
	}
}

func (e *Evaluator) evalTryCatch(s *ast.TryCatchStatement, env *runtime.Environment) error {
	_, err := e.evalStatements(s.Try, env.NewChild())
	if err == nil {
		return nil
	}
	thrown, ok := err.(Thrown)
	if !ok {
		return err
	}
	catchEnv := env.NewChild()
	if s.CatchParam != "" {
		if err := catchEnv.DeclareVar(s.CatchParam, thrown.Value, false); err != nil {
			return err
		}
	}
	_, err = e.evalStatements(s.Catch, catchEnv)
	return err
}
