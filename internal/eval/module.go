package eval

import (
	"sort"

	"github.com/dstanley-scripts/datascript/internal/ast"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// evalImport implements spec.md §4.4's import-evaluation algorithm: resolve
// the specifier, reuse a cached namespace if one exists, else evaluate the
// module in a fresh isolated environment (with cycle detection via the
// loader's in-progress set), then bind at the import site.
func (e *Evaluator) evalImport(s *ast.ImportStatement, env *runtime.Environment) error {
	path, err := e.Loader.ResolveImportPath(s.Specifier)
	if err != nil {
		return e.fatalf(s.Pos(), derrors.KindModule, "%s", err)
	}

	namespace, ok := e.modules[path]
	if !ok {
		var err error
		namespace, err = e.loadModule(path)
		if err != nil {
			return err
		}
	}

	if s.Namespace != "" {
		if env.HasOwnBinding(s.Namespace) {
			return e.fatalf(s.Pos(), derrors.KindModule, "%q is already declared in this scope", s.Namespace)
		}
		if err := env.DeclareVar(s.Namespace, namespace, false); err != nil {
			return e.fatalf(s.Pos(), derrors.KindModule, "%s", err)
		}
	}
	for _, exposed := range s.Exposing {
		v, ok := namespace.Get(exposed.Name)
		if !ok {
			return e.fatalf(s.Pos(), derrors.KindModule, "module %q has no export %q", e.Loader.PathLabel(path), exposed.Name)
		}
		bindName := exposed.Name
		if exposed.Alias != "" {
			bindName = exposed.Alias
		}
		if env.HasOwnBinding(bindName) {
			return e.fatalf(s.Pos(), derrors.KindModule, "%q is already declared in this scope", bindName)
		}
		if err := env.DeclareVar(bindName, v, false); err != nil {
			return e.fatalf(s.Pos(), derrors.KindModule, "%s", err)
		}
	}
	if s.DefaultName != "" {
		v, ok := namespace.Get("default")
		if !ok {
			return e.fatalf(s.Pos(), derrors.KindModule, "module %q has no default export", e.Loader.PathLabel(path))
		}
		if env.HasOwnBinding(s.DefaultName) {
			return e.fatalf(s.Pos(), derrors.KindModule, "%q is already declared in this scope", s.DefaultName)
		}
		if err := env.DeclareVar(s.DefaultName, v, false); err != nil {
			return e.fatalf(s.Pos(), derrors.KindModule, "%s", err)
		}
	}
	return nil
}

// loadModule evaluates the program at path in a fresh module environment
// and caches the resulting namespace. On failure the partial result is
// evicted before the error propagates (spec.md §4.4).
func (e *Evaluator) loadModule(path string) (*runtime.Object, error) {
	if err := e.Loader.Enter(path); err != nil {
		return nil, derrors.New(derrors.KindModule, token.Position{}, err.Error(), "", "")
	}
	defer e.Loader.Leave(path)

	prog, err := e.Loader.GetProgram(path)
	if err != nil {
		return nil, derrors.New(derrors.KindModule, token.Position{}, err.Error(), "", "")
	}

	moduleEnv := e.Global.NewChild()
	moduleEnv.EnableExports()

	if _, err := e.evalStatements(prog.Statements, moduleEnv); err != nil {
		return nil, err
	}

	namespace := runtime.NewObject()
	exports := moduleEnv.GetModuleExports()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		namespace.Set(name, exports[name])
	}

	e.modules[path] = namespace
	return namespace, nil
}

// evalExport evaluates the wrapped declaration/expression and records it in
// env's export table (spec.md §4.3/§4.4). env must be a module's top scope.
func (e *Evaluator) evalExport(s *ast.ExportDeclaration, env *runtime.Environment) error {
	if s.DefaultExpr != nil {
		v, err := e.evalExpr(s.DefaultExpr, env)
		if err != nil {
			return err
		}
		env.SetModuleExport("default", v)
		return nil
	}

	if _, err := e.evalStatement(s.Decl, env); err != nil {
		return err
	}

	name := exportedName(s.Decl)
	if name == "" {
		return e.fatalf(s.Pos(), derrors.KindModule, "export declaration has no bindable name")
	}
	v, err := env.LookupVar(name)
	if err != nil {
		return e.fatalf(s.Pos(), derrors.KindModule, "%s", err)
	}
	if s.IsDefault {
		env.SetModuleExport("default", v)
		return nil
	}
	env.SetModuleExport(name, v)
	return nil
}

func exportedName(stmt ast.Stmt) string {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return s.Name
	case *ast.FunctionDeclaration:
		return s.Name
	case *ast.ClassDeclaration:
		return s.Name
	default:
		return ""
	}
}
