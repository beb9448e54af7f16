package eval

import (
	"fmt"
	"math"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/dsl"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// evalDatabaseStatement implements `database ident = expr;` (spec.md §4.7):
// expr must be a database handle; any prior active database/collection
// bindings are cleared, and ident becomes the new active database, bound
// const.
func (e *Evaluator) evalDatabaseStatement(s *ast.DatabaseStatement, env *runtime.Environment) error {
	v, err := e.evalExpr(s.Init, env)
	if err != nil {
		return err
	}
	db, ok := v.(*dsl.DatabaseValue)
	if !ok {
		return e.fatalf(s.Pos(), derrors.KindDSL, "database %q: expected a database handle, got %s", s.Name, v.Type())
	}
	for _, name := range e.dsl.idents {
		env.RemoveVar(name)
	}
	e.dsl.activeDatabase = db
	e.dsl.activeIdent = s.Name
	e.dsl.collections = nil
	e.dsl.idents = nil
	if err := env.DeclareVar(s.Name, db, true); err != nil {
		return e.fatalf(s.Pos(), derrors.KindDSL, "%s", err)
	}
	e.dsl.registerIdent(s.Name)
	return nil
}

// evalCollectionStatement implements `collection ident [= expr];`.
func (e *Evaluator) evalCollectionStatement(s *ast.CollectionStatement, env *runtime.Environment) error {
	var col *dsl.CollectionValue

	if s.Init == nil {
		c, err := e.collectionFromActiveDatabase(s.Name, s.Pos())
		if err != nil {
			return err
		}
		col = c
	} else {
		v, err := e.evalExpr(s.Init, env)
		if err != nil {
			return err
		}
		switch val := v.(type) {
		case *dsl.CollectionValue:
			col = val
		case *dsl.DatabaseValue:
			col = &dsl.CollectionValue{Handle: val.Handle.Collection(s.Name)}
		case runtime.String:
			c, err := e.collectionFromActiveDatabase(val.Value, s.Pos())
			if err != nil {
				return err
			}
			col = c
		default:
			return e.fatalf(s.Pos(), derrors.KindDSL, "collection %q: expected a collection handle, database handle, or string, got %s", s.Name, v.Type())
		}
	}

	if err := env.DeclareVar(s.Name, col, true); err != nil {
		return e.fatalf(s.Pos(), derrors.KindDSL, "%s", err)
	}
	e.dsl.registerIdent(s.Name)
	return nil
}

func (e *Evaluator) collectionFromActiveDatabase(name string, pos token.Position) (*dsl.CollectionValue, error) {
	if e.dsl.activeDatabase == nil {
		return nil, e.fatalf(pos, derrors.KindDSL, "collection %q: no active database", name)
	}
	return &dsl.CollectionValue{Handle: e.dsl.activeDatabase.Handle.Collection(name)}, nil
}

// evalUseCollectionStatement implements `use collection ident [with opts];`.
func (e *Evaluator) evalUseCollectionStatement(s *ast.UseCollectionStatement, env *runtime.Environment) error {
	var col *dsl.CollectionValue
	if env.HasBinding(s.Name) {
		if v, err := env.LookupVar(s.Name); err == nil {
			if existing, ok := v.(*dsl.CollectionValue); ok {
				col = existing
			}
		}
	}
	if col == nil {
		c, err := e.collectionFromActiveDatabase(s.Name, s.Pos())
		if err != nil {
			return err
		}
		col = c
		if err := env.DeclareVar(s.Name, col, true); err != nil {
			return e.fatalf(s.Pos(), derrors.KindDSL, "%s", err)
		}
		e.dsl.registerIdent(s.Name)
	}

	if s.Options == nil {
		return nil
	}
	v, err := e.evalExpr(s.Options, env)
	if err != nil {
		return err
	}
	obj, ok := v.(*runtime.Object)
	if !ok {
		return e.fatalf(s.Pos(), derrors.KindDSL, "use collection %q: options must be an object, got %s", s.Name, v.Type())
	}
	return e.applyCollectionOptions(col, obj, s.Pos())
}

func (e *Evaluator) applyCollectionOptions(col *dsl.CollectionValue, obj *runtime.Object, pos token.Position) error {
	opts, err := parseQueryOptions(obj)
	if err != nil {
		return e.fatalf(pos, derrors.KindDSL, "%s", err)
	}
	e.dsl.setDefaults(col, opts)
	return nil
}

func parseQueryOptions(obj *runtime.Object) (dsl.QueryOptions, error) {
	var opts dsl.QueryOptions
	if v, ok := obj.Get("projection"); ok {
		m, err := objectToPlainMap(v, "projection")
		if err != nil {
			return opts, err
		}
		opts.Projection = m
	}
	if v, ok := obj.Get("sort"); ok {
		m, err := objectToPlainMap(v, "sort")
		if err != nil {
			return opts, err
		}
		opts.Sort = m
	}
	if v, ok := obj.Get("limit"); ok {
		n, err := finiteNumber(v, "limit")
		if err != nil {
			return opts, err
		}
		opts.Limit = n
	}
	if v, ok := obj.Get("batchSize"); ok {
		n, err := finiteNumber(v, "batchSize")
		if err != nil {
			return opts, err
		}
		opts.BatchSize = n
	}
	return opts, nil
}

func objectToPlainMap(v runtime.Value, label string) (map[string]interface{}, error) {
	obj, ok := v.(*runtime.Object)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %s", label, v.Type())
	}
	plain, err := dsl.ToPlain(obj)
	if err != nil {
		return nil, err
	}
	m, _ := plain.(map[string]interface{})
	return m, nil
}

func finiteNumber(v runtime.Value, label string) (int64, error) {
	n, ok := v.(runtime.Number)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %s", label, v.Type())
	}
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return 0, fmt.Errorf("%s must be a finite number", label)
	}
	return int64(n.Value), nil
}

// evalUsingStatement implements `using mongo from uri [database db] [as
// alias] [with opts] { ... }` (spec.md §4.7/§5): snapshot/clear DSL state,
// connect, run the body in a scope binding the active database, then always
// disconnect and restore the snapshot regardless of how the body exits.
func (e *Evaluator) evalUsingStatement(s *ast.UsingStatement, env *runtime.Environment) error {
	uriVal, err := e.evalExpr(s.URI, env)
	if err != nil {
		return err
	}
	uriStr, ok := uriVal.(runtime.String)
	if !ok {
		return e.fatalf(s.Pos(), derrors.KindDSL, "using mongo: uri must be a string, got %s", uriVal.Type())
	}

	dbName := ""
	if s.Database != nil {
		v, err := e.evalExpr(s.Database, env)
		if err != nil {
			return err
		}
		dbStr, ok := v.(runtime.String)
		if !ok {
			return e.fatalf(s.Pos(), derrors.KindDSL, "using mongo: database must be a string, got %s", v.Type())
		}
		dbName = dbStr.Value
	}

	alias := s.Alias
	if alias == "" {
		alias = "db"
	}

	var optsObj *runtime.Object
	if s.Options != nil {
		v, err := e.evalExpr(s.Options, env)
		if err != nil {
			return err
		}
		if _, isNull := v.(runtime.Null); !isNull {
			obj, ok := v.(*runtime.Object)
			if !ok {
				return e.fatalf(s.Pos(), derrors.KindDSL, "using mongo: options must be an object, got %s", v.Type())
			}
			optsObj = obj
		}
	}

	if e.Connector == nil {
		return e.fatalf(s.Pos(), derrors.KindDSL, "using mongo: no database connector is configured")
	}

	snap := e.dsl.snapshot()
	e.dsl.activeDatabase = nil
	e.dsl.activeIdent = ""
	e.dsl.idents = nil

	handle, err := e.Connector(e.Ctx, uriStr.Value, dbName)
	if err != nil {
		e.dsl.restore(snap)
		return WrapHostError(err)
	}
	dbVal := &dsl.DatabaseValue{Handle: handle}
	e.dsl.activeDatabase = dbVal
	e.dsl.activeIdent = alias

	scopeEnv := env.NewChild()
	if err := scopeEnv.DeclareVar(alias, dbVal, true); err != nil {
		_ = handle.Close(e.Ctx)
		e.dsl.restore(snap)
		return e.fatalf(s.Pos(), derrors.KindDSL, "%s", err)
	}
	e.dsl.registerIdent(alias)

	if optsObj != nil {
		if err := e.preCreateUsingCollections(optsObj, scopeEnv, handle, s.Pos()); err != nil {
			_ = handle.Close(e.Ctx)
			e.dsl.restore(snap)
			return err
		}
	}

	_, runErr := e.evalStatements(s.Body, scopeEnv)

	_ = handle.Close(e.Ctx)
	e.dsl.activeDatabase = nil
	e.dsl.activeIdent = ""
	e.dsl.idents = nil
	e.dsl.restore(snap)

	return runErr
}

func (e *Evaluator) preCreateUsingCollections(optsObj *runtime.Object, scopeEnv *runtime.Environment, handle dsl.DatabaseHandle, pos token.Position) error {
	collsVal, ok := optsObj.Get("collections")
	if !ok {
		return nil
	}
	collsObj, ok := collsVal.(*runtime.Object)
	if !ok {
		return e.fatalf(pos, derrors.KindDSL, "using mongo: options.collections must be an object")
	}
	for _, name := range collsObj.Keys() {
		col := &dsl.CollectionValue{Handle: handle.Collection(name)}
		if err := scopeEnv.DeclareVar(name, col, true); err != nil {
			return e.fatalf(pos, derrors.KindDSL, "%s", err)
		}
		e.dsl.registerIdent(name)
		optVal, _ := collsObj.Get(name)
		if qo, ok := optVal.(*runtime.Object); ok {
			if err := e.applyCollectionOptions(col, qo, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// evalMongoOperation implements spec.md §4.7's operator lowering table for
// `<- ! !! ? ?? |>`.
func (e *Evaluator) evalMongoOperation(ex *ast.MongoOperationExpr, env *runtime.Environment) (runtime.Value, error) {
	targetVal, err := e.evalExpr(ex.Target, env)
	if err != nil {
		return nil, err
	}
	// CollectionOf sees targetVal before Unwrap so an Operation chain's own
	// cached Collection is consulted first, letting `.thenInsert`-style
	// continuations target the same collection without re-naming it.
	target := dsl.Unwrap(targetVal)
	ch, ok := dsl.CollectionOf(targetVal)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindDSL, "DSL operator %s requires a collection operand, got %s", ex.Op, target.Type())
	}

	argVal, err := e.evalExpr(ex.Arg, env)
	if err != nil {
		return nil, err
	}
	arg := dsl.Unwrap(argVal)

	opts := e.defaultsForTarget(target)

	var op *dsl.Operation
	switch ex.Op {
	case token.ARROW:
		op, err = dsl.Insert(e.Ctx, ch, arg)
	case token.BANG:
		op, err = dsl.Delete(e.Ctx, ch, arg)
	case token.BANG2:
		op, err = dsl.DeleteMany(e.Ctx, ch, arg)
	case token.QUESTION:
		op, err = dsl.FindOne(e.Ctx, ch, arg, opts)
	case token.DBLQST:
		op, err = dsl.FindMany(e.Ctx, ch, arg, opts, opts.Limit)
	case token.PIPE:
		op, err = dsl.Aggregate(e.Ctx, ch, arg)
	default:
		return nil, e.fatalf(ex.Pos(), derrors.KindDSL, "unknown DSL operator %s", ex.Op)
	}
	if err != nil {
		return nil, WrapHostError(err)
	}
	return op, nil
}

func (e *Evaluator) defaultsForTarget(v runtime.Value) dsl.QueryOptions {
	if cv, ok := v.(*dsl.CollectionValue); ok {
		return e.dsl.defaultsFor(cv)
	}
	return dsl.QueryOptions{}
}

// evalMongoQuery implements spec.md §4.7's query builder: lower `query {
// field op value, ... }` into a plain filter document and surface it as an
// Object.
func (e *Evaluator) evalMongoQuery(ex *ast.MongoQueryExpr, env *runtime.Environment) (runtime.Value, error) {
	conds := make([]dsl.Condition, len(ex.Conditions))
	for i, c := range ex.Conditions {
		v, err := e.evalExpr(c.Value, env)
		if err != nil {
			return nil, err
		}
		op, err := mongoCondOp(c.Op)
		if err != nil {
			return nil, e.fatalf(ex.Pos(), derrors.KindDSL, "%s", err)
		}
		conds[i] = dsl.Condition{Field: c.Field, Op: op, Value: v}
	}
	doc, err := dsl.BuildQuery(conds)
	if err != nil {
		return nil, WrapHostError(err)
	}
	return dsl.FromPlain(doc), nil
}

func mongoCondOp(k ast.MongoCondKind) (string, error) {
	switch k {
	case ast.CondEq:
		return "==", nil
	case ast.CondNe:
		return "!=", nil
	case ast.CondLt:
		return "<", nil
	case ast.CondLte:
		return "<=", nil
	case ast.CondGt:
		return ">", nil
	case ast.CondGte:
		return ">=", nil
	default:
		return "", fmt.Errorf("unknown query condition operator")
	}
}

// evalMongoUpdate implements `target update [many] where filter set update
// [with opts]`.
func (e *Evaluator) evalMongoUpdate(ex *ast.MongoUpdateExpr, env *runtime.Environment) (runtime.Value, error) {
	targetVal, err := e.evalExpr(ex.Target, env)
	if err != nil {
		return nil, err
	}
	target := dsl.Unwrap(targetVal)
	ch, ok := dsl.CollectionOf(targetVal)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindDSL, "update requires a collection operand, got %s", target.Type())
	}

	filter, err := e.evalExpr(ex.Filter, env)
	if err != nil {
		return nil, err
	}
	update, err := e.evalExpr(ex.Update, env)
	if err != nil {
		return nil, err
	}
	var options runtime.Value
	if ex.Options != nil {
		options, err = e.evalExpr(ex.Options, env)
		if err != nil {
			return nil, err
		}
	}

	op, err := dsl.Update(e.Ctx, ch, ex.Many, dsl.Unwrap(filter), dsl.Unwrap(update), options)
	if err != nil {
		return nil, WrapHostError(err)
	}
	return op, nil
}

// operationMember resolves member access on an Operation chain (spec.md
// §4.7's `{ value, collection, unwrap, valueOf, toJSON, thenInsert,
// thenInsertMany, thenDelete, thenDeleteMany, thenFind, thenFindMany,
// thenAggregate, thenUpdate, thenUpdateMany }`).
func (e *Evaluator) operationMember(op *dsl.Operation, key string) (runtime.Value, error) {
	switch key {
	case "value":
		return op.LastResult, nil
	case "valueOf":
		return &runtime.NativeFn{Name: key, Fn: func([]runtime.Value, *runtime.Environment) (runtime.Value, error) {
			return op.LastResult, nil
		}}, nil
	case "collection":
		if op.Collection == nil {
			return runtime.Null{}, nil
		}
		return &dsl.CollectionValue{Handle: op.Collection}, nil
	case "unwrap":
		return &runtime.NativeFn{Name: key, Fn: func([]runtime.Value, *runtime.Environment) (runtime.Value, error) {
			return op.LastResult, nil
		}}, nil
	case "toJSON":
		return &runtime.NativeFn{Name: key, Fn: func([]runtime.Value, *runtime.Environment) (runtime.Value, error) {
			s, err := dsl.ToJSON(op.LastResult)
			if err != nil {
				return nil, err
			}
			return runtime.String{Value: s}, nil
		}}, nil
	case "thenInsert", "thenInsertMany":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.Insert(e.Ctx, op.Collection, argOrNull(args, 0))
		}), nil
	case "thenDelete":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.Delete(e.Ctx, op.Collection, argOrNull(args, 0))
		}), nil
	case "thenDeleteMany":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.DeleteMany(e.Ctx, op.Collection, argOrNull(args, 0))
		}), nil
	case "thenFind":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			opts, err := thenQueryOptions(args, 1)
			if err != nil {
				return nil, err
			}
			return dsl.FindOne(e.Ctx, op.Collection, argOrNull(args, 0), opts)
		}), nil
	case "thenFindMany":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			opts, err := thenQueryOptions(args, 1)
			if err != nil {
				return nil, err
			}
			return dsl.FindMany(e.Ctx, op.Collection, argOrNull(args, 0), opts, opts.Limit)
		}), nil
	case "thenAggregate":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.Aggregate(e.Ctx, op.Collection, argOrNull(args, 0))
		}), nil
	case "thenUpdate":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.Update(e.Ctx, op.Collection, false, argOrNull(args, 0), argOrNull(args, 1), argAt(args, 2))
		}), nil
	case "thenUpdateMany":
		return e.thenOp(op, func(args []runtime.Value) (*dsl.Operation, error) {
			return dsl.Update(e.Ctx, op.Collection, true, argOrNull(args, 0), argOrNull(args, 1), argAt(args, 2))
		}), nil
	default:
		return runtime.Null{}, nil
	}
}

func (e *Evaluator) thenOp(op *dsl.Operation, fn func(args []runtime.Value) (*dsl.Operation, error)) *runtime.NativeFn {
	return &runtime.NativeFn{Name: "then", Fn: func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if op.Collection == nil {
			return nil, fmt.Errorf("operation has no associated collection")
		}
		next, err := fn(args)
		if err != nil {
			return nil, err
		}
		return next, nil
	}}
}

func argOrNull(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Null{}
}

func argAt(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func thenQueryOptions(args []runtime.Value, i int) (dsl.QueryOptions, error) {
	if i >= len(args) {
		return dsl.QueryOptions{}, nil
	}
	if _, isNull := args[i].(runtime.Null); isNull {
		return dsl.QueryOptions{}, nil
	}
	obj, ok := args[i].(*runtime.Object)
	if !ok {
		return dsl.QueryOptions{}, fmt.Errorf("options must be an object, got %s", args[i].Type())
	}
	return parseQueryOptions(obj)
}
