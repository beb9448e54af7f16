package eval

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/dsl"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// evalExpr dispatches on expr's AST variant (spec.md §4.2/§4.5).
func (e *Evaluator) evalExpr(expr ast.Expr, env *runtime.Environment) (runtime.Value, error) {
	switch ex := expr.(type) {
	case *ast.NumericLiteral:
		return runtime.Number{Value: ex.Value}, nil
	case *ast.StringLiteral:
		return runtime.String{Value: ex.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.Boolean{Value: ex.Value}, nil
	case *ast.NullLiteral:
		return runtime.Null{}, nil
	case *ast.Identifier:
		v, err := env.LookupVar(ex.Name)
		if err != nil {
			return nil, e.fatalf(ex.Pos(), derrors.KindScope, "%s", err)
		}
		return v, nil
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(ex, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(ex, env)
	case *ast.AssignmentExpr:
		return e.evalAssignment(ex, env)
	case *ast.BinaryExpr:
		return e.evalBinary(ex, env)
	case *ast.UnaryExpr:
		return e.evalUnary(ex, env)
	case *ast.AwaitExpr:
		return e.evalAwait(ex, env)
	case *ast.CallExpr:
		return e.evalCall(ex, env)
	case *ast.MemberExpr:
		return e.evalMember(ex, env)
	case *ast.MongoOperationExpr:
		return e.evalMongoOperation(ex, env)
	case *ast.MongoQueryExpr:
		return e.evalMongoQuery(ex, env)
	case *ast.MongoUpdateExpr:
		return e.evalMongoUpdate(ex, env)
	default:
		return nil, e.fatalf(expr.Pos(), derrors.KindEval, "unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalObjectLiteral(ex *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	obj := runtime.NewObject()
	for _, p := range ex.Properties {
		if p.Shorthand {
			v, err := env.LookupVar(p.Key)
			if err != nil {
				return nil, e.fatalf(ex.Pos(), derrors.KindScope, "%s", err)
			}
			obj.Set(p.Key, v)
			continue
		}
		v, err := e.evalExpr(p.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(p.Key, v)
	}
	return obj, nil
}

func (e *Evaluator) evalArrayLiteral(ex *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	arr := &runtime.Array{Elements: make([]runtime.Value, len(ex.Elements))}
	for i, el := range ex.Elements {
		v, err := e.evalExpr(el, env)
		if err != nil {
			return nil, err
		}
		arr.Elements[i] = v
	}
	return arr, nil
}

func (e *Evaluator) evalAssignment(ex *ast.AssignmentExpr, env *runtime.Environment) (runtime.Value, error) {
	v, err := e.evalExpr(ex.Value, env)
	if err != nil {
		return nil, err
	}
	if err := env.AssignVar(ex.Target.Name, v); err != nil {
		return nil, e.fatalf(ex.Pos(), derrors.KindScope, "%s", err)
	}
	return v, nil
}

func (e *Evaluator) evalUnary(ex *ast.UnaryExpr, env *runtime.Environment) (runtime.Value, error) {
	v, err := e.evalExpr(ex.Operand, env)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case token.BANG:
		return runtime.Boolean{Value: !runtime.Truthy(v)}, nil
	case token.MINUS:
		n, ok := v.(runtime.Number)
		if !ok {
			return nil, e.fatalf(ex.Pos(), derrors.KindType, "unary '-' requires a number, got %s", v.Type())
		}
		return runtime.Number{Value: -n.Value}, nil
	default:
		return nil, e.fatalf(ex.Pos(), derrors.KindEval, "unknown unary operator %s", ex.Op)
	}
}

func (e *Evaluator) evalAwait(ex *ast.AwaitExpr, env *runtime.Environment) (runtime.Value, error) {
	v, err := e.evalExpr(ex.Value, env)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*runtime.Promise)
	if !ok {
		return v, nil
	}
	val, err := p.Wait()
	if err != nil {
		return nil, WrapHostError(err)
	}
	return val, nil
}

func (e *Evaluator) evalBinary(ex *ast.BinaryExpr, env *runtime.Environment) (runtime.Value, error) {
	left, err := e.evalExpr(ex.Left, env)
	if err != nil {
		return nil, err
	}

	// Logical operators short-circuit using truthiness and yield a boolean
	// (spec.md §4.5), never the operand itself.
	if ex.Op == token.AND {
		if !runtime.Truthy(left) {
			return runtime.Boolean{Value: false}, nil
		}
		right, err := e.evalExpr(ex.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.Boolean{Value: runtime.Truthy(right)}, nil
	}
	if ex.Op == token.OR {
		if runtime.Truthy(left) {
			return runtime.Boolean{Value: true}, nil
		}
		right, err := e.evalExpr(ex.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.Boolean{Value: runtime.Truthy(right)}, nil
	}

	right, err := e.evalExpr(ex.Right, env)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case token.EQ:
		return runtime.Boolean{Value: valuesEqual(left, right)}, nil
	case token.NEQ:
		return runtime.Boolean{Value: !valuesEqual(left, right)}, nil
	case token.LT, token.LTE, token.GT, token.GTE:
		return e.evalRelational(ex, left, right)
	case token.PLUS:
		return e.evalAdd(ex, left, right)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return e.evalArithmetic(ex, left, right)
	default:
		return nil, e.fatalf(ex.Pos(), derrors.KindEval, "unknown binary operator %s", ex.Op)
	}
}

// valuesEqual implements spec.md §4.5's equality rule: two Nulls are equal;
// otherwise types must match; Number/Boolean/String compare by value;
// everything else compares by identity.
func valuesEqual(a, b runtime.Value) bool {
	_, aNull := a.(runtime.Null)
	_, bNull := b.(runtime.Null)
	if aNull || bNull {
		return aNull && bNull
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case runtime.Number:
		return av.Value == b.(runtime.Number).Value
	case runtime.Boolean:
		return av.Value == b.(runtime.Boolean).Value
	case runtime.String:
		return av.Value == b.(runtime.String).Value
	default:
		return a == b
	}
}

func (e *Evaluator) evalRelational(ex *ast.BinaryExpr, left, right runtime.Value) (runtime.Value, error) {
	if ln, ok := left.(runtime.Number); ok {
		rn, ok := right.(runtime.Number)
		if !ok {
			return nil, e.fatalf(ex.Pos(), derrors.KindType, "cannot compare number to %s", right.Type())
		}
		return runtime.Boolean{Value: compareFloats(ex.Op, ln.Value, rn.Value)}, nil
	}
	if ls, ok := left.(runtime.String); ok {
		rs, ok := right.(runtime.String)
		if !ok {
			return nil, e.fatalf(ex.Pos(), derrors.KindType, "cannot compare string to %s", right.Type())
		}
		return runtime.Boolean{Value: compareStrings(ex.Op, ls.Value, rs.Value)}, nil
	}
	return nil, e.fatalf(ex.Pos(), derrors.KindType, "'%s' is only defined for pairs of numbers or pairs of strings, got %s", ex.Op, left.Type())
}

func compareFloats(op token.Kind, a, b float64) bool {
	switch op {
	case token.LT:
		return a < b
	case token.LTE:
		return a <= b
	case token.GT:
		return a > b
	case token.GTE:
		return a >= b
	}
	return false
}

func compareStrings(op token.Kind, a, b string) bool {
	switch op {
	case token.LT:
		return a < b
	case token.LTE:
		return a <= b
	case token.GT:
		return a > b
	case token.GTE:
		return a >= b
	}
	return false
}

// evalAdd implements `+`'s string-promotion rule: if either operand is a
// string, the result is a string concatenation, stringifying the other
// operand via Value.String().
func (e *Evaluator) evalAdd(ex *ast.BinaryExpr, left, right runtime.Value) (runtime.Value, error) {
	ls, lIsStr := left.(runtime.String)
	rs, rIsStr := right.(runtime.String)
	if lIsStr || rIsStr {
		var a, b string
		if lIsStr {
			a = ls.Value
		} else {
			a = left.String()
		}
		if rIsStr {
			b = rs.Value
		} else {
			b = right.String()
		}
		return runtime.String{Value: a + b}, nil
	}
	ln, ok := left.(runtime.Number)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindType, "'+' requires numbers or a string operand, got %s", left.Type())
	}
	rn, ok := right.(runtime.Number)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindType, "'+' requires numbers or a string operand, got %s", right.Type())
	}
	return runtime.Number{Value: ln.Value + rn.Value}, nil
}

func (e *Evaluator) evalArithmetic(ex *ast.BinaryExpr, left, right runtime.Value) (runtime.Value, error) {
	ln, ok := left.(runtime.Number)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindType, "'%s' requires numbers, got %s", ex.Op, left.Type())
	}
	rn, ok := right.(runtime.Number)
	if !ok {
		return nil, e.fatalf(ex.Pos(), derrors.KindType, "'%s' requires numbers, got %s", ex.Op, right.Type())
	}
	switch ex.Op {
	case token.MINUS:
		return runtime.Number{Value: ln.Value - rn.Value}, nil
	case token.STAR:
		return runtime.Number{Value: ln.Value * rn.Value}, nil
	case token.SLASH:
		if rn.Value == 0 {
			return nil, e.fatalf(ex.Pos(), derrors.KindEval, "division by zero")
		}
		return runtime.Number{Value: ln.Value / rn.Value}, nil
	case token.PERCENT:
		if rn.Value == 0 {
			return nil, e.fatalf(ex.Pos(), derrors.KindEval, "division by zero")
		}
		return runtime.Number{Value: float64(int64(ln.Value) % int64(rn.Value))}, nil
	default:
		return nil, e.fatalf(ex.Pos(), derrors.KindEval, "unknown arithmetic operator %s", ex.Op)
	}
}

func (e *Evaluator) evalMember(ex *ast.MemberExpr, env *runtime.Environment) (runtime.Value, error) {
	target, err := e.evalExpr(ex.Object, env)
	if err != nil {
		return nil, err
	}
	if op, ok := target.(*dsl.Operation); ok && !ex.Computed {
		switch ex.Prop {
		case "value", "collection", "unwrap", "valueOf", "toJSON", "thenInsert", "thenInsertMany",
			"thenDelete", "thenDeleteMany", "thenFind", "thenFindMany", "thenAggregate", "thenUpdate", "thenUpdateMany":
			return e.operationMember(op, ex.Prop)
		}
	}
	target = dsl.Unwrap(target)

	var key string
	var numericIndex *int
	if ex.Computed {
		idx, err := e.evalExpr(ex.Index, env)
		if err != nil {
			return nil, err
		}
		if n, ok := idx.(runtime.Number); ok {
			i := int(n.Value)
			numericIndex = &i
		} else if s, ok := idx.(runtime.String); ok {
			key = s.Value
		} else {
			return nil, e.fatalf(ex.Pos(), derrors.KindType, "computed member key must be a number or string, got %s", idx.Type())
		}
	} else {
		key = ex.Prop
	}

	switch v := target.(type) {
	case *runtime.Array:
		if numericIndex != nil {
			i := *numericIndex
			if i < 0 || i >= len(v.Elements) {
				return nil, e.fatalf(ex.Pos(), derrors.KindType, "array index %d out of bounds (length %d)", i, len(v.Elements))
			}
			return v.Elements[i], nil
		}
		if key == "length" {
			return runtime.Number{Value: float64(len(v.Elements))}, nil
		}
		return runtime.Null{}, nil
	case *runtime.Object:
		if val, ok := v.Get(key); ok {
			return val, nil
		}
		return runtime.Null{}, nil
	case *dsl.DatabaseValue:
		return e.databaseMember(v, key), nil
	case *dsl.Operation:
		return e.operationMember(v, key)
	case *dsl.CollectionValue:
		return runtime.Null{}, nil
	default:
		return nil, e.fatalf(ex.Pos(), derrors.KindType, "cannot access property %q of a %s value", key, target.Type())
	}
}

// databaseMember implements spec.md §4.5's auto-creating/caching collection
// access on a database handle object: `db.users` derives and caches a
// collection handle named "users".
func (e *Evaluator) databaseMember(db *dsl.DatabaseValue, name string) runtime.Value {
	if col, ok := e.dsl.cachedCollection(db, name); ok {
		return col
	}
	col := &dsl.CollectionValue{Handle: db.Handle.Collection(name)}
	e.dsl.cacheCollection(db, name, col)
	return col
}
