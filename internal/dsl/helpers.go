package dsl

import (
	"fmt"
	"strings"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Eq implements the `eq(field, v)` helper native: `{ field: v }`.
func Eq(field string, v runtime.Value) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set(field, v)
	return obj
}

func comparator(op, field string, v runtime.Value) *runtime.Object {
	inner := runtime.NewObject()
	inner.Set(op, v)
	obj := runtime.NewObject()
	obj.Set(field, inner)
	return obj
}

// Ne/Gt/Gte/Lt/Lte implement the remaining comparator helper natives:
// `{ field: { $op: v } }`.
func Ne(field string, v runtime.Value) *runtime.Object  { return comparator("$ne", field, v) }
func Gt(field string, v runtime.Value) *runtime.Object  { return comparator("$gt", field, v) }
func Gte(field string, v runtime.Value) *runtime.Object { return comparator("$gte", field, v) }
func Lt(field string, v runtime.Value) *runtime.Object  { return comparator("$lt", field, v) }
func Lte(field string, v runtime.Value) *runtime.Object { return comparator("$lte", field, v) }

// AndOr implements the `and`/`or` helper natives: `{ $and|$or: [...] }`.
// A single array argument is spread; otherwise every argument is a
// condition.
func AndOr(op string, args []runtime.Value) *runtime.Object {
	conds := args
	if len(args) == 1 {
		if arr, ok := args[0].(*runtime.Array); ok {
			conds = arr.Elements
		}
	}
	obj := runtime.NewObject()
	obj.Set(op, &runtime.Array{Elements: append([]runtime.Value{}, conds...)})
	return obj
}

// Stage implements the `match/project/sort/limit/skip/group/addFields`
// helper natives: `{ $name: payload }`.
func Stage(name string, payload runtime.Value) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("$"+name, payload)
	return obj
}

// Count implements the `count(name)` helper native: `{ $count: name }`.
func Count(name string) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("$count", runtime.String{Value: name})
	return obj
}

// Lookup implements the `lookup` helper native: either a single object
// payload, or the four strings (from, localField, foreignField, as).
func Lookup(args []runtime.Value) (*runtime.Object, error) {
	var payload runtime.Value
	switch len(args) {
	case 1:
		obj, ok := args[0].(*runtime.Object)
		if !ok {
			return nil, fmt.Errorf("lookup: expected an object, got %s", args[0].Type())
		}
		payload = obj
	case 4:
		strs := make([]string, 4)
		for i, a := range args {
			s, ok := a.(runtime.String)
			if !ok {
				return nil, fmt.Errorf("lookup: expected four strings, argument %d was %s", i, a.Type())
			}
			strs[i] = s.Value
		}
		obj := runtime.NewObject()
		obj.Set("from", runtime.String{Value: strs[0]})
		obj.Set("localField", runtime.String{Value: strs[1]})
		obj.Set("foreignField", runtime.String{Value: strs[2]})
		obj.Set("as", runtime.String{Value: strs[3]})
		payload = obj
	default:
		return nil, fmt.Errorf("lookup: expected 1 or 4 arguments, got %d", len(args))
	}
	out := runtime.NewObject()
	out.Set("$lookup", payload)
	return out, nil
}

// Unwind implements the `unwind` helper native: a string path (auto-prefixed
// with `$`) or an object payload.
func Unwind(arg runtime.Value) (*runtime.Object, error) {
	var payload runtime.Value
	switch v := arg.(type) {
	case runtime.String:
		p := v.Value
		if !strings.HasPrefix(p, "$") {
			p = "$" + p
		}
		payload = runtime.String{Value: p}
	case *runtime.Object:
		payload = v
	default:
		return nil, fmt.Errorf("unwind: expected a string path or an object, got %s", arg.Type())
	}
	out := runtime.NewObject()
	out.Set("$unwind", payload)
	return out, nil
}
