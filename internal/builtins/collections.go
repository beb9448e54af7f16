package builtins

import (
	"fmt"

	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerCollections(ev *eval.Evaluator) {
	define(ev, "keys", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("keys", args, 1); err != nil {
			return nil, err
		}
		o, err := asObject("keys", args[0])
		if err != nil {
			return nil, err
		}
		names := o.Keys()
		elems := make([]runtime.Value, len(names))
		for i, n := range names {
			elems[i] = strValue(n)
		}
		return &runtime.Array{Elements: elems}, nil
	})

	define(ev, "values", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("values", args, 1); err != nil {
			return nil, err
		}
		o, err := asObject("values", args[0])
		if err != nil {
			return nil, err
		}
		elems := make([]runtime.Value, 0, o.Len())
		o.Range(func(_ string, v runtime.Value) bool {
			elems = append(elems, v)
			return true
		})
		return &runtime.Array{Elements: elems}, nil
	})

	define(ev, "entries", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("entries", args, 1); err != nil {
			return nil, err
		}
		o, err := asObject("entries", args[0])
		if err != nil {
			return nil, err
		}
		elems := make([]runtime.Value, 0, o.Len())
		o.Range(func(name string, v runtime.Value) bool {
			elems = append(elems, &runtime.Array{Elements: []runtime.Value{strValue(name), v}})
			return true
		})
		return &runtime.Array{Elements: elems}, nil
	})

	define(ev, "len", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("len", args, 1); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case *runtime.Array:
			return numValue(float64(len(v.Elements))), nil
		case *runtime.Object:
			return numValue(float64(v.Len())), nil
		case runtime.String:
			return numValue(float64(len([]rune(v.Value)))), nil
		default:
			return nil, fmt.Errorf("len() expects an array, object, or string, got %s", args[0].Type())
		}
	})

	define(ev, "clone", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("clone", args, 1); err != nil {
			return nil, err
		}
		return shallowClone(args[0]), nil
	})

	define(ev, "deepClone", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("deepClone", args, 1); err != nil {
			return nil, err
		}
		visited := make(map[runtime.Value]runtime.Value)
		return deepClone(args[0], visited), nil
	})
}

// shallowClone implements clone(): arrays/objects get a fresh top-level
// container sharing element/property values; primitives pass through
// unchanged (spec.md §4.8).
func shallowClone(v runtime.Value) runtime.Value {
	switch val := v.(type) {
	case *runtime.Array:
		elems := make([]runtime.Value, len(val.Elements))
		copy(elems, val.Elements)
		return &runtime.Array{Elements: elems}
	case *runtime.Object:
		out := runtime.NewObject()
		out.SchemaName = val.SchemaName
		val.Range(func(name string, v runtime.Value) bool {
			out.Set(name, v)
			return true
		})
		return out
	default:
		return v
	}
}

// deepClone recursively copies arrays/objects, preserving cycles via an
// identity-keyed visited map (spec.md §4.8).
func deepClone(v runtime.Value, visited map[runtime.Value]runtime.Value) runtime.Value {
	switch val := v.(type) {
	case *runtime.Array:
		if clone, ok := visited[v]; ok {
			return clone
		}
		out := &runtime.Array{Elements: make([]runtime.Value, len(val.Elements))}
		visited[v] = out
		for i, el := range val.Elements {
			out.Elements[i] = deepClone(el, visited)
		}
		return out
	case *runtime.Object:
		if clone, ok := visited[v]; ok {
			return clone
		}
		out := runtime.NewObject()
		out.SchemaName = val.SchemaName
		visited[v] = out
		val.Range(func(name string, child runtime.Value) bool {
			out.Set(name, deepClone(child, visited))
			return true
		})
		return out
	default:
		return v
	}
}
