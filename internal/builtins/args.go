package builtins

import (
	"fmt"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Native argument-contract violations are returned as plain errors rather
// than fatal diagnostics: callValue's NativeFn branch runs every returned
// error through WrapHostError, turning it into a catchable Thrown, exactly
// the "runtime exception" spec.md §4.8 calls for.

func arityErr(name string, want, got int) error {
	return fmt.Errorf("%s() expects %d argument(s), got %d", name, want, got)
}

func wantExact(name string, args []runtime.Value, n int) error {
	if len(args) != n {
		return arityErr(name, n, len(args))
	}
	return nil
}

func wantRange(name string, args []runtime.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("%s() expects between %d and %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

func asNumber(name string, v runtime.Value) (float64, error) {
	n, ok := v.(runtime.Number)
	if !ok {
		return 0, fmt.Errorf("%s() expects a number, got %s", name, v.Type())
	}
	return n.Value, nil
}

func asString(name string, v runtime.Value) (string, error) {
	s, ok := v.(runtime.String)
	if !ok {
		return "", fmt.Errorf("%s() expects a string, got %s", name, v.Type())
	}
	return s.Value, nil
}

func asArray(name string, v runtime.Value) (*runtime.Array, error) {
	a, ok := v.(*runtime.Array)
	if !ok {
		return nil, fmt.Errorf("%s() expects an array, got %s", name, v.Type())
	}
	return a, nil
}

func asObject(name string, v runtime.Value) (*runtime.Object, error) {
	o, ok := v.(*runtime.Object)
	if !ok {
		return nil, fmt.Errorf("%s() expects an object, got %s", name, v.Type())
	}
	return o, nil
}

func boolValue(b bool) runtime.Boolean { return runtime.Boolean{Value: b} }
func numValue(n float64) runtime.Number { return runtime.Number{Value: n} }
func strValue(s string) runtime.String { return runtime.String{Value: s} }
