package builtins

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerStrings(ev *eval.Evaluator) {
	define(ev, "strlen", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("strlen", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("strlen", args[0])
		if err != nil {
			return nil, err
		}
		return numValue(float64(utf8.RuneCountInString(s))), nil
	})

	define(ev, "uppercase", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("uppercase", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("uppercase", args[0])
		if err != nil {
			return nil, err
		}
		return strValue(cases.Upper(language.Und).String(s)), nil
	})

	define(ev, "lowercase", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("lowercase", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("lowercase", args[0])
		if err != nil {
			return nil, err
		}
		return strValue(cases.Lower(language.Und).String(s)), nil
	})

	define(ev, "contains", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("contains", args, 2); err != nil {
			return nil, err
		}
		switch haystack := args[0].(type) {
		case runtime.String:
			needle, err := asString("contains", args[1])
			if err != nil {
				return nil, err
			}
			return boolValue(strings.Contains(haystack.Value, needle)), nil
		case *runtime.Array:
			for _, el := range haystack.Elements {
				if valuesEqualFor(el, args[1]) {
					return boolValue(true), nil
				}
			}
			return boolValue(false), nil
		default:
			return nil, fmt.Errorf("contains() expects a string or array, got %s", args[0].Type())
		}
	})

	define(ev, "split", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("split", args, 2); err != nil {
			return nil, err
		}
		s, err := asString("split", args[0])
		if err != nil {
			return nil, err
		}
		sep, err := asString("split", args[1])
		if err != nil {
			return nil, err
		}
		var parts []string
		if sep == "" {
			parts = strings.Split(s, "")
		} else {
			parts = strings.Split(s, sep)
		}
		elems := make([]runtime.Value, len(parts))
		for i, p := range parts {
			elems[i] = strValue(p)
		}
		return &runtime.Array{Elements: elems}, nil
	})

	define(ev, "trim", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("trim", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("trim", args[0])
		if err != nil {
			return nil, err
		}
		return strValue(strings.TrimSpace(s)), nil
	})

	define(ev, "toNumber", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("toNumber", args, 1); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case runtime.Number:
			return v, nil
		case runtime.String:
			n, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
			if err != nil {
				return nil, fmt.Errorf("toNumber(): %q is not a valid number", v.Value)
			}
			return numValue(n), nil
		case runtime.Boolean:
			if v.Value {
				return numValue(1), nil
			}
			return numValue(0), nil
		default:
			return nil, fmt.Errorf("toNumber() cannot convert a %s", args[0].Type())
		}
	})

	define(ev, "toString", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("toString", args, 1); err != nil {
			return nil, err
		}
		return strValue(args[0].String()), nil
	})
}

// valuesEqualFor mirrors the evaluator's scalar-equality rule for the
// contains() array search (spec.md §4.5's `==` semantics): same type-tag
// scalars compare by value, everything else by identity.
func valuesEqualFor(a, b runtime.Value) bool {
	if _, aNull := a.(runtime.Null); aNull {
		_, bNull := b.(runtime.Null)
		return bNull
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case runtime.Number:
		return av.Value == b.(runtime.Number).Value
	case runtime.String:
		return av.Value == b.(runtime.String).Value
	case runtime.Boolean:
		return av.Value == b.(runtime.Boolean).Value
	default:
		return a == b
	}
}
