package builtins

import (
	"math"

	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerMath(ev *eval.Evaluator) {
	unary := func(name string, fn func(float64) float64) {
		define(ev, name, func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
			if err := wantExact(name, args, 1); err != nil {
				return nil, err
			}
			n, err := asNumber(name, args[0])
			if err != nil {
				return nil, err
			}
			return numValue(fn(n)), nil
		})
	}

	unary("abs", math.Abs)
	unary("sqrt", math.Sqrt)
	unary("round", math.Round)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)

	define(ev, "pow", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("pow", args, 2); err != nil {
			return nil, err
		}
		base, err := asNumber("pow", args[0])
		if err != nil {
			return nil, err
		}
		exp, err := asNumber("pow", args[1])
		if err != nil {
			return nil, err
		}
		return numValue(math.Pow(base, exp)), nil
	})

	define(ev, "max", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("max", args, 1, 64); err != nil {
			return nil, err
		}
		return numReduce("max", args, math.Max)
	})

	define(ev, "min", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("min", args, 1, 64); err != nil {
			return nil, err
		}
		return numReduce("min", args, math.Min)
	})

	define(ev, "clamp", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("clamp", args, 3); err != nil {
			return nil, err
		}
		v, err := asNumber("clamp", args[0])
		if err != nil {
			return nil, err
		}
		lo, err := asNumber("clamp", args[1])
		if err != nil {
			return nil, err
		}
		hi, err := asNumber("clamp", args[2])
		if err != nil {
			return nil, err
		}
		return numValue(math.Min(math.Max(v, lo), hi)), nil
	})
}

func numReduce(name string, args []runtime.Value, combine func(a, b float64) float64) (runtime.Value, error) {
	n0, err := asNumber(name, args[0])
	if err != nil {
		return nil, err
	}
	acc := n0
	for _, a := range args[1:] {
		n, err := asNumber(name, a)
		if err != nil {
			return nil, err
		}
		acc = combine(acc, n)
	}
	return numValue(acc), nil
}
