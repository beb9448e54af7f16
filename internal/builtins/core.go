package builtins

import (
	"fmt"
	"time"

	"github.com/kr/pretty"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerCore(ev *eval.Evaluator) {
	define(ev, "print", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		for _, a := range args {
			fmt.Fprint(ev.Out, a.String())
		}
		fmt.Fprintln(ev.Out)
		return runtime.Null{}, nil
	})

	define(ev, "time", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("time", args, 0); err != nil {
			return nil, err
		}
		return numValue(float64(time.Now().UnixMilli())), nil
	})

	define(ev, "typeOf", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("typeOf", args, 1); err != nil {
			return nil, err
		}
		return strValue(typeOfValue(args[0])), nil
	})

	define(ev, "inspect", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("inspect", args, 1); err != nil {
			return nil, err
		}
		text, err := dsl.ToJSON(args[0])
		if err != nil {
			return nil, fmt.Errorf("inspect(): %s", err)
		}
		return strValue(text), nil
	})

	define(ev, "showASTNode", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("showASTNode", args, 1); err != nil {
			return nil, err
		}
		fmt.Fprintf(ev.Out, "%# v\n", pretty.Formatter(args[0]))
		return runtime.Null{}, nil
	})

	define(ev, "assert", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("assert", args, 1, 2); err != nil {
			return nil, err
		}
		if runtime.Truthy(args[0]) {
			return runtime.Null{}, nil
		}
		msg := "assertion failed"
		if len(args) == 2 {
			msg = args[1].String()
		}
		return nil, eval.Thrown{Value: strValue(msg)}
	})

	define(ev, "debug", logNative(ev, "DEBUG"))
	define(ev, "info", logNative(ev, "INFO"))
	define(ev, "warn", logNative(ev, "WARN"))
	define(ev, "error", logNative(ev, "ERROR"))
}

// typeOfValue implements spec.md §4.8's typeOf semantics: a tagged object
// reports its schema name, a class value its own name, everything else its
// value-type tag.
func typeOfValue(v runtime.Value) string {
	switch val := v.(type) {
	case *runtime.Object:
		if val.SchemaName != "" {
			return val.SchemaName
		}
		return val.Type()
	case *runtime.Class:
		return val.Name
	default:
		return v.Type()
	}
}

// logNative builds debug/info/warn/error: a leveled line followed by a
// kr/pretty dump of every argument, mirroring --trace's structured output.
func logNative(ev *eval.Evaluator, level string) func([]runtime.Value, *runtime.Environment) (runtime.Value, error) {
	return func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		fmt.Fprintf(ev.Out, "[%s]", level)
		for _, a := range args {
			fmt.Fprintf(ev.Out, " %# v", pretty.Formatter(a))
		}
		fmt.Fprintln(ev.Out)
		return runtime.Null{}, nil
	}
}
