package builtins

import (
	"fmt"
	"time"

	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerAsync(ev *eval.Evaluator) {
	define(ev, "sleep", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("sleep", args, 1); err != nil {
			return nil, err
		}
		ms, err := asNumber("sleep", args[0])
		if err != nil {
			return nil, err
		}
		return ev.Sleep(time.Duration(ms) * time.Millisecond), nil
	})

	define(ev, "schedule", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("schedule", args, 2, 3); err != nil {
			return nil, err
		}
		delayMs, err := asNumber("schedule", args[0])
		if err != nil {
			return nil, err
		}
		callable := args[1]
		switch callable.(type) {
		case *runtime.Function, *runtime.NativeFn, *runtime.Class:
		default:
			return nil, fmt.Errorf("schedule() expects a callable as its second argument, got %s", callable.Type())
		}

		var callArgs []runtime.Value
		if len(args) == 3 {
			arr, err := asArray("schedule", args[2])
			if err != nil {
				return nil, err
			}
			callArgs = make([]runtime.Value, len(arr.Elements))
			visited := make(map[runtime.Value]runtime.Value)
			for i, el := range arr.Elements {
				callArgs[i] = deepClone(el, visited)
			}
		}

		id := ev.ScheduleTimer(time.Duration(delayMs)*time.Millisecond, func() {
			_, _ = ev.CallValue(callable, callArgs)
		})
		return numValue(id), nil
	})
}
