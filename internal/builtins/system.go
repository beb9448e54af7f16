package builtins

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerSystem(ev *eval.Evaluator) {
	define(ev, "env", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("env", args, 1, 2); err != nil {
			return nil, err
		}
		name, err := asString("env", args[0])
		if err != nil {
			return nil, err
		}
		if v, ok := os.LookupEnv(name); ok {
			return strValue(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return runtime.Null{}, nil
	})

	define(ev, "uuid", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("uuid", args, 0); err != nil {
			return nil, err
		}
		return strValue(uuid.NewString()), nil
	})

	define(ev, "connect", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantRange("connect", args, 1, 2); err != nil {
			return nil, err
		}
		uri, err := asString("connect", args[0])
		if err != nil {
			return nil, err
		}
		dbName := ""
		if len(args) == 2 {
			dbName, err = asString("connect", args[1])
			if err != nil {
				return nil, err
			}
		}

		p := runtime.NewPromise()
		handle, err := ev.Connect(uri, dbName)
		if err != nil {
			p.Resolve(nil, err)
		} else {
			p.Resolve(&dsl.DatabaseValue{Handle: handle}, nil)
		}
		return p, nil
	})

	define(ev, "disconnect", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("disconnect", args, 0); err != nil {
			return nil, err
		}
		db := ev.ActiveDatabase()
		if db == nil {
			return nil, fmt.Errorf("disconnect(): no active database connection")
		}
		err := db.Handle.Close(ev.Context())
		ev.ClearActiveDatabase()
		if err != nil {
			return nil, err
		}
		return runtime.Null{}, nil
	})
}
