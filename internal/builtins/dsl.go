package builtins

import (
	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// registerDSL installs the query/update condition helpers and aggregation
// stage helpers spec.md §4.8 lists alongside the document-store DSL:
// `match, project, sort, limit, skip, group, lookup, unwind, addFields,
// count, eq, ne, gt, gte, lt, lte, and, or`. Each just builds the plain
// `{ $op: ... }` document internal/dsl/helpers.go describes; the DSL
// operators (<- ! !! ? ?? |>) consume the result the same way they consume
// a `query { ... }` expression.
func registerDSL(ev *eval.Evaluator) {
	comparator := func(name string, fn func(field string, v runtime.Value) *runtime.Object) {
		define(ev, name, func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
			if err := wantExact(name, args, 2); err != nil {
				return nil, err
			}
			field, err := asString(name, args[0])
			if err != nil {
				return nil, err
			}
			return fn(field, args[1]), nil
		})
	}
	comparator("eq", dsl.Eq)
	comparator("ne", dsl.Ne)
	comparator("gt", dsl.Gt)
	comparator("gte", dsl.Gte)
	comparator("lt", dsl.Lt)
	comparator("lte", dsl.Lte)

	define(ev, "and", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		return dsl.AndOr("$and", args), nil
	})
	define(ev, "or", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		return dsl.AndOr("$or", args), nil
	})

	stage := func(name string) {
		define(ev, name, func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
			if err := wantExact(name, args, 1); err != nil {
				return nil, err
			}
			return dsl.Stage(name, args[0]), nil
		})
	}
	stage("match")
	stage("project")
	stage("sort")
	stage("limit")
	stage("skip")
	stage("group")
	stage("addFields")

	define(ev, "count", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("count", args, 1); err != nil {
			return nil, err
		}
		name, err := asString("count", args[0])
		if err != nil {
			return nil, err
		}
		return dsl.Count(name), nil
	})

	define(ev, "lookup", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		return dsl.Lookup(args)
	})

	define(ev, "unwind", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("unwind", args, 1); err != nil {
			return nil, err
		}
		return dsl.Unwind(args[0])
	})
}
