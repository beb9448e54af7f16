package dsl

import "github.com/dstanley-scripts/datascript/internal/runtime"

// Operation is the chainable wrapper every DSL operator and update
// statement returns (spec.md §4.7): `{ value, collection, unwrap, valueOf,
// toJSON, thenInsert, thenInsertMany, thenDelete, thenDeleteMany, thenFind,
// thenFindMany, thenAggregate, thenUpdate, thenUpdateMany }`. Member access
// on an Operation (the property names above) is handled in
// internal/eval/dsl.go, which calls back into this package's operator
// functions for the then* continuations.
type Operation struct {
	LastResult runtime.Value
	Collection CollectionHandle
}

func (*Operation) Type() string     { return "operation" }
func (o *Operation) String() string { return "<operation " + o.LastResult.String() + ">" }

// CollectionValue wraps a CollectionHandle so it can flow through the
// language as a runtime.Value (bound by `collection`/`use collection`, or
// produced by Operation.collection).
type CollectionValue struct {
	Handle CollectionHandle
}

func (*CollectionValue) Type() string     { return "collection" }
func (c *CollectionValue) String() string { return "<collection " + c.Handle.Name() + ">" }

// DatabaseValue wraps a DatabaseHandle so it can flow through the language
// as a runtime.Value (bound by `database`, or produced by `using mongo`).
type DatabaseValue struct {
	Handle DatabaseHandle
}

func (*DatabaseValue) Type() string     { return "database" }
func (d *DatabaseValue) String() string { return "<database " + d.Handle.Name() + ">" }

// Unwrap returns the value a DSL operand sees: an Operation's lastResult, or
// v itself for anything else (spec.md §8's "Operation-chain transparency"
// property).
func Unwrap(v runtime.Value) runtime.Value {
	if op, ok := v.(*Operation); ok {
		return op.LastResult
	}
	return v
}

// CollectionOf resolves v to a CollectionHandle: directly from a
// CollectionValue, or from the collection an Operation last acted against.
func CollectionOf(v runtime.Value) (CollectionHandle, bool) {
	switch val := v.(type) {
	case *CollectionValue:
		return val.Handle, true
	case *Operation:
		if val.Collection != nil {
			return val.Collection, true
		}
	}
	return nil, false
}
