// Package runtime defines Datascript's tagged-union runtime values and the
// lexical environment that binds names to them (spec.md §3).
package runtime

import (
	"strconv"
	"strings"
	"sync"

	"github.com/dstanley-scripts/datascript/internal/ast"
)

// Value is any runtime value. All ten variants below (Null through Promise) implement it.
type Value interface {
	Type() string
	String() string
}

// Null is the sole null value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// Number wraps a 64-bit float.
type Number struct{ Value float64 }

func (Number) Type() string { return "number" }
func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Boolean wraps a bit.
type Boolean struct{ Value bool }

func (Boolean) Type() string { return "boolean" }
func (b Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// String wraps immutable Unicode text.
type String struct{ Value string }

func (String) Type() string   { return "string" }
func (s String) String() string { return s.Value }

// Array is an ordered, mutable sequence of Value.
type Array struct {
	Elements []Value
}

func (*Array) Type() string { return "array" }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = shallowString(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// objectEntry is one ordered (name, value) slot of an Object.
type objectEntry struct {
	name  string
	value Value
}

// Object is an ordered identifier->Value mapping, optionally tagged with
// the schema it was instantiated from.
type Object struct {
	entries    []objectEntry
	index      map[string]int
	SchemaName string // "" if untagged
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

func (*Object) Type() string { return "object" }

func (o *Object) String() string {
	parts := make([]string, 0, len(o.entries))
	for _, e := range o.entries {
		parts = append(parts, e.name+": "+shallowString(e.value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the property value and whether it is present.
func (o *Object) Get(name string) (Value, bool) {
	if o.index == nil {
		return nil, false
	}
	idx, ok := o.index[name]
	if !ok {
		return nil, false
	}
	return o.entries[idx].value, true
}

// Set creates or overwrites a property, preserving insertion order on first
// creation.
func (o *Object) Set(name string, value Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if idx, ok := o.index[name]; ok {
		o.entries[idx].value = value
		return
	}
	o.index[name] = len(o.entries)
	o.entries = append(o.entries, objectEntry{name: name, value: value})
}

// Has reports whether name is a property of o.
func (o *Object) Has(name string) bool {
	_, ok := o.index[name]
	return ok
}

// Keys returns property names in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.name
	}
	return keys
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.entries) }

// Range calls f for each property in insertion order, stopping early if f
// returns false.
func (o *Object) Range(f func(name string, value Value) bool) {
	for _, e := range o.entries {
		if !f(e.name, e.value) {
			return
		}
	}
}

// Function is a user-defined closure: its parameter list, body, and the
// environment it was declared in.
type Function struct {
	Name    string
	Params  []ast.Param
	Body    []ast.Stmt
	Env     *Environment
}

func (*Function) Type() string   { return "function" }
func (f *Function) String() string { return "<function " + f.Name + ">" }

// NativeFn is an opaque builtin callable: (args, env) -> Value, possibly via
// a Promise observed only at an await or DSL boundary (spec.md §9).
type NativeFn struct {
	Name string
	Fn   func(args []Value, env *Environment) (Value, error)
}

func (*NativeFn) Type() string   { return "native-function" }
func (n *NativeFn) String() string { return "<native " + n.Name + ">" }

// ClassField is one declared field of a Class.
type ClassField struct {
	Name       string
	Annotation *ast.TypeAnnotation
	Required   bool
	Init       ast.Expr
}

// ClassMethod is one declared method of a Class.
type ClassMethod struct {
	Name   string
	Params []ast.Param
	Body   []ast.Stmt
}

// Class is a schema/class declaration: combined fields, methods, and
// constructor parameter list after base-class merging (spec.md §4.6).
type Class struct {
	Name              string
	Base              string
	Fields            []ClassField
	Methods           []ClassMethod
	ConstructorParams []ast.Param
	HasConstructor    bool
	Env               *Environment
}

func (*Class) Type() string   { return "class" }
func (c *Class) String() string { return "<class " + c.Name + ">" }

// FieldByName returns the field declaration with the given name, if any.
func (c *Class) FieldByName(name string) (ClassField, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ClassField{}, false
}

// MethodByName returns the method declaration with the given name, if any.
func (c *Class) MethodByName(name string) (ClassMethod, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return ClassMethod{}, false
}

// Promise wraps an eventual Value. Suspension points are exactly `await`
// expressions (spec.md §5); natives like `sleep` that need real wall-clock
// time settle the promise from a background timer goroutine, so Resolve/Wait
// are safe to call from a goroutine other than the evaluator's.
type Promise struct {
	mu    sync.Mutex
	done  bool
	value Value
	err   error
	ready chan struct{}
}

// NewPromise creates an unresolved Promise.
func NewPromise() *Promise {
	return &Promise{ready: make(chan struct{})}
}

func (*Promise) Type() string   { return "promise" }
func (*Promise) String() string { return "<promise>" }

// Resolve settles the promise with value (or err). Only the first call has
// an effect.
func (p *Promise) Resolve(value Value, err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.value = value
	p.err = err
	p.mu.Unlock()
	close(p.ready)
}

// Wait blocks the calling goroutine until the promise settles, then returns
// its value or error. This is the only suspension primitive `await` needs.
func (p *Promise) Wait() (Value, error) {
	<-p.ready
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// IsDone reports whether the promise has already settled.
func (p *Promise) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// shallowString renders a one-level-deep summary of v, used by Array/Object
// String() so nested compounds don't recurse into unbounded output
// (SPEC_FULL.md §3, Open Question Resolution 2).
func shallowString(v Value) string {
	switch v.(type) {
	case *Array:
		return "[Array]"
	case *Object:
		return "[Object]"
	default:
		return v.String()
	}
}

// Truthy implements spec.md §4.5's truthiness lattice.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Null:
		return false
	case Boolean:
		return val.Value
	case Number:
		return val.Value != 0
	case String:
		return val.Value != ""
	case *Array:
		return len(val.Elements) != 0
	case *Object:
		return val.Len() != 0
	default:
		return true
	}
}

// TypeTag returns the lowercase type-tag name used by typeOf/type-checks for
// untagged values. Tagged objects should be inspected for SchemaName first.
func TypeTag(v Value) string {
	return v.Type()
}

func init() {
	// Compile-time assertions that every spec.md §3 Value variant really
	// implements the Value interface.
	var (
		_ Value = Null{}
		_ Value = Number{}
		_ Value = Boolean{}
		_ Value = String{}
		_ Value = (*Array)(nil)
		_ Value = (*Object)(nil)
		_ Value = (*Function)(nil)
		_ Value = (*NativeFn)(nil)
		_ Value = (*Class)(nil)
		_ Value = (*Promise)(nil)
	)
}
