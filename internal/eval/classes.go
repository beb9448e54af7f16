package eval

import (
	"fmt"
	"strings"

	"github.com/dstanley-scripts/datascript/internal/ast"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/runtime"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// evalClassDeclaration builds a Class value, combining base fields/methods/
// constructor parameters with this declaration's own (spec.md §4.6:
// same-name members override, in the base's position; new members append).
func (e *Evaluator) evalClassDeclaration(s *ast.ClassDeclaration, env *runtime.Environment) (*runtime.Class, error) {
	var base *runtime.Class
	if s.Base != "" {
		v, err := env.LookupVar(s.Base)
		if err != nil {
			return nil, e.fatalf(s.Pos(), derrors.KindScope, "%s", err)
		}
		b, ok := v.(*runtime.Class)
		if !ok {
			return nil, e.fatalf(s.Pos(), derrors.KindType, "cannot extend %q: not a class", s.Base)
		}
		base = b
	}

	class := &runtime.Class{Name: s.Name, Base: s.Base, Env: env}

	if base != nil {
		class.Fields = append(class.Fields, base.Fields...)
		class.Methods = append(class.Methods, base.Methods...)
		class.ConstructorParams = append(class.ConstructorParams, base.ConstructorParams...)
		class.HasConstructor = base.HasConstructor
	}
	for _, f := range s.Fields {
		rf := runtime.ClassField{Name: f.Name, Annotation: f.Annotation, Required: f.Required, Init: f.Init}
		class.Fields = mergeField(class.Fields, rf)
	}
	for _, m := range s.Methods {
		rm := runtime.ClassMethod{Name: m.Name, Params: m.Params, Body: m.Body}
		class.Methods = mergeMethod(class.Methods, rm)
	}
	if s.HasConstructor {
		class.ConstructorParams = mergeParams(class.ConstructorParams, s.ConstructorParams)
		class.HasConstructor = true
	}

	return class, nil
}

func mergeField(fields []runtime.ClassField, f runtime.ClassField) []runtime.ClassField {
	for i, existing := range fields {
		if existing.Name == f.Name {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}

func mergeMethod(methods []runtime.ClassMethod, m runtime.ClassMethod) []runtime.ClassMethod {
	for i, existing := range methods {
		if existing.Name == m.Name {
			methods[i] = m
			return methods
		}
	}
	return append(methods, m)
}

func mergeParams(base []ast.Param, cur []ast.Param) []ast.Param {
	combined := append([]ast.Param{}, base...)
	for _, cp := range cur {
		replaced := false
		for i, bp := range combined {
			if bp.Name == cp.Name {
				combined[i] = cp
				replaced = true
				break
			}
		}
		if !replaced {
			combined = append(combined, cp)
		}
	}
	return combined
}

// instantiate builds an instance of c (spec.md §4.6's instantiation steps).
func (e *Evaluator) instantiate(c *runtime.Class, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	var named *runtime.Object
	if len(args) == 1 {
		if obj, ok := args[0].(*runtime.Object); ok {
			named = obj
		}
	}

	paramOrder := c.ConstructorParams
	if len(paramOrder) == 0 {
		paramOrder = fieldsAsParams(c.Fields)
	}

	provided := make(map[string]runtime.Value)
	if named != nil {
		for _, key := range named.Keys() {
			if _, ok := c.FieldByName(key); !ok {
				return nil, e.fatalf(pos, derrors.KindType, "class %q: %q is not a declared field", c.Name, key)
			}
			v, _ := named.Get(key)
			provided[key] = v
		}
	} else {
		if len(args) > len(paramOrder) {
			return nil, e.fatalf(pos, derrors.KindType, "class %q: too many arguments (%d > %d)", c.Name, len(args), len(paramOrder))
		}
		for i, p := range paramOrder {
			if i < len(args) {
				provided[p.Name] = args[i]
			}
		}
	}

	instance := runtime.NewObject()
	instance.SchemaName = c.Name

	instEnv := c.Env.NewChild()
	if err := instEnv.DeclareVar("this", instance, false); err != nil {
		return nil, err
	}
	for _, f := range c.Fields {
		if err := instEnv.DeclareVar(f.Name, runtime.Null{}, false); err != nil {
			return nil, err
		}
	}

	for _, f := range c.Fields {
		var v runtime.Value
		switch {
		case provided[f.Name] != nil:
			v = provided[f.Name]
		case f.Init != nil:
			var err error
			v, err = e.evalExpr(f.Init, instEnv)
			if err != nil {
				return nil, err
			}
		case f.Required:
			return nil, e.fatalf(pos, derrors.KindType, "class %q: field %q is required", c.Name, f.Name)
		default:
			v = runtime.Null{}
		}
		if err := e.typeCheck(v, f.Annotation, f.Required, c.Name, f.Name, pos); err != nil {
			return nil, err
		}
		instance.Set(f.Name, v)
		_ = instEnv.AssignVar(f.Name, v)
	}

	hasSave := false
	for _, m := range c.Methods {
		instance.Set(m.Name, e.methodThunk(c, m, instance))
		if m.Name == "save" {
			hasSave = true
		}
	}
	if !hasSave {
		instance.Set("save", e.defaultSaveThunk(c, instance))
	}

	return instance, nil
}

func fieldsAsParams(fields []runtime.ClassField) []ast.Param {
	out := make([]ast.Param, len(fields))
	for i, f := range fields {
		out[i] = ast.Param{Name: f.Name, Annotation: f.Annotation, Default: f.Init}
	}
	return out
}

// defaultSaveThunk implements the default `save` method spec.md §4.6
// describes for classes that do not define their own: a payload object
// `{ __schema: C.name, field...: value }`.
func (e *Evaluator) defaultSaveThunk(c *runtime.Class, instance *runtime.Object) *runtime.NativeFn {
	return &runtime.NativeFn{Name: "save", Fn: func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		payload := runtime.NewObject()
		payload.Set("__schema", runtime.String{Value: c.Name})
		for _, f := range c.Fields {
			v, _ := instance.Get(f.Name)
			payload.Set(f.Name, v)
		}
		return payload, nil
	}}
}

// methodThunk implements spec.md §4.6's method binding: fields become
// locals seeded from the instance, parameters shadow/assign into those
// locals on a name collision, and on normal completion or Return the field
// locals are always written back into the instance.
func (e *Evaluator) methodThunk(c *runtime.Class, m runtime.ClassMethod, instance *runtime.Object) *runtime.NativeFn {
	return &runtime.NativeFn{Name: m.Name, Fn: func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		methodEnv := c.Env.NewChild()
		if err := methodEnv.DeclareVar("this", instance, false); err != nil {
			return nil, err
		}
		for _, f := range c.Fields {
			v, _ := instance.Get(f.Name)
			if err := methodEnv.DeclareVar(f.Name, v, false); err != nil {
				return nil, err
			}
		}
		if err := e.bindMethodParams(c, m, args, methodEnv); err != nil {
			return nil, err
		}

		result, err := e.evalStatements(m.Body, methodEnv)
		if err != nil {
			switch sig := err.(type) {
			case ReturnSignal:
				if werr := e.writeBackFields(c, methodEnv, instance); werr != nil {
					return nil, werr
				}
				return sig.Value, nil
			case BreakSignal:
				return nil, fmt.Errorf("method %q: break used outside of a loop", m.Name)
			case ContinueSignal:
				return nil, fmt.Errorf("method %q: continue used outside of a loop", m.Name)
			default:
				return nil, err
			}
		}
		if werr := e.writeBackFields(c, methodEnv, instance); werr != nil {
			return nil, werr
		}
		return result, nil
	}}
}

// bindMethodParams binds m's parameters into methodEnv. A parameter whose
// name collides with a field is assigned into the already-declared field
// local instead of shadowing it (spec.md §4.6).
func (e *Evaluator) bindMethodParams(c *runtime.Class, m runtime.ClassMethod, args []runtime.Value, methodEnv *runtime.Environment) error {
	if len(args) > len(m.Params) {
		return fmt.Errorf("method %q: too many arguments (%d > %d)", m.Name, len(args), len(m.Params))
	}
	for i, p := range m.Params {
		var v runtime.Value
		if i < len(args) {
			v = args[i]
		} else if p.Default != nil {
			var err error
			v, err = e.evalExpr(p.Default, methodEnv)
			if err != nil {
				return err
			}
		} else {
			return fmt.Errorf("method %q: missing required argument %q", m.Name, p.Name)
		}
		required := p.Default == nil
		if err := e.typeCheck(v, p.Annotation, required, c.Name, p.Name, token.Position{}); err != nil {
			return err
		}
		if _, isField := c.FieldByName(p.Name); isField {
			if err := methodEnv.AssignVar(p.Name, v); err != nil {
				return err
			}
			continue
		}
		if err := methodEnv.DeclareVar(p.Name, v, false); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) writeBackFields(c *runtime.Class, methodEnv *runtime.Environment, instance *runtime.Object) error {
	for _, f := range c.Fields {
		v, err := methodEnv.LookupVar(f.Name)
		if err != nil {
			continue
		}
		if err := e.typeCheck(v, f.Annotation, f.Required, c.Name, f.Name, token.Position{}); err != nil {
			return err
		}
		instance.Set(f.Name, v)
	}
	return nil
}

// typeCheck implements spec.md §4.6's type-check algorithm.
func (e *Evaluator) typeCheck(value runtime.Value, ann *ast.TypeAnnotation, required bool, schemaName, name string, pos token.Position) error {
	if ann == nil {
		return nil
	}
	return e.typeCheckRec(value, ann.Base, ann.ArrayDepth, required, schemaName, name, pos)
}

func (e *Evaluator) typeCheckRec(value runtime.Value, base string, depth int, required bool, schemaName, name string, pos token.Position) error {
	baseLower := strings.ToLower(base)
	if baseLower == "any" {
		return nil
	}
	if !required {
		if _, isNull := value.(runtime.Null); isNull {
			return nil
		}
	}
	if depth > 0 {
		arr, ok := value.(*runtime.Array)
		if !ok {
			return e.typeMismatch(schemaName, name, base+strings.Repeat("[]", depth), value.Type(), pos)
		}
		for _, el := range arr.Elements {
			if err := e.typeCheckRec(el, base, depth-1, true, schemaName, name, pos); err != nil {
				return err
			}
		}
		return nil
	}
	switch baseLower {
	case "string", "number", "boolean", "null", "array", "object":
		if value.Type() != baseLower {
			return e.typeMismatch(schemaName, name, base, value.Type(), pos)
		}
		return nil
	default:
		obj, ok := value.(*runtime.Object)
		if !ok || !strings.EqualFold(obj.SchemaName, base) {
			actual := value.Type()
			if o, ok := value.(*runtime.Object); ok && o.SchemaName != "" {
				actual = o.SchemaName
			}
			return e.typeMismatch(schemaName, name, base, actual, pos)
		}
		return nil
	}
}

func (e *Evaluator) typeMismatch(schemaName, name, expected, actual string, pos token.Position) error {
	label := name
	if schemaName != "" {
		label = schemaName + "." + name
	}
	return e.fatalf(pos, derrors.KindType, "%s: expected %s, got %s", label, expected, actual)
}
