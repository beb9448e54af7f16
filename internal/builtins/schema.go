package builtins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func registerSchema(ev *eval.Evaluator) {
	define(ev, "schemaInfo", func(args []runtime.Value, _ *runtime.Environment) (runtime.Value, error) {
		if err := wantExact("schemaInfo", args, 1); err != nil {
			return nil, err
		}

		switch v := args[0].(type) {
		case *runtime.Class:
			return classSchemaInfo(v), nil
		case *runtime.Object:
			if v.SchemaName == "" {
				return nil, fmt.Errorf("schemaInfo() expects a class or a tagged instance, got an untagged object")
			}
			return instanceSchemaInfo(v), nil
		default:
			return nil, fmt.Errorf("schemaInfo() expects a class or a tagged instance, got %s", args[0].Type())
		}
	})
}

// classSchemaInfo implements spec.md §4.8's `{ kind, name, extends,
// fields:[{name,required,type,hasDefault}], methods:[name],
// constructor:[{name,type}] }` shape for a class value.
func classSchemaInfo(c *runtime.Class) *runtime.Object {
	out := runtime.NewObject()
	out.Set("kind", strValue("class"))
	out.Set("name", strValue(c.Name))
	out.Set("extends", schemaExtends(c.Base))

	fields := make([]string, len(c.Fields))
	byName := make(map[string]runtime.ClassField, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = f.Name
		byName[f.Name] = f
	}
	sort.Slice(fields, func(i, j int) bool { return natural.Less(fields[i], fields[j]) })

	fieldArr := make([]runtime.Value, len(fields))
	for i, name := range fields {
		f := byName[name]
		entry := runtime.NewObject()
		entry.Set("name", strValue(f.Name))
		entry.Set("required", boolValue(f.Required))
		entry.Set("type", strValue(typeAnnotationLabel(f.Annotation)))
		entry.Set("hasDefault", boolValue(f.Init != nil))
		fieldArr[i] = entry
	}
	out.Set("fields", &runtime.Array{Elements: fieldArr})

	methods := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		methods[i] = m.Name
	}
	sort.Slice(methods, func(i, j int) bool { return natural.Less(methods[i], methods[j]) })
	methodArr := make([]runtime.Value, len(methods))
	for i, name := range methods {
		methodArr[i] = strValue(name)
	}
	out.Set("methods", &runtime.Array{Elements: methodArr})

	ctorArr := make([]runtime.Value, len(c.ConstructorParams))
	for i, p := range c.ConstructorParams {
		entry := runtime.NewObject()
		entry.Set("name", strValue(p.Name))
		entry.Set("type", strValue(typeAnnotationLabel(p.Annotation)))
		ctorArr[i] = entry
	}
	out.Set("constructor", &runtime.Array{Elements: ctorArr})

	return out
}

// instanceSchemaInfo reports a tagged instance by its schema name only; the
// shape (fields/methods/constructor) belongs to the class that produced it,
// which is no longer reachable from a bare instance, so those lists are
// empty rather than fabricated.
func instanceSchemaInfo(o *runtime.Object) *runtime.Object {
	out := runtime.NewObject()
	out.Set("kind", strValue("instance"))
	out.Set("name", strValue(o.SchemaName))
	out.Set("extends", runtime.Null{})
	out.Set("fields", &runtime.Array{})
	out.Set("methods", &runtime.Array{})
	out.Set("constructor", &runtime.Array{})
	return out
}

func schemaExtends(base string) runtime.Value {
	if base == "" {
		return runtime.Null{}
	}
	return strValue(base)
}

// typeAnnotationLabel renders a TypeAnnotation back to its surface spelling
// (e.g. "string[][]"), or "any" for an unannotated field/parameter.
func typeAnnotationLabel(ann *ast.TypeAnnotation) string {
	if ann == nil {
		return "any"
	}
	return ann.Base + strings.Repeat("[]", ann.ArrayDepth)
}
