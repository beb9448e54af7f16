package dsl

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// ToPlain converts a runtime Value to the plain Go shape the driver
// understands (spec.md §4.7's Runtime→Plain conversion). Function, NativeFn,
// Class, and Promise values are fatal.
func ToPlain(v runtime.Value) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case runtime.Null:
		return nil, nil
	case runtime.Number:
		return val.Value, nil
	case runtime.Boolean:
		return val.Value, nil
	case runtime.String:
		return val.Value, nil
	case *runtime.Array:
		out := make([]interface{}, len(val.Elements))
		for i, el := range val.Elements {
			p, err := ToPlain(el)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case *runtime.Object:
		out := make(map[string]interface{}, val.Len())
		var errOut error
		val.Range(func(name string, value runtime.Value) bool {
			p, err := ToPlain(value)
			if err != nil {
				errOut = err
				return false
			}
			out[name] = p
			return true
		})
		if errOut != nil {
			return nil, errOut
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert a %s value into a document", v.Type())
	}
}

// FromPlain converts a plain driver value back into a runtime Value
// (spec.md §4.7's Plain→Runtime conversion). ObjectId-like values render as
// their string form; Date values render as ISO-8601 strings.
func FromPlain(x interface{}) runtime.Value {
	switch val := x.(type) {
	case nil:
		return runtime.Null{}
	case primitive.ObjectID:
		return runtime.String{Value: val.Hex()}
	case primitive.DateTime:
		return runtime.String{Value: val.Time().UTC().Format(time.RFC3339Nano)}
	case time.Time:
		return runtime.String{Value: val.UTC().Format(time.RFC3339Nano)}
	case bool:
		return runtime.Boolean{Value: val}
	case string:
		return runtime.String{Value: val}
	case int:
		return runtime.Number{Value: float64(val)}
	case int32:
		return runtime.Number{Value: float64(val)}
	case int64:
		return runtime.Number{Value: float64(val)}
	case float32:
		return runtime.Number{Value: float64(val)}
	case float64:
		return runtime.Number{Value: val}
	case primitive.A:
		arr := &runtime.Array{Elements: make([]runtime.Value, len(val))}
		for i, el := range val {
			arr.Elements[i] = FromPlain(el)
		}
		return arr
	case []interface{}:
		arr := &runtime.Array{Elements: make([]runtime.Value, len(val))}
		for i, el := range val {
			arr.Elements[i] = FromPlain(el)
		}
		return arr
	case primitive.M:
		return fromPlainMap(val)
	case map[string]interface{}:
		return fromPlainMap(val)
	case primitive.D:
		obj := runtime.NewObject()
		for _, e := range val {
			obj.Set(e.Key, FromPlain(e.Value))
		}
		return obj
	default:
		return runtime.String{Value: fmt.Sprintf("%v", val)}
	}
}

// fromPlainMap renders a plain Go map as an Object. Go maps have no
// inherent order, so keys are sorted for determinism; the key order of the
// document the map came from is not preserved.
func fromPlainMap(m map[string]interface{}) runtime.Value {
	obj := runtime.NewObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj.Set(k, FromPlain(m[k]))
	}
	return obj
}
