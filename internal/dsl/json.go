package dsl

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// ToJSON renders v as a JSON document. Objects and arrays are assembled with
// tidwall/sjson one field/element at a time, which appends rather than
// resorts, so source key order survives into the rendered text (spec.md
// §9's "print-style stringification is best-effort, toJSON is the stable
// form").
func ToJSON(v runtime.Value) (string, error) {
	return buildJSON(v)
}

func scalarJSON(x interface{}) (string, error) {
	wrapped, err := sjson.Set("{}", "v", x)
	if err != nil {
		return "", err
	}
	return gjson.Get(wrapped, "v").Raw, nil
}

func buildJSON(v runtime.Value) (string, error) {
	if v == nil {
		return "null", nil
	}
	switch val := v.(type) {
	case runtime.Null:
		return "null", nil
	case runtime.Boolean:
		return scalarJSON(val.Value)
	case runtime.Number:
		return scalarJSON(val.Value)
	case runtime.String:
		return scalarJSON(val.Value)
	case *runtime.Array:
		doc := "[]"
		for i, el := range val.Elements {
			child, err := buildJSON(el)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, strconv.Itoa(i), child)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case *runtime.Object:
		doc := "{}"
		var errOut error
		val.Range(func(name string, value runtime.Value) bool {
			child, err := buildJSON(value)
			if err != nil {
				errOut = err
				return false
			}
			doc, err = sjson.SetRaw(doc, name, child)
			if err != nil {
				errOut = err
				return false
			}
			return true
		})
		if errOut != nil {
			return "", errOut
		}
		return doc, nil
	default:
		return "", fmt.Errorf("cannot serialize a %s value to JSON", v.Type())
	}
}
