package dsl

import (
	"fmt"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Condition is one parsed `query { field op value }` clause.
type Condition struct {
	Field string
	Op    string // ==, !=, <, <=, >, >=
	Value runtime.Value
}

var compareOps = map[string]string{
	"!=": "$ne",
	"<":  "$lt",
	"<=": "$lte",
	">":  "$gt",
	">=": "$gte",
}

// BuildQuery lowers parsed conditions into a plain filter document per
// spec.md §4.7's query builder rules: `==` assigns the field directly unless
// a comparator object already lives there (then it merges in as `$eq`);
// every other operator merges into a comparator object at that field,
// promoting a prior scalar `==` assignment to `$eq` first.
func BuildQuery(conds []Condition) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, c := range conds {
		val, err := ToPlain(c.Value)
		if err != nil {
			return nil, err
		}
		if c.Op == "==" {
			if existing, ok := out[c.Field].(map[string]interface{}); ok {
				existing["$eq"] = val
			} else {
				out[c.Field] = val
			}
			continue
		}
		mongoOp, ok := compareOps[c.Op]
		if !ok {
			return nil, fmt.Errorf("unknown query operator %q", c.Op)
		}
		if existing, ok := out[c.Field].(map[string]interface{}); ok {
			existing[mongoOp] = val
			continue
		}
		comparator := make(map[string]interface{})
		if prior, exists := out[c.Field]; exists {
			comparator["$eq"] = prior
		}
		comparator[mongoOp] = val
		out[c.Field] = comparator
	}
	return out, nil
}
