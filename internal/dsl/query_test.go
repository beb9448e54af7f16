package dsl_test

import (
	"testing"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func TestBuildQueryMergesComparatorsOnSameField(t *testing.T) {
	conds := []dsl.Condition{
		{Field: "a", Op: "==", Value: runtime.Number{Value: 1}},
		{Field: "a", Op: ">", Value: runtime.Number{Value: 0}},
		{Field: "b", Op: "!=", Value: runtime.Number{Value: 2}},
	}
	doc, err := dsl.BuildQuery(conds)
	if err != nil {
		t.Fatal(err)
	}
	a, ok := doc["a"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a to be a comparator object, got %#v", doc["a"])
	}
	if a["$eq"] != 1.0 || a["$gt"] != 0.0 {
		t.Errorf("expected {$eq:1,$gt:0}, got %#v", a)
	}
	b, ok := doc["b"].(map[string]interface{})
	if !ok || b["$ne"] != 2.0 {
		t.Errorf("expected b {$ne:2}, got %#v", doc["b"])
	}
}

func TestBuildQueryPlainEquality(t *testing.T) {
	doc, err := dsl.BuildQuery([]dsl.Condition{{Field: "name", Op: "==", Value: runtime.String{Value: "ada"}}})
	if err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "ada" {
		t.Errorf("expected plain scalar assignment, got %#v", doc["name"])
	}
}
