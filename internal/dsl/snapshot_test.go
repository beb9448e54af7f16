package dsl_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// Golden snapshot tests for the DSL lowering layer, in the style of
// go-dws's interp fixture tests: the lowered document's JSON form is the
// durable artifact under test, not the Go map shape, so a snapshot catches
// accidental reordering or field drops the way a parser/AST snapshot
// catches accidental tree-shape drift.

func TestQueryLoweringSnapshot(t *testing.T) {
	conds := []dsl.Condition{
		{Field: "a", Op: "==", Value: runtime.Number{Value: 1}},
		{Field: "a", Op: ">", Value: runtime.Number{Value: 0}},
		{Field: "b", Op: "!=", Value: runtime.Number{Value: 2}},
	}
	doc, err := dsl.BuildQuery(conds)
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchJSON(t, doc)
}

func TestHelperCompositionSnapshot(t *testing.T) {
	cond := dsl.AndOr("$and", []runtime.Value{
		dsl.Eq("status", runtime.String{Value: "active"}),
		dsl.Gte("age", runtime.Number{Value: 18}),
	})
	text, err := dsl.ToJSON(cond)
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchSnapshot(t, text)
}

func TestStageHelpersSnapshot(t *testing.T) {
	stages := &runtime.Array{Elements: []runtime.Value{
		dsl.Stage("match", dsl.Eq("status", runtime.String{Value: "active"})),
		dsl.Stage("sort", runtime.NewObject()),
		dsl.Count("total"),
	}}
	text, err := dsl.ToJSON(stages)
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchSnapshot(t, text)
}
