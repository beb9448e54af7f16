package runtime_test

import (
	"testing"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func TestLexicalResolutionAndShadowing(t *testing.T) {
	root := runtime.NewEnvironment()
	if err := root.DeclareVar("x", runtime.Number{Value: 1}, false); err != nil {
		t.Fatal(err)
	}
	child := root.NewChild()
	if v, err := child.LookupVar("x"); err != nil || v.(runtime.Number).Value != 1 {
		t.Fatalf("expected child to resolve x from parent, got %v, %v", v, err)
	}
	if err := child.DeclareVar("x", runtime.Number{Value: 2}, false); err != nil {
		t.Fatal(err)
	}
	if v, _ := child.LookupVar("x"); v.(runtime.Number).Value != 2 {
		t.Errorf("expected shadowed x=2 in child, got %v", v)
	}
	if v, _ := root.LookupVar("x"); v.(runtime.Number).Value != 1 {
		t.Errorf("expected parent x to remain 1, got %v", v)
	}
}

func TestRedeclarationInSameScopeIsFatal(t *testing.T) {
	env := runtime.NewEnvironment()
	if err := env.DeclareVar("x", runtime.Null{}, false); err != nil {
		t.Fatal(err)
	}
	if err := env.DeclareVar("x", runtime.Null{}, false); err == nil {
		t.Fatal("expected redeclaration to be fatal")
	}
}

func TestConstReassignmentIsFatalAtAnyDepth(t *testing.T) {
	root := runtime.NewEnvironment()
	if err := root.DeclareVar("x", runtime.Number{Value: 1}, true); err != nil {
		t.Fatal(err)
	}
	deep := root.NewChild().NewChild().NewChild()
	if err := deep.AssignVar("x", runtime.Number{Value: 2}); err == nil {
		t.Fatal("expected assignment to const to be fatal regardless of scope depth")
	}
}

func TestUnknownNameLookupIsFatal(t *testing.T) {
	env := runtime.NewEnvironment()
	if _, err := env.LookupVar("nope"); err == nil {
		t.Fatal("expected lookup of unknown name to be fatal")
	}
}

func TestTruthinessLattice(t *testing.T) {
	falsey := []runtime.Value{
		runtime.Null{}, runtime.Boolean{Value: false}, runtime.Number{Value: 0},
		runtime.String{Value: ""}, &runtime.Array{}, runtime.NewObject(),
	}
	for _, v := range falsey {
		if runtime.Truthy(v) {
			t.Errorf("expected %v (%s) to be falsey", v, v.Type())
		}
	}
	truthy := []runtime.Value{
		runtime.Boolean{Value: true}, runtime.Number{Value: 1}, runtime.String{Value: "x"},
	}
	for _, v := range truthy {
		if !runtime.Truthy(v) {
			t.Errorf("expected %v (%s) to be truthy", v, v.Type())
		}
	}
}
