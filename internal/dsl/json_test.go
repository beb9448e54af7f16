package dsl_test

import (
	"testing"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func TestToJSONPreservesKeyOrder(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("b", runtime.Number{Value: 2})
	obj.Set("a", runtime.Number{Value: 1})
	got, err := dsl.ToJSON(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"b":2,"a":1}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestToJSONArrayAndScalars(t *testing.T) {
	arr := &runtime.Array{Elements: []runtime.Value{
		runtime.Number{Value: 1}, runtime.String{Value: "x"}, runtime.Boolean{Value: true}, runtime.Null{},
	}}
	got, err := dsl.ToJSON(arr)
	if err != nil {
		t.Fatal(err)
	}
	want := `[1,"x",true,null]`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
