package datascript_test

import (
	"bytes"
	"testing"

	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/pkg/datascript"
)

// These mirror spec.md §8's six literal end-to-end acceptance scenarios.

func TestArithmeticAndStrings(t *testing.T) {
	var out bytes.Buffer
	e := datascript.New(datascript.WithWriter(&out))
	if err := e.Run(`declare x = 2 + 3 * 4; print(x); print("val=" + x);`, "<test>"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "14\nval=14\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestClassesWithInheritance(t *testing.T) {
	var out bytes.Buffer
	e := datascript.New(datascript.WithWriter(&out))
	src := `
schema A { required name: string; greet() { return "hi " + name; } }
schema B extends A { required age: number; }
declare b = B({ name: "ada", age: 9 });
print(b.greet()); print(typeOf(b));
`
	if err := e.Run(src, "<test>"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi ada\nB\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTryThrow(t *testing.T) {
	var out bytes.Buffer
	e := datascript.New(datascript.WithWriter(&out))
	if err := e.Run(`try { throw "boom"; } catch (e) { print("caught " + e); }`, "<test>"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "caught boom\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestModuleImport(t *testing.T) {
	var out bytes.Buffer
	e := datascript.New(datascript.WithWriter(&out), datascript.WithRoot("../../testdata/scripts"))
	if err := e.RunFile("../../testdata/scripts/module_import.ds"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "42\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestDSLQueryLowering(t *testing.T) {
	e := datascript.New()
	v, err := e.Eval(`query { a == 1, a > 0, b != 2 }`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dsl.ToJSON(v)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":{"$eq":1,"$gt":0},"b":{"$ne":2}}`
	if got != want {
		t.Errorf("lowering mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestAsyncSleepAwait(t *testing.T) {
	var out bytes.Buffer
	e := datascript.New(datascript.WithWriter(&out))
	if err := e.Run(`declare p = sleep(1); await p; print("done");`, "<test>"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "done\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}
