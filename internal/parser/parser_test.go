package parser_test

import (
	"testing"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return prog
}

func TestParseVarDeclaration(t *testing.T) {
	prog := mustParse(t, `declare x = 2 + 3 * 4;`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDeclaration)
	if !ok {
		t.Fatalf("expected *ast.VarDeclaration, got %T", prog.Statements[0])
	}
	if decl.Name != "x" || decl.Const {
		t.Errorf("unexpected decl: %+v", decl)
	}
	bin, ok := decl.Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected init to be *ast.BinaryExpr, got %T", decl.Init)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("expected '*' to bind tighter than '+': got %#v", bin)
	}
}

func TestConstWithoutInitializerIsFatal(t *testing.T) {
	if _, err := parser.Parse(`declare const x;`, "<test>"); err == nil {
		t.Fatal("expected error for const without initializer")
	}
}

func TestParseClassWithInheritance(t *testing.T) {
	src := `
	schema A { required name: string; greet() { return "hi " + name; } }
	schema B extends A { required age: number; }
	`
	prog := mustParse(t, src)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	b := prog.Statements[1].(*ast.ClassDeclaration)
	if b.Base != "A" {
		t.Errorf("expected base 'A', got %q", b.Base)
	}
	if len(b.Fields) != 1 || !b.Fields[0].Required {
		t.Errorf("unexpected fields: %+v", b.Fields)
	}
}

func TestParseTryCatchRequiresCatch(t *testing.T) {
	if _, err := parser.Parse(`try { throw "x"; }`, "<test>"); err == nil {
		t.Fatal("expected error: try without catch")
	}
	prog := mustParse(t, `try { throw "x"; } catch (e) { print(e); }`)
	tc := prog.Statements[0].(*ast.TryCatchStatement)
	if tc.CatchParam != "e" {
		t.Errorf("expected catch param 'e', got %q", tc.CatchParam)
	}
}

func TestParseImportExposing(t *testing.T) {
	prog := mustParse(t, `import "./m.ds" exposing { add };`)
	imp := prog.Statements[0].(*ast.ImportStatement)
	if imp.Specifier != "./m.ds" || len(imp.Exposing) != 1 || imp.Exposing[0].Name != "add" {
		t.Errorf("unexpected import: %+v", imp)
	}
}

func TestParseQueryExpr(t *testing.T) {
	prog := mustParse(t, `declare q = query { a == 1, a > 0, b != 2 };`)
	decl := prog.Statements[0].(*ast.VarDeclaration)
	q := decl.Init.(*ast.MongoQueryExpr)
	if len(q.Conditions) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(q.Conditions))
	}
}

func TestParseMongoOperators(t *testing.T) {
	prog := mustParse(t, `col <- doc; col ? query { a == 1 }; col |> pipeline;`)
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	for _, s := range prog.Statements {
		es := s.(*ast.ExprStatement)
		if _, ok := es.Expr.(*ast.MongoOperationExpr); !ok {
			t.Errorf("expected *ast.MongoOperationExpr, got %T", es.Expr)
		}
	}
}

func TestParseUpdateExpr(t *testing.T) {
	prog := mustParse(t, `col update many where query { a == 1 } set { $set: x } with opts;`)
	es := prog.Statements[0].(*ast.ExprStatement)
	u := es.Expr.(*ast.MongoUpdateExpr)
	if !u.Many || u.Options == nil {
		t.Errorf("unexpected update expr: %+v", u)
	}
}

func TestParseUsingMongo(t *testing.T) {
	src := `using mongo from "uri" database "db" as conn with opts { collection users; }`
	prog := mustParse(t, src)
	u := prog.Statements[0].(*ast.UsingStatement)
	if u.Alias != "conn" || u.Database == nil || u.Options == nil || len(u.Body) != 1 {
		t.Errorf("unexpected using statement: %+v", u)
	}
}

func TestAssignmentTargetMustBeIdentifier(t *testing.T) {
	if _, err := parser.Parse(`1 = 2;`, "<test>"); err == nil {
		t.Fatal("expected error: assignment target must be identifier")
	}
}
