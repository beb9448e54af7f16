package lexer_test

import (
	"testing"

	"github.com/dstanley-scripts/datascript/internal/lexer"
	"github.com/dstanley-scripts/datascript/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", src, err)
	}
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestOperators(t *testing.T) {
	cases := map[string][]token.Kind{
		"== != !! <= >= <- && || |> ??": {
			token.EQ, token.NEQ, token.BANG2, token.LTE, token.GTE,
			token.ARROW, token.AND, token.OR, token.PIPE, token.DBLQST, token.EOF,
		},
		"! ? = < >": {token.BANG, token.QUESTION, token.ASSIGN, token.LT, token.GT, token.EOF},
	}
	for src, want := range cases {
		got := kinds(t, src)
		if len(got) != len(want) {
			t.Fatalf("%q: got %v, want %v", src, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%q: token %d = %v, want %v", src, i, got[i], want[i])
			}
		}
	}
}

func TestKeywords(t *testing.T) {
	toks, err := lexer.Tokenize("let const declare func class schema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.LET, token.CONST, token.DECLARE, token.FUNC, token.CLASS, token.SCHEMA, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestNumbers(t *testing.T) {
	toks, err := lexer.Tokenize("1 2.5 .5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "2.5", "0.5"}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Errorf("literal %d = %q, want %q", i, toks[i].Lexeme, w)
		}
	}
}

func TestTrailingDotIsFatal(t *testing.T) {
	if _, err := lexer.Tokenize("1."); err == nil {
		t.Fatal("expected error for trailing '.' with no digits")
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	if _, err := lexer.Tokenize(`"abc`); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestStringEscapes(t *testing.T) {
	toks, err := lexer.Tokenize(`"a\"b\\c\nd\te\qf"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\"b\\c\nd\teqf"
	if toks[0].Lexeme != want {
		t.Errorf("got %q, want %q", toks[0].Lexeme, want)
	}
}

func TestLineComment(t *testing.T) {
	toks, err := lexer.Tokenize("1 // comment\n2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 3 || toks[0].Lexeme != "1" || toks[1].Lexeme != "2" {
		t.Errorf("comment was not stripped correctly: %+v", toks)
	}
}

func TestUnknownCharacterIsFatal(t *testing.T) {
	if _, err := lexer.Tokenize("@"); err == nil {
		t.Fatal("expected error for unknown character")
	}
}
