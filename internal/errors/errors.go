// Package errors renders fatal Datascript diagnostics with source context,
// adapted from go-dws's compiler error formatter and generalized with a Kind
// taxonomy matching spec.md §7.
package errors

import (
	"fmt"
	"strings"

	"github.com/dstanley-scripts/datascript/internal/token"
)

// Kind classifies a fatal error per spec.md §7's taxonomy.
type Kind string

const (
	KindLex      Kind = "lex"
	KindParse    Kind = "parse"
	KindScope    Kind = "scope"
	KindType     Kind = "type"
	KindEval     Kind = "eval"
	KindModule   Kind = "module"
	KindDSL      Kind = "dsl"
	KindControl  Kind = "control-flow"
)

// Diagnostic is a single fatal error with position and source context.
type Diagnostic struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// New creates a Diagnostic.
func New(kind Kind, pos token.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Source: source, File: file, Pos: pos}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format()
}

// Format renders a single-line-of-context diagnostic with a caret, in the
// style go-dws uses for compiler errors.
func (d *Diagnostic) Format() string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "%s error in %s:%d:%d\n", d.Kind, d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s error at %d:%d\n", d.Kind, d.Pos.Line, d.Pos.Column)
	}

	if line := sourceLine(d.Source, d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(d.Pos.Column-1)))
		sb.WriteString("^\n")
	}

	sb.WriteString(d.Message)
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
