package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dstanley-scripts/datascript/internal/lexer"
	"github.com/dstanley-scripts/datascript/internal/token"
)

var (
	showPos  bool
	showKind bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Datascript file or expression",
	Long: `Tokenize (lex) a Datascript program and print the resulting tokens.

Examples:
  # Tokenize a script file
  datascript lex script.ds

  # Tokenize an inline expression
  datascript lex -e "declare x = 1;"

  # Show token kinds and positions
  datascript lex --show-kind --show-pos script.ds`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
}

func lexScript(_ *cobra.Command, args []string) error {
	var input, filename string

	switch {
	case evalExpr != "":
		input, filename = evalExpr, "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	toks, err := lexer.Tokenize(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("tokenizing %s failed", filename)
	}
	for _, tok := range toks {
		printToken(tok)
	}
	return nil
}

func printToken(tok token.Token) {
	var output string
	if showKind {
		output = fmt.Sprintf("[%-12s]", tok.Kind)
	}
	if tok.Kind == token.EOF {
		output += " EOF"
	} else if tok.Lexeme == "" {
		output += fmt.Sprintf(" %s", tok.Kind)
	} else {
		output += fmt.Sprintf(" %q", tok.Lexeme)
	}
	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(output)
}
