package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/kr/pretty"
	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/dstanley-scripts/datascript/internal/parser"
	"github.com/dstanley-scripts/datascript/pkg/datascript"
)

var (
	evalExpr    string
	dumpAST     bool
	trace       bool
	showModules bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Datascript file or expression",
	Long: `Execute a Datascript program from a file or inline expression.

Examples:
  # Run a script file
  datascript run script.ds

  # Evaluate an inline expression
  datascript run -e "print(1 + 2);"

  # Run with AST dump (for debugging)
  datascript run --dump-ast script.ds`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running (via kr/pretty)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print a line naming the file before it runs")
	runCmd.Flags().BoolVar(&showModules, "show-modules", false, "print the loaded module paths, naturally sorted, after running")
}

func runScript(cmd *cobra.Command, args []string) error {
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

	if dumpAST {
		program, err := parser.Parse(input, filename)
		if err != nil {
			return err
		}
		fmt.Printf("%# v\n", pretty.Formatter(program))
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if trace {
		fmt.Fprintf(os.Stderr, "[trace] running %s\n", filename)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verbose && cfg.DefaultURI != "" {
		fmt.Fprintf(os.Stderr, "[config] default document-store URI: %s\n", cfg.DefaultURI)
	}

	engine := datascript.New()
	if evalExpr != "" {
		err = engine.Run(input, filename)
	} else {
		err = engine.RunFile(filename)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}

	if showModules {
		paths := engine.Loader().LoadedPaths()
		sort.Slice(paths, func(i, j int) bool { return natural.Less(paths[i], paths[j]) })
		fmt.Fprintln(os.Stderr, "--- loaded modules ---")
		for _, p := range paths {
			fmt.Fprintln(os.Stderr, engine.Loader().PathLabel(p))
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "done")
	}
	return nil
}
