package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstanley-scripts/datascript/internal/config"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

// loadConfig reads the project file named by --config (default
// datascript.yaml in the working directory); a missing file yields
// config.Default() rather than an error.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "datascript",
	Short: "Datascript interpreter",
	Long: `datascript runs the Datascript scripting language: a small
dynamically-typed language with optional type annotations, first-class
schemas, lexical modules, structured exception handling, cooperative
asynchrony, and an embedded document-store DSL.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "datascript.yaml", "project config file (module paths, default document-store URI/limit)")
}
