package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/stindex"
)

var (
	flagClear       bool
	flagResume      bool
	flagSkipSummary bool
	flagDryRun      bool
	flagInclude     string
	flagScriptsDir  string
)

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Import a systematic theology export",
	Long:  "Parses an HTML, XHTML or JSON export (or a directory of them), builds the outline, links citations and cross-references, and commits the result in one transaction.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagClear, "clear", false, "delete the existing outline and index before importing")
	importCmd.Flags().BoolVar(&flagResume, "resume", false, "skip files unchanged since their last import")
	importCmd.Flags().BoolVar(&flagSkipSummary, "skip-summary", false, "do not run the summary script")
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "parse and report without writing")
	importCmd.Flags().StringVar(&flagInclude, "include", "", "glob selecting files in a directory input")
	importCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load summary scripts from disk path instead of embedded")
}

func runImport(cmd *cobra.Command, args []string) error {
	input, err := resolveInput(args[0])
	if err != nil {
		return outputError("import", err)
	}

	var opts []stindex.Option
	if flagScriptsDir != "" {
		opts = append(opts, stindex.WithScriptsDir(flagScriptsDir))
	}
	engine, err := openEngine(opts...)
	if err != nil {
		return outputError("import", err)
	}
	defer engine.Close()

	sum, err := engine.Import(cmd.Context(), input, stindex.ImportOptions{
		Clear:       flagClear,
		Resume:      flagResume,
		SkipSummary: flagSkipSummary,
		DryRun:      flagDryRun,
		Include:     flagInclude,
	})
	if err != nil {
		return outputError("import", fmt.Errorf("importing: %w", err))
	}

	fmt.Fprintf(os.Stderr, "Imported %s in %s\n", input, sum.Duration.Round(time.Millisecond))
	return outputResult(CLIResult{Command: "import", Results: runSummaryToCLI(sum)})
}

// resolveInput returns the absolute path of an existing file or directory.
func resolveInput(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", arg, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("input not found: %s", abs)
	}
	return abs, nil
}
