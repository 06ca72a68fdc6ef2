package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/stindex"
)

var (
	flagSummarizeLimit  int
	flagSummarizeDryRun bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Fill in missing entry summaries",
	Long:  "Runs the summary script over stored entries that have no summary, such as those imported with --skip-summary, and commits the results in one transaction.",
	Args:  cobra.NoArgs,
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVar(&flagSummarizeLimit, "limit", 0, "summarize at most this many entries, in outline order")
	summarizeCmd.Flags().BoolVar(&flagSummarizeDryRun, "dry-run", false, "run the script and report without writing")
	summarizeCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load summary scripts from disk path instead of embedded")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if flagSummarizeLimit < 0 {
		return outputError("summarize", fmt.Errorf("invalid --limit %d: must be non-negative", flagSummarizeLimit))
	}
	var opts []stindex.Option
	if flagScriptsDir != "" {
		opts = append(opts, stindex.WithScriptsDir(flagScriptsDir))
	}
	engine, err := openEngine(opts...)
	if err != nil {
		return outputError("summarize", err)
	}
	defer engine.Close()

	sum, err := engine.Summarize(cmd.Context(), stindex.SummarizeOptions{
		Limit:  flagSummarizeLimit,
		DryRun: flagSummarizeDryRun,
	})
	if err != nil {
		return outputError("summarize", fmt.Errorf("summarizing: %w", err))
	}
	return outputResult(CLIResult{Command: "summarize", Results: runSummaryToCLI(sum)})
}
