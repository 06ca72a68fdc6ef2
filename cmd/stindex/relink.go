package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/stindex"
)

var (
	flagRelinkChapter int
	flagRelinkLimit   int
	flagBackup        bool
	flagBackupDir     string
	flagRelinkDryRun  bool
)

var relinkCmd = &cobra.Command{
	Use:   "relink",
	Short: "Link citations missed by earlier imports",
	Long:  "Scans stored entry content for unmarked Bible citations, wraps them in citation anchors and indexes them. Already linked citations are left alone, so the pass can be repeated safely.",
	Args:  cobra.NoArgs,
	RunE:  runRelink,
}

func init() {
	relinkCmd.Flags().IntVar(&flagRelinkChapter, "chapter", 0, "only scan entries of this chapter")
	relinkCmd.Flags().IntVar(&flagRelinkLimit, "limit", 0, "scan at most this many entries, in outline order")
	relinkCmd.Flags().BoolVar(&flagBackup, "backup", false, "snapshot the database before writing")
	relinkCmd.Flags().StringVar(&flagBackupDir, "backup-dir", "", "snapshot directory (default: backups/ next to the database)")
	relinkCmd.Flags().BoolVar(&flagRelinkDryRun, "dry-run", false, "report what would be linked without writing")
}

func runRelink(cmd *cobra.Command, args []string) error {
	if flagRelinkLimit < 0 {
		return outputError("relink", fmt.Errorf("invalid --limit %d: must be non-negative", flagRelinkLimit))
	}
	engine, err := openEngine()
	if err != nil {
		return outputError("relink", err)
	}
	defer engine.Close()

	opts := stindex.RelinkOptions{
		Limit:     flagRelinkLimit,
		Backup:    flagBackup,
		BackupDir: flagBackupDir,
		DryRun:    flagRelinkDryRun,
	}
	if cmd.Flags().Changed("chapter") {
		ch := flagRelinkChapter
		opts.Chapter = &ch
	}

	sum, err := engine.Relink(cmd.Context(), opts)
	if err != nil {
		return outputError("relink", fmt.Errorf("relinking: %w", err))
	}
	return outputResult(CLIResult{Command: "relink", Results: runSummaryToCLI(sum)})
}
