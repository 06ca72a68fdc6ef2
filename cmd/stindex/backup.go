package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/stindex/internal/backup"
)

var (
	flagSnapshotDir string
	flagOverwrite   bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the database",
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupListCmd)

	backupCreateCmd.Flags().StringVar(&flagSnapshotDir, "dir", "", "snapshot directory (default: backups/ next to the database)")
	backupListCmd.Flags().StringVar(&flagSnapshotDir, "dir", "", "snapshot directory (default: backups/ next to the database)")
	backupRestoreCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "replace an existing target database")
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a compressed snapshot of the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return outputError("backup create", err)
		}
		defer s.Close()

		snap, err := backup.Create(cmd.Context(), s, flagSnapshotDir)
		if err != nil {
			return outputError("backup create", err)
		}
		return outputResult(CLIResult{Command: "backup create", Results: CLISnapshot{
			Path:   snap.Path,
			Digest: snap.Digest,
			Size:   snap.Size,
		}})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot> <target>",
	Short: "Verify a snapshot and restore it to a database path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := filepath.Abs(args[0])
		if err != nil {
			return outputError("backup restore", err)
		}
		target, err := filepath.Abs(args[1])
		if err != nil {
			return outputError("backup restore", err)
		}
		digest, err := backup.Verify(snapshot)
		if err != nil {
			return outputError("backup restore", err)
		}
		if err := backup.Restore(snapshot, target, flagOverwrite); err != nil {
			return outputError("backup restore", err)
		}
		fmt.Fprintf(os.Stderr, "Restored %s to %s\n", filepath.Base(snapshot), target)
		return outputResult(CLIResult{Command: "backup restore", Results: CLISnapshot{
			Path:   snapshot,
			Digest: digest,
			Target: target,
		}})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := flagSnapshotDir
		if dir == "" {
			dbPath, err := resolveDBPath()
			if err != nil {
				return outputError("backup list", err)
			}
			dir = filepath.Join(filepath.Dir(dbPath), "backups")
		}
		paths, err := backup.List(dir)
		if err != nil {
			return outputError("backup list", err)
		}
		results := make([]CLISnapshot, 0, len(paths))
		for _, p := range paths {
			snap := CLISnapshot{Path: p}
			if info, err := os.Stat(p); err == nil {
				snap.Size = info.Size()
			}
			results = append(results, snap)
		}
		return outputResult(CLIResult{Command: "backup list", Results: results})
	},
}
