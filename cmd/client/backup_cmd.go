package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage pull backups",
	}
	cmd.AddCommand(
		newBackupListCmd(),
		newBackupCreateCmd(),
		newBackupRestoreCmd(),
		newBackupPruneCmd(),
	)
	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			backups, err := a.mgr.Backups().ListBackups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no backups")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d bytes\n",
					b.Timestamp.Format("2006-01-02 15:04:05"), b.Name, b.Size)
			}
			return nil
		},
	}
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot the project's resources and metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			path, err := a.mgr.Backups().CreateBackup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("created"), path)
			return nil
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the project from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			if err := a.mgr.Backups().RestoreBackup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("restored"), "from", args[0])
			return nil
		},
	}
}

func newBackupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the N most recent backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			removed, err := a.mgr.Backups().PruneBackups(keep)
			if err != nil {
				return err
			}
			for _, path := range removed {
				fmt.Fprintln(cmd.OutOrStdout(), red("removed"), path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d backup(s) removed\n", len(removed))
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 5, "number of backups to keep")
	return cmd
}

func init() {
	rootCmd.AddCommand(newBackupCmd())
}
