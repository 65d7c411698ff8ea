package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localeforge/localeforge/internal/client/sync"
)

func newPullCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Overwrite local resources with the remote project state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.mgr.Force = force

			result, err := a.mgr.Pull(cmd.Context())
			printValidation(cmd.OutOrStdout(), result.Validation)
			printConflicts(cmd.OutOrStdout(), result.Conflicts)
			if result.BackupPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "backup:", result.BackupPath)
			}
			if err != nil {
				if errors.Is(err, sync.ErrConflictsDetected) {
					return fmt.Errorf("pull refused; resolve the conflicts or re-run with --force")
				}
				return err
			}

			printDiff(cmd.OutOrStdout(), result.Diff)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "pull even when conflicts are detected")
	return cmd
}

func init() {
	rootCmd.AddCommand(newPullCmd())
}
