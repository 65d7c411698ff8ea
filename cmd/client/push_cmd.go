package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localeforge/localeforge/internal/client/sync"
)

func newPushCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload local resource changes to the remote project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.mgr.Force = force

			result, err := a.mgr.Push(cmd.Context())
			printValidation(cmd.OutOrStdout(), result.Validation)
			printConflicts(cmd.OutOrStdout(), result.Conflicts)
			if err != nil {
				if errors.Is(err, sync.ErrConflictsDetected) {
					return fmt.Errorf("push refused; resolve the conflicts or re-run with --force")
				}
				return err
			}

			printDiff(cmd.OutOrStdout(), result.Diff)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "push even when conflicts are detected")
	return cmd
}

func init() {
	rootCmd.AddCommand(newPushCmd())
}
