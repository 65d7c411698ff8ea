package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending changes and conflicts without syncing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			result, err := a.mgr.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, bold("remote:"), a.cfg.RemoteURL)
			printConflicts(out, result.Conflicts)
			fmt.Fprintln(out, bold("pending on pull:"))
			printDiff(out, result.Diff)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}
