package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localeforge/localeforge/internal/client/syncstate"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and manage the persisted sync state",
	}
	cmd.AddCommand(
		newStateClearCmd(),
		newStateMigrateCmd(),
	)
	return cmd
}

func newStateClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the sync state; the next sync starts from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			store := a.mgr.Store()
			if !store.Exists() {
				fmt.Fprintln(cmd.OutOrStdout(), "no sync state to clear")
				return nil
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("cleared"), store.Path())
			return nil
		},
	}
}

func newStateMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Replace a legacy sync state file with a fresh current-schema one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newLocalApp()
			if err != nil {
				return err
			}

			store := a.mgr.Store()
			res, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case res.State != nil:
				fmt.Fprintln(out, "sync state is already current; nothing to migrate")
				return nil
			case res.NeedsMigration:
				// legacy per-file hashes do not map onto the per-entry
				// shape, so migration starts fresh; the next sync rebuilds
				// the hashes and until then every two-sided difference is
				// surfaced as a conflict
				if err := store.Save(syncstate.New()); err != nil {
					return err
				}
				fmt.Fprintln(out, green("migrated"), store.Path())
				fmt.Fprintln(out, "note: the next sync rebuilds the entry hashes; review reported conflicts carefully")
				return nil
			case res.Corrupted:
				return fmt.Errorf("sync state is corrupted, not legacy; run 'lforge state clear' instead")
			default:
				fmt.Fprintln(out, "no sync state file; nothing to migrate")
				return nil
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(newStateCmd())
}
