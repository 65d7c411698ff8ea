package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localeforge/localeforge/internal/client/remote"
	"github.com/localeforge/localeforge/internal/client/sync"
)

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <url>",
		Short: "Link the project directory to a remote LocaleForge project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteURL, err := remote.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := newLocalApp()
			if err != nil {
				return err
			}

			mgr := sync.NewManager(a.ws, a.cfg, remote.NewClient(remoteURL))
			result, err := mgr.Link(cmd.Context(), remoteURL)
			printValidation(cmd.OutOrStdout(), result.Validation)
			if err != nil {
				if errors.Is(err, sync.ErrValidationFailed) {
					return fmt.Errorf("cannot link to %s", remoteURL)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), green("linked"), "project to", bold(remoteURL.String()))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newLinkCmd())
}
