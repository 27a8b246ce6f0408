package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGoalsCmd(opts *rootOptions) *cobra.Command {
	goalsCmd := &cobra.Command{
		Use:   "goals",
		Short: "List goals and refresh their progress",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			goals, err := a.goals.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list goals: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, goals)
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute the progress of every goal and settle due ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.goals.UpdateAll(cmd.Context())
			if err != nil {
				// a partial refresh still reports what it did
				if printErr := printOutput(cmd.OutOrStdout(), opts.output, result); printErr != nil {
					return printErr
				}
				return fmt.Errorf("refresh goals: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, result)
		},
	}

	goalsCmd.AddCommand(listCmd, refreshCmd)
	return goalsCmd
}
