package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/fitlog/internal/domain"
)

func newRoutinesCmd(opts *rootOptions) *cobra.Command {
	routinesCmd := &cobra.Command{
		Use:   "routines",
		Short: "List workout routines and their statistics",
	}

	var (
		workoutType string
		search      string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List routines, optionally by type or matching a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workoutType != "" && search != "" {
				return errors.New("--type and --search cannot be combined")
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var routines []domain.Routine
			switch {
			case workoutType != "":
				routines, err = a.routines.ByType(cmd.Context(), domain.WorkoutType(workoutType))
			default:
				routines, err = a.routines.Search(cmd.Context(), search)
			}
			if err != nil {
				return fmt.Errorf("list routines: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, routines)
		},
	}
	listCmd.Flags().StringVar(&workoutType, "type", "", "routine type [strength | cardio | flexibility | mixed]")
	listCmd.Flags().StringVar(&search, "search", "", "match against name, description and tags")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Count routines by type and favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.routines.Statistics(cmd.Context())
			if err != nil {
				return fmt.Errorf("routine statistics: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, stats)
		},
	}

	routinesCmd.AddCommand(listCmd, statsCmd)
	return routinesCmd
}
