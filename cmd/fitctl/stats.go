package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/fitlog/internal/stats"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workout statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			statistics, err := a.stats.Statistics(cmd.Context())
			if err != nil {
				return fmt.Errorf("get statistics: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, statistics)
		},
	}

	var weeks int
	weeklyCmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show training volume per week, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks <= 0 {
				return fmt.Errorf("weeks must be positive, got %d", weeks)
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			volume, err := a.stats.WeeklyVolume(cmd.Context(), weeks)
			if err != nil {
				return fmt.Errorf("get weekly volume: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, volume)
		},
	}
	weeklyCmd.Flags().IntVar(&weeks, "weeks", stats.DefaultWeeklyVolumeWeeks, "number of weeks to show")

	statsCmd.AddCommand(weeklyCmd)
	return statsCmd
}
