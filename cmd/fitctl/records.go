package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	var (
		exerciseID string
		recent     int
	)

	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Show personal records",
		Long:  "Show the personal records ledger, the records of one exercise (--exercise) or the latest records (--recent).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if exerciseID != "" && recent > 0 {
				return fmt.Errorf("--exercise and --recent cannot be combined")
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			switch {
			case exerciseID != "":
				exerciseRecords, err := a.records.ExerciseRecords(ctx, exerciseID)
				if err != nil {
					return fmt.Errorf("get records of %s: %w", exerciseID, err)
				}
				return printOutput(cmd.OutOrStdout(), opts.output, exerciseRecords)
			case recent > 0:
				recentRecords, err := a.records.Recent(ctx, recent)
				if err != nil {
					return fmt.Errorf("get recent records: %w", err)
				}
				return printOutput(cmd.OutOrStdout(), opts.output, recentRecords)
			}

			ledger, err := a.records.Ledger(ctx)
			if err != nil {
				return fmt.Errorf("get records ledger: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, ledger)
		},
	}
	recordsCmd.Flags().StringVar(&exerciseID, "exercise", "", "exercise id to show records for")
	recordsCmd.Flags().IntVar(&recent, "recent", 0, "show this many most recent records")

	return recordsCmd
}
