package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"depletions/submitter"
)

var submitDryRun bool

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the working list to the directory",
	Long: `Send every depletion of the working list to the directory in batches of
submit.batch_size.

Submission stops at the first failing batch. Depletions from batches that were
accepted are removed from the working list; the rest stay for a retry.`,
	Example: `
  # Show what would be sent
  depletions submit --dry-run

  # Submit
  depletions submit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if submitDryRun {
			records := a.session.Records()
			payload, err := submitter.BuildPayload(records, a.cfg.Import.QuantityMin, a.cfg.Import.QuantityMax)
			if err != nil {
				return err
			}
			batches := submitter.BuildBatches(payload, a.cfg.Submit.BatchSize)
			fmt.Printf("Dry run: %d depletions in %d batches\n", len(payload), len(batches))
			return printRecords(cmd.OutOrStdout(), records)
		}

		report, err := a.session.Submit(ctx, a.dir)
		if report.Submitted > 0 {
			if saveErr := a.save(); saveErr != nil {
				return errors.Join(err, saveErr)
			}
		}
		if err != nil {
			if report.Total > 0 {
				fmt.Printf("Submitted %d of %d depletions before the failure; %d remain in the working list\n", report.Submitted, report.Total, a.session.Len())
			}
			return err
		}

		fmt.Printf("Submitted %d depletions in %d batches\n", report.Submitted, report.Batches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Validate and show the payload without sending it")
}
