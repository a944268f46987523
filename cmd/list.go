package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"depletions/depletion"
	"depletions/storage"
)

var listSubmitted bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the working list",
	Example: `
  # Show pending depletions
  depletions list

  # Show depletions already submitted to the local directory
  depletions list --submitted
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if listSubmitted {
			submitted, err := a.store.ListDepletions()
			if err != nil {
				return err
			}
			return printSubmitted(os.Stdout, submitted)
		}

		if accountID := a.session.AccountID(); accountID != "" {
			fmt.Printf("Account: %s\n", accountID)
		}
		return printRecords(os.Stdout, a.session.Records())
	},
}

func printRecords(out io.Writer, records []depletion.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "Working list is empty.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tDISTRIBUTOR\tCOUNTRY\tCITY\tSTATE\tTYPE\tQUANTITY")
	for _, record := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			record.Token, record.ProductName, record.SellerName,
			record.Country, record.City, record.State, record.Type, record.Quantity)
	}
	return tw.Flush()
}

func printSubmitted(out io.Writer, submitted []storage.SubmittedDepletion) error {
	if len(submitted) == 0 {
		_, err := fmt.Fprintln(out, "No submitted depletions.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBATCH\tSUBMITTED\tACCOUNT\tPRODUCT\tDISTRIBUTOR\tTYPE\tQUANTITY")
	for _, item := range submitted {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			item.ID, item.BatchID, item.SubmittedAt,
			item.AccountID, item.ProductID, item.SellerID, item.Type, item.Quantity)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listSubmitted, "submitted", false, "List submitted depletions from the local database")
}
