package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"depletions/session"
)

var addDraft session.Draft

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one depletion to the working list",
	Long: `Add a single depletion entered by hand.

Product and distributor are given by id. Use --new-seller to create a new
distributor by name instead of referencing an existing one.`,
	Example: `
  # Add an entry for an existing distributor
  depletions add --product p-1 --seller s-1 --country ES --city Madrid --state MD --type Case --quantity 6

  # Add an entry and create the distributor
  depletions add --product p-1 --new-seller "Bodega Norte" --country ES --city Bilbao --state BI --type Bottles --quantity 24
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		draft := addDraft
		draft.UseNewSeller = draft.NewSellerName != ""

		record, err := a.session.Add(cmd.Context(), draft)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}

		fmt.Printf("Added %s: %s / %s, %s %d\n", record.Token, record.ProductName, record.SellerName, record.Type, record.Quantity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addDraft.ProductID, "product", "", "Product id")
	addCmd.Flags().StringVar(&addDraft.SellerID, "seller", "", "Distributor id")
	addCmd.Flags().StringVar(&addDraft.NewSellerName, "new-seller", "", "Create a distributor with this name instead of --seller")
	addCmd.Flags().StringVar(&addDraft.Country, "country", "", "Country")
	addCmd.Flags().StringVar(&addDraft.City, "city", "", "City")
	addCmd.Flags().StringVar(&addDraft.State, "state", "", "State")
	addCmd.Flags().StringVar(&addDraft.Type, "type", "", "Movement type")
	addCmd.Flags().StringVar(&addDraft.Quantity, "quantity", "", "Quantity")
}
