package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	accountTaxID string
	accountEmail string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the account that owns the working list",
}

var accountValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a tax id and email pair and select the account",
	Example: `
  depletions account validate --tax-id B12345678 --email ops@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		accountID, err := a.session.ValidateAccount(cmd.Context(), accountTaxID, accountEmail)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		fmt.Printf("Account validated: %s\n", accountID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountValidateCmd)

	accountValidateCmd.Flags().StringVar(&accountTaxID, "tax-id", "", "Account tax id")
	accountValidateCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
}
