package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the movement types accepted by the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		types, err := a.session.MovementTypes(cmd.Context())
		if err != nil {
			return err
		}
		for _, value := range types {
			fmt.Println(value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
