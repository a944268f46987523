package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove depletions from the working list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, token := range args {
			if err := a.session.Remove(token); err != nil {
				if saveErr := a.save(); saveErr != nil {
					return saveErr
				}
				return err
			}
			fmt.Printf("Removed %s\n", token)
		}
		return a.save()
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
