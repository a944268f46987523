package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage depletions configuration file values.",
	Long: `Create, edit, display, and delete the depletions configuration file.

The configuration stores application-wide values:
- directory.mode / url / token / timeout
- import.delimiter / block_invalid_type / quantity_min / quantity_max / columns.*
- submit.batch_size
- log.level / format`,
	Example: `
  # Create default config in $HOME/.depletions.yaml
  depletions config create

  # Show active config and source file
  depletions config show

  # Open active config in editor (creates example if missing)
  depletions config edit

  # Delete active config file
  depletions config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
