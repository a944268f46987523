package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by depletions.

--configFile takes precedence over the file viper found. The SQLite database
named by --db is not touched; use "depletions delete" for that.
If no configuration file is active, the command returns an error.`,
	Example: `
  # Delete active config
  depletions config delete

  # Delete config at a custom path
  depletions --configFile ./custom-depletions.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := deleteConfigFile(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func deleteConfigFile(configFileFlag, configFileUsed string) (string, error) {
	configPath := strings.TrimSpace(configFileFlag)
	if configPath == "" {
		configPath = strings.TrimSpace(configFileUsed)
	}
	if configPath == "" {
		return "", fmt.Errorf("no configuration file found")
	}
	if configPath == dbPath {
		return "", fmt.Errorf("refusing to delete %s: it is the depletions database", configPath)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		return "", fmt.Errorf("error deleting configuration file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("configuration path is a directory: %s", configPath)
	}
	if err := os.Remove(configPath); err != nil {
		return "", fmt.Errorf("error deleting configuration file: %w", err)
	}
	return configPath, nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
