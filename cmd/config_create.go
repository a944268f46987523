package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depletions/config"
)

var configCreateDirectoryURL string

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

With --directory-url the template resolves products, sellers and accounts over
HTTP instead of the local SQLite catalog. The generated file is validated
before it is written. If a configuration file is already in use, no new file
is written.`,
	Example: `
  # Create default config at $HOME/.depletions.yaml
  depletions config create

  # Point the directory client at a CRM endpoint
  depletions config create --directory-url https://crm.example.com/api
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreateDirectoryURL)
	},
}

func saveDefaultConfig(directoryURL string) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	content, err := configTemplate(directoryURL)
	if err != nil {
		return err
	}

	created, err := ensureConfigFile(configPath, content)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

// configTemplate renders the example config, switched to http mode when
// directoryURL is set.
func configTemplate(directoryURL string) ([]byte, error) {
	content := config.ExampleYAML()
	if directoryURL = strings.TrimSpace(directoryURL); directoryURL != "" {
		content = strings.Replace(content, `mode: "sqlite"`, `mode: "http"`, 1)
		content = strings.Replace(content, `url: ""`, fmt.Sprintf("url: %q", directoryURL), 1)
	}
	if _, err := config.ValidateYAMLContent([]byte(content)); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}
	return []byte(content), nil
}

func init() {
	configCreateCmd.Flags().StringVar(&configCreateDirectoryURL, "directory-url", "", "Use the HTTP directory at this base URL")
	configCmd.AddCommand(configCreateCmd)
}
