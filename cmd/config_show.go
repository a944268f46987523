package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depletions/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  depletions config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		fmt.Println("Configuration:")
		fmt.Printf("directory.mode: %s\n", cfg.Directory.Mode)
		fmt.Printf("directory.url: %s\n", cfg.Directory.URL)
		tokenState := "(not set)"
		if cfg.Directory.Token != "" {
			tokenState = "(set)"
		}
		fmt.Printf("directory.token: %s\n", tokenState)
		fmt.Printf("directory.timeout: %s\n", cfg.Directory.Timeout)
		fmt.Printf("import.delimiter: %q\n", string(cfg.Import.DelimiterRune()))
		fmt.Printf("import.block_invalid_type: %t\n", cfg.Import.BlockInvalidType)
		fmt.Printf("import.quantity_min: %d\n", cfg.Import.QuantityMin)
		fmt.Printf("import.quantity_max: %d\n", cfg.Import.QuantityMax)
		columns := cfg.Import.Columns.WithDefaults()
		fmt.Printf("import.columns.product: %s\n", columns.Product)
		fmt.Printf("import.columns.seller: %s\n", columns.Seller)
		fmt.Printf("import.columns.country: %s\n", columns.Country)
		fmt.Printf("import.columns.city: %s\n", columns.City)
		fmt.Printf("import.columns.state: %s\n", columns.State)
		fmt.Printf("import.columns.type: %s\n", columns.Type)
		fmt.Printf("import.columns.quantity: %s\n", columns.Quantity)
		fmt.Printf("submit.batch_size: %d\n", cfg.Submit.BatchSize)
		fmt.Printf("log.level: %s\n", cfg.Log.Level)
		fmt.Printf("log.format: %s\n", cfg.Log.Format)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
