/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depletions/config"
	"depletions/internal/logging"
)

var (
	cfgFile string
	dbPath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "depletions",
	Short: "Import, validate, edit, and submit distributor depletions.",
	Long: `
**********************************************
*              DEPLETIONS                    *
**********************************************

This CLI bulk-imports depletion files (CSV, Excel), validates every row against the
product and seller directory, keeps a working list in a local SQLite database, and
submits the list to the directory in batches.

Supported input formats:
- Excel: .xlsx, .xlsm
- CSV: .csv, .txt, .tsv
`,
	Example: `
  # Create configuration file
  depletions config create

  # Load a local catalog for sqlite mode
  depletions catalog load --products products.csv --sellers sellers.csv --accounts accounts.csv --types "Case,Bottles"

  # Select the account that owns the working list
  depletions account validate --tax-id B12345678 --email ops@example.com

  # Import a depletion file and write a validation report
  depletions import -i march.csv --report ./march-report.csv

  # Review, edit, and submit the working list
  depletions list
  depletions edit 3f1c... --set quantity=12
  depletions submit
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(logging.Config{
			Level:  viper.GetString(config.KeyLogLevel),
			Format: viper.GetString(config.KeyLogFormat),
		})
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.depletions.yaml, then ./.depletions.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./depletions.db", "Path to local SQLite database")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".depletions")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: depletions config create")
	}
}
