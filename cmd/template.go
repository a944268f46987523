package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"depletions/output"
)

var (
	templateOutput string
	templateFormat string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an empty import template",
	Long: `Write an import template with the configured column names.

The Excel variant adds an Instructions sheet listing the required columns and the
movement types the directory accepts.`,
	Example: `
  depletions template --output ./depletions-template.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		types, err := a.session.MovementTypes(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("template without movement types")
		}

		format := resolveOutputFormat(templateFormat, templateOutput)
		file, err := os.Create(templateOutput)
		if err != nil {
			return fmt.Errorf("create template file: %w", err)
		}
		if err := output.WriteTemplate(file, format, output.Template{Columns: a.cfg.Import.Columns, AllowedTypes: types}); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close template file: %w", err)
		}

		fmt.Printf("Template written to %s\n", templateOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file path")
	templateCmd.Flags().StringVar(&templateFormat, "format", "", "Template format: csv or excel (default: from extension)")
	_ = templateCmd.MarkFlagRequired("output")
}
