package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"depletions/output"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the working list to CSV or Excel",
	Example: `
  # Export to CSV
  depletions export --output ./depletions.csv

  # Export to Excel
  depletions export --output ./depletions.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		writer, err := output.WriterForFormat(resolveOutputFormat(exportFormat, exportOutput))
		if err != nil {
			return err
		}

		records := a.session.Records()
		if err := output.WriteFile(exportOutput, writer, records); err != nil {
			return err
		}
		fmt.Printf("Exported %d depletions to %s\n", len(records), exportOutput)
		return nil
	},
}

// resolveOutputFormat prefers the explicit format and falls back to the
// output file extension.
func resolveOutputFormat(format, path string) string {
	if strings.TrimSpace(format) != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: csv or excel (default: from extension)")
	_ = exportCmd.MarkFlagRequired("output")
}
