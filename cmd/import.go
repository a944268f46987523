package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"depletions/depletion"
	"depletions/importer"
	"depletions/output"
)

var (
	importInputs     []string
	importFormat     string
	importReportPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import depletion files into the working list",
	Long: `Parse, resolve, and validate depletion files and append the accepted rows to the
working list of the validated account.

Each file is one batch. A structurally broken file, a file without any product or
distributor values, or a failed directory lookup rejects the whole batch and stops
the import; files imported before it are kept. Otherwise every row is checked and
all row messages are printed; valid rows are kept.`,
	Example: `
  # Import one CSV file
  depletions import -i march.csv

  # Import two files and write the row messages of both to one report
  depletions import -i march.xlsx -i april.csv --report ./import-report.csv

  # Force CSV parsing for a file with another extension
  depletions import -i export.dat --format csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return importFiles(cmd.Context(), a, os.Stdout, importInputs, importFormat, importReportPath)
	},
}

// importFiles imports inputs in order and stops at the first rejected batch.
// The working list and the report are written on every path.
func importFiles(ctx context.Context, a *app, out io.Writer, inputs []string, format, reportPath string) error {
	var report []output.ReportFile
	importErr := func() error {
		for _, input := range inputs {
			messages, err := importOne(ctx, a, out, input, format)
			report = append(report, output.ReportFile{Name: input, Errors: messages})
			if err != nil {
				return fmt.Errorf("import %s: %w", input, err)
			}
		}
		return nil
	}()

	if err := a.save(); err != nil {
		return errors.Join(importErr, err)
	}
	fmt.Fprintf(out, "Working list: %d depletions\n", a.session.Len())

	if reportPath != "" {
		if err := writeReportFile(reportPath, report); err != nil {
			return errors.Join(importErr, err)
		}
		fmt.Fprintf(out, "Validation report written to %s\n", reportPath)
	}
	return importErr
}

// importOne imports a single file and returns the messages for the report.
func importOne(ctx context.Context, a *app, out io.Writer, input, format string) ([]depletion.ValidationError, error) {
	format, err := importer.InferFormat(input, format)
	if err != nil {
		return batchMessages(err), err
	}

	file, err := os.Open(input)
	if err != nil {
		err = fmt.Errorf("open input file: %w", err)
		return batchMessages(err), err
	}
	defer file.Close()

	scanner, err := importer.ScannerForFormat(format, file, importer.ParseOptions{Delimiter: a.cfg.Import.DelimiterRune()})
	if err != nil {
		return batchMessages(err), err
	}

	result, err := a.session.Import(ctx, scanner)
	if err != nil {
		var batchErr *importer.BatchError
		if errors.As(err, &batchErr) {
			fmt.Fprintf(out, "%s: import rejected\n", input)
			for _, message := range batchErr.Messages() {
				fmt.Fprintf(out, "  %s\n", message)
			}
		}
		return batchMessages(err), err
	}

	fmt.Fprintf(out, "%s: read %d rows, accepted %d, rejected %d\n", input, result.RowsRead, result.RowsAccepted, result.RowsRejected)
	for _, message := range result.Messages() {
		fmt.Fprintf(out, "  %s\n", message)
	}

	zerolog.Ctx(ctx).Info().
		Str("file", input).
		Str("format", format).
		Int("accepted", result.RowsAccepted).
		Int("rejected", result.RowsRejected).
		Msg("import finished")
	return result.Errors, nil
}

// batchMessages turns a file-level failure into report lines. Structural
// errors keep their line numbers.
func batchMessages(err error) []depletion.ValidationError {
	var batchErr *importer.BatchError
	if errors.As(err, &batchErr) && len(batchErr.ParseErrors) > 0 {
		out := make([]depletion.ValidationError, 0, len(batchErr.ParseErrors))
		for _, parseErr := range batchErr.ParseErrors {
			out = append(out, depletion.ValidationError{Line: parseErr.Line, Message: parseErr.Message})
		}
		return out
	}
	return []depletion.ValidationError{{Message: err.Error()}}
}

func writeReportFile(path string, files []output.ReportFile) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := output.WriteValidationReport(file, files); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv, tsv, or excel (default: inferred from extension)")
	importCmd.Flags().StringVar(&importReportPath, "report", "", "Write row messages of all files as a CSV report to this path")
	_ = importCmd.MarkFlagRequired("input")
}
