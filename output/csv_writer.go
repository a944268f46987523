package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"depletions/depletion"
)

type CSVWriter struct{}

func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (w *CSVWriter) Extension() string { return ".csv" }

func (w *CSVWriter) Write(out io.Writer, records []depletion.Record) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, exportRow(record))
	}
	return writeCSV(out, exportHeaders, rows)
}

func writeCSV(out io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
