package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"depletions/importer"
)

// Template describes the import file handed out to users.
type Template struct {
	Columns      importer.Columns
	AllowedTypes []string
}

func (t Template) exampleRow() []string {
	movementType := "Case"
	if len(t.AllowedTypes) > 0 {
		movementType = t.AllowedTypes[0]
	}
	return []string{"SKU-0001", "Example Distributor", "US", "Austin", "TX", movementType, "12"}
}

// WriteTemplate writes an import template in format (csv or excel). The
// Excel variant adds an Instructions sheet.
func WriteTemplate(out io.Writer, format string, template Template) error {
	columns := template.Columns.WithDefaults()
	switch normalizeFormat(format) {
	case "", "csv":
		return writeCSV(out, columns.Headers(), [][]string{template.exampleRow()})
	case "excel", "xlsx":
		return writeExcelTemplate(out, columns, template)
	default:
		return fmt.Errorf("unsupported template format: %s", format)
	}
}

// TemplateContentType returns the MIME type and file extension for format.
func TemplateContentType(format string) (string, string) {
	switch normalizeFormat(format) {
	case "excel", "xlsx":
		return contentTypeXLSX, ".xlsx"
	default:
		return "text/csv; charset=utf-8", ".csv"
	}
}

func writeExcelTemplate(out io.Writer, columns importer.Columns, template Template) error {
	file := excelize.NewFile()
	defer file.Close()

	const dataSheet = "Depletions"
	const helpSheet = "Instructions"
	if err := file.SetSheetName(file.GetSheetName(0), dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(file, dataSheet, 1, columns.Headers()); err != nil {
		return err
	}
	if err := setRow(file, dataSheet, 2, template.exampleRow()); err != nil {
		return err
	}

	if _, err := file.NewSheet(helpSheet); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}
	lines := []string{
		"Fill one depletion per row on the first sheet. Empty rows are ignored.",
		"Required columns: " + strings.Join(columns.Required(), ", "),
		fmt.Sprintf("%s must be a whole number between 1 and 99999.", columns.Quantity),
		fmt.Sprintf("%s and %s must match existing records exactly.", columns.Product, columns.Seller),
	}
	if len(template.AllowedTypes) > 0 {
		lines = append(lines, fmt.Sprintf("Allowed values for %s: %s", columns.Type, strings.Join(template.AllowedTypes, ", ")))
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetCellValue(helpSheet, cell, line); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel template: %w", err)
	}
	return nil
}
