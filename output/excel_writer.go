package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"depletions/depletion"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExcelWriter struct{}

func (w *ExcelWriter) ContentType() string { return contentTypeXLSX }

func (w *ExcelWriter) Extension() string { return ".xlsx" }

func (w *ExcelWriter) Write(out io.Writer, records []depletion.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetName(sheet, "Depletions"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sheet = "Depletions"

	if err := setRow(file, sheet, 1, exportHeaders); err != nil {
		return err
	}
	for i, record := range records {
		values := exportRow(record)
		if err := setRow(file, sheet, i+2, values[:len(values)-1]); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(len(values), i+2)
		if err := file.SetCellInt(sheet, cell, int64(record.Quantity)); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}
	return nil
}

func setRow(file *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}
