package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelScanner reads the first sheet of a workbook. The first non-empty row
// is the header. Short rows are padded because spreadsheets drop trailing
// empty cells.
type ExcelScanner struct {
	header []string
	rows   [][]string
	next   int
	count  int
	errs   []ParseError
}

func NewExcelScanner(r io.Reader) (*ExcelScanner, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	s := &ExcelScanner{}
	for len(rows) > 0 && isBlankRecord(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		s.errs = append(s.errs, ParseError{Line: 1, Message: fmt.Sprintf("Sheet %s is empty or has no header row", sheetName)})
		return s, nil
	}

	s.header = make([]string, len(rows[0]))
	for i, value := range rows[0] {
		s.header[i] = cleanHeader(value)
	}
	s.rows = rows[1:]
	return s, nil
}

func (s *ExcelScanner) Header() []string {
	return append([]string(nil), s.header...)
}

func (s *ExcelScanner) Errors() []ParseError {
	return append([]ParseError(nil), s.errs...)
}

func (s *ExcelScanner) Next() (Row, bool) {
	for s.next < len(s.rows) {
		record := s.rows[s.next]
		s.next++
		if isBlankRecord(record) {
			continue
		}

		s.count++
		line := s.count + 1
		if len(record) > len(s.header) && !isBlankRecord(record[len(s.header):]) {
			s.errs = append(s.errs, ParseError{
				Line:    line,
				Message: fmt.Sprintf("Too many fields: expected %d fields but parsed %d", len(s.header), len(record)),
			})
			continue
		}

		values := make(map[string]string, len(s.header))
		for col, column := range s.header {
			if col < len(record) {
				values[column] = record[col]
			} else {
				values[column] = ""
			}
		}
		return Row{Line: line, Values: values}, true
	}
	return Row{}, false
}
