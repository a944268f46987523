package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RowScanner yields parsed rows once, in file order. It cannot be restarted.
// Errors returns the structural problems seen so far; callers check it after
// Next has returned false.
type RowScanner interface {
	Header() []string
	Next() (Row, bool)
	Errors() []ParseError
}

// ParseError is a structural problem of the file itself, such as broken
// quoting or a row whose field count does not match the header.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Line, e.Message)
}

type ParseOptions struct {
	Delimiter rune
}

func (o ParseOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// ReadAll drains a scanner.
func ReadAll(scanner RowScanner) ([]Row, []ParseError) {
	rows := make([]Row, 0, 128)
	for {
		row, ok := scanner.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return rows, scanner.Errors()
}

// ScannerForFormat opens a scanner for the given format over r.
func ScannerForFormat(format string, r io.Reader, options ParseOptions) (RowScanner, error) {
	switch normalizeFormat(format) {
	case "csv", "txt":
		return NewCSVScanner(r, options), nil
	case "tsv":
		options.Delimiter = '\t'
		return NewCSVScanner(r, options), nil
	case "excel", "xlsx", "xlsm":
		return NewExcelScanner(r)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// InferFormat returns format when set, otherwise derives it from the file name.
func InferFormat(path, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return normalizeFormat(format), nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv", "txt":
		return "csv", nil
	case "tsv":
		return "tsv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
