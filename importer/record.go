package importer

import (
	"strings"
)

// Row is one non-empty data line keyed by exact header text. Line is the
// 1-based line number counting the header as line 1.
type Row struct {
	Line   int
	Values map[string]string
}

func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

func (r Row) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

func isBlankRecord(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func cleanHeader(value string) string {
	return strings.TrimSpace(strings.TrimPrefix(value, "\ufeff"))
}
