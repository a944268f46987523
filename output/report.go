package output

import (
	"io"
	"strconv"

	"depletions/depletion"
)

// ReportFile holds the messages of one imported file.
type ReportFile struct {
	Name   string
	Errors []depletion.ValidationError
}

// WriteValidationReport writes import messages as CSV, file by file in the
// order given. Messages without a line, such as a failed lookup, leave the
// Line column empty.
func WriteValidationReport(out io.Writer, files []ReportFile) error {
	var rows [][]string
	for _, file := range files {
		for _, e := range file.Errors {
			severity := e.Severity
			if severity == "" {
				severity = depletion.SeverityError
			}
			line := ""
			if e.Line > 0 {
				line = strconv.Itoa(e.Line)
			}
			rows = append(rows, []string{file.Name, line, string(severity), e.Message})
		}
	}
	return writeCSV(out, []string{"File", "Line", "Severity", "Message"}, rows)
}
