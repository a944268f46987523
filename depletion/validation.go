package depletion

import (
	"fmt"
	"sort"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a row-level problem tagged with its 1-based source line.
// Line 1 is the header row.
type ValidationError struct {
	Line     int      `json:"line"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
}

func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// SortByLine orders errors by ascending line and keeps the collection order
// for errors on the same line.
func SortByLine(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Line < errs[j].Line
	})
}

// Messages renders errors as "Line N: message" strings.
func Messages(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
