package importer

import (
	"fmt"
)

type BatchErrorKind string

const (
	BatchMalformedFile BatchErrorKind = "malformed_file"
	BatchNoKeys        BatchErrorKind = "no_keys"
	BatchLookupFailed  BatchErrorKind = "lookup_failed"
)

// BatchError aborts a whole import before any row is merged.
type BatchError struct {
	Kind        BatchErrorKind
	Message     string
	ParseErrors []ParseError
	Err         error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Messages returns the user-facing lines for this failure.
func (e *BatchError) Messages() []string {
	if len(e.ParseErrors) == 0 {
		return []string{e.Error()}
	}
	out := make([]string, 0, len(e.ParseErrors))
	for _, parseErr := range e.ParseErrors {
		out = append(out, parseErr.Error())
	}
	return out
}

func malformedFile(parseErrs []ParseError) *BatchError {
	return &BatchError{
		Kind:        BatchMalformedFile,
		Message:     fmt.Sprintf("CSV file is malformed (%d structural errors)", len(parseErrs)),
		ParseErrors: parseErrs,
	}
}

func noKeys(columns Columns) *BatchError {
	return &BatchError{
		Kind:    BatchNoKeys,
		Message: fmt.Sprintf("CSV has no values for %q or %q.", columns.Product, columns.Seller),
	}
}

func lookupFailed(err error) *BatchError {
	return &BatchError{
		Kind:    BatchLookupFailed,
		Message: "CSV lookup failed",
		Err:     err,
	}
}
