package importer

import (
	"context"

	"github.com/rs/zerolog"

	"depletions/depletion"
)

type Options struct {
	Columns          Columns
	QuantityMin      int
	QuantityMax      int
	AllowedTypes     []string
	BlockInvalidType bool
	AccountID        string
}

// Result is the outcome of one import batch. Accepted records carry no
// identity token yet; the working list assigns one on merge.
type Result struct {
	RowsRead      int
	RowsAccepted  int
	RowsRejected  int
	Accepted      []depletion.Record
	Errors        []depletion.ValidationError
	rejectedLines map[int]struct{}
}

// Messages returns every row message ordered by line.
func (r *Result) Messages() []string {
	return depletion.Messages(r.Errors)
}

// RejectedLines returns the distinct line numbers of rejected rows.
func (r *Result) RejectedLines() []int {
	out := make([]int, 0, len(r.rejectedLines))
	for _, e := range r.Errors {
		if _, ok := r.rejectedLines[e.Line]; ok && (len(out) == 0 || out[len(out)-1] != e.Line) {
			out = append(out, e.Line)
		}
	}
	return out
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Run parses, resolves, and validates one file. Structural parse errors, a
// batch without any lookup keys, and lookup failures abort with a
// *BatchError. Row failures are collected and never stop later rows.
func Run(ctx context.Context, scanner RowScanner, lookup Lookup, options Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	columns := options.Columns.WithDefaults()

	rows, parseErrs := ReadAll(scanner)
	if len(parseErrs) > 0 {
		logger.Warn().Int("parse_errors", len(parseErrs)).Msg("import aborted: malformed file")
		return nil, malformedFile(parseErrs)
	}

	keys := CollectKeys(rows, columns)
	if keys.Empty() {
		return nil, noKeys(columns)
	}

	resolved, err := Resolve(ctx, lookup, keys)
	if err != nil {
		logger.Error().Err(err).Msg("import aborted: lookup failed")
		return nil, lookupFailed(err)
	}

	validator := NewValidator(ValidatorOptions{
		Columns:          columns,
		QuantityMin:      options.QuantityMin,
		QuantityMax:      options.QuantityMax,
		AllowedTypes:     options.AllowedTypes,
		BlockInvalidType: options.BlockInvalidType,
	})

	result := &Result{
		RowsRead:      len(rows),
		Accepted:      make([]depletion.Record, 0, len(rows)),
		rejectedLines: make(map[int]struct{}),
	}
	for _, row := range rows {
		record, ok, rowErrs := validator.Validate(row, resolved)
		result.Errors = append(result.Errors, rowErrs...)
		if !ok {
			result.RowsRejected++
			result.rejectedLines[row.Line] = struct{}{}
			continue
		}
		record.AccountID = options.AccountID
		result.Accepted = append(result.Accepted, record)
		result.RowsAccepted++
	}
	depletion.SortByLine(result.Errors)

	logger.Info().
		Int("rows", result.RowsRead).
		Int("accepted", result.RowsAccepted).
		Int("rejected", result.RowsRejected).
		Int("messages", len(result.Errors)).
		Msg("import batch validated")

	return result, nil
}
