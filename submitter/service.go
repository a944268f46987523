package submitter

import (
	"context"
	"fmt"
	"strings"

	"depletions/depletion"
)

// Sink accepts bulk depletion submissions.
type Sink interface {
	CreateDepletions(ctx context.Context, depletions []depletion.Submission) error
}

type Options struct {
	// BatchSize caps the records per CreateDepletions call. Zero or less
	// sends everything in one call.
	BatchSize   int
	QuantityMin int
	QuantityMax int
}

// Report describes how far a submission got. Submitted counts records from
// the front of the payload that the sink accepted.
type Report struct {
	Submitted int
	Batches   int
	Total     int
}

func (r Report) Complete() bool {
	return r.Submitted == r.Total
}

// BuildPayload converts working-list records to the sink shape and rejects
// records that could never have been accepted.
func BuildPayload(records []depletion.Record, minQuantity, maxQuantity int) ([]depletion.Submission, error) {
	if minQuantity == 0 && maxQuantity == 0 {
		minQuantity, maxQuantity = depletion.MinQuantity, depletion.MaxQuantity
	}

	payload := make([]depletion.Submission, 0, len(records))
	for _, record := range records {
		switch {
		case strings.TrimSpace(record.ProductID) == "":
			return nil, fmt.Errorf("depletion %s has no product id", record.Token)
		case strings.TrimSpace(record.SellerID) == "":
			return nil, fmt.Errorf("depletion %s has no seller id", record.Token)
		case !depletion.QuantityInRange(record.Quantity, minQuantity, maxQuantity):
			return nil, fmt.Errorf("depletion %s: %s", record.Token, depletion.QuantityRangeMessage(minQuantity, maxQuantity))
		}
		payload = append(payload, record.Submission())
	}
	return payload, nil
}

// BuildBatches splits payload into consecutive chunks of at most size records.
func BuildBatches(payload []depletion.Submission, size int) [][]depletion.Submission {
	if len(payload) == 0 {
		return nil
	}
	if size <= 0 || size >= len(payload) {
		return [][]depletion.Submission{payload}
	}

	out := make([][]depletion.Submission, 0, (len(payload)+size-1)/size)
	for start := 0; start < len(payload); start += size {
		end := min(start+size, len(payload))
		out = append(out, payload[start:end])
	}
	return out
}

// Submit sends the records batch by batch in list order and stops at the
// first failing batch.
func Submit(ctx context.Context, sink Sink, records []depletion.Record, options Options) (Report, error) {
	payload, err := BuildPayload(records, options.QuantityMin, options.QuantityMax)
	if err != nil {
		return Report{Total: len(records)}, err
	}

	report := Report{Total: len(payload)}
	for i, batch := range BuildBatches(payload, options.BatchSize) {
		if err := sink.CreateDepletions(ctx, batch); err != nil {
			return report, fmt.Errorf("submit batch %d (%d depletions): %w", i+1, len(batch), err)
		}
		report.Submitted += len(batch)
		report.Batches++
	}
	return report, nil
}
