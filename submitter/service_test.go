package submitter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"depletions/depletion"
)

type fakeSink struct {
	batches [][]depletion.Submission
	failOn  int
}

func (f *fakeSink) CreateDepletions(_ context.Context, depletions []depletion.Submission) error {
	if f.failOn > 0 && len(f.batches)+1 == f.failOn {
		return errors.New("sink rejected batch")
	}
	f.batches = append(f.batches, append([]depletion.Submission(nil), depletions...))
	return nil
}

func testRecords(n int) []depletion.Record {
	out := make([]depletion.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, depletion.Record{
			Token:     "t",
			AccountID: "acct",
			ProductID: "p",
			SellerID:  "s",
			City:      "Austin",
			State:     "TX",
			Type:      "Case",
			Quantity:  i + 1,
		})
	}
	return out
}

func TestBuildBatches(t *testing.T) {
	t.Parallel()

	payload := make([]depletion.Submission, 5)
	tests := []struct {
		size  int
		sizes []int
	}{
		{size: 0, sizes: []int{5}},
		{size: 2, sizes: []int{2, 2, 1}},
		{size: 5, sizes: []int{5}},
		{size: 10, sizes: []int{5}},
	}

	for _, tt := range tests {
		batches := BuildBatches(payload, tt.size)
		if len(batches) != len(tt.sizes) {
			t.Fatalf("size %d: expected %d batches, got %d", tt.size, len(tt.sizes), len(batches))
		}
		for i, batch := range batches {
			if len(batch) != tt.sizes[i] {
				t.Fatalf("size %d: batch %d has %d items, want %d", tt.size, i, len(batch), tt.sizes[i])
			}
		}
	}

	if BuildBatches(nil, 3) != nil {
		t.Fatalf("expected nil batches for empty payload")
	}
}

func TestBuildPayload_RejectsUnresolvedRecords(t *testing.T) {
	t.Parallel()

	records := testRecords(1)
	records[0].SellerID = ""
	if _, err := BuildPayload(records, 0, 0); err == nil || !strings.Contains(err.Error(), "seller id") {
		t.Fatalf("expected seller id error, got %v", err)
	}

	records = testRecords(1)
	records[0].Quantity = 0
	if _, err := BuildPayload(records, 0, 0); err == nil {
		t.Fatalf("expected quantity error")
	}
}

func TestSubmit_SendsAllBatchesInOrder(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	report, err := Submit(context.Background(), sink, testRecords(5), Options{BatchSize: 2})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !report.Complete() || report.Batches != 3 || report.Submitted != 5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if sink.batches[2][0].Quantity != 5 {
		t.Fatalf("expected list order to be preserved, got %+v", sink.batches[2])
	}
}

func TestSubmit_StopsAtFirstFailingBatch(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{failOn: 2}
	report, err := Submit(context.Background(), sink, testRecords(5), Options{BatchSize: 2})
	if err == nil {
		t.Fatalf("expected error")
	}
	if report.Complete() || report.Submitted != 2 || report.Batches != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(sink.batches) != 1 {
		t.Fatalf("expected no batches after the failure, got %d", len(sink.batches))
	}
}
