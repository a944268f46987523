package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Product SKU,Distributor,Country,City,State,Case/Bottles,Quantity\n"

func runCSV(t *testing.T, input string, lookup Lookup, options Options) (*Result, error) {
	t.Helper()
	return Run(context.Background(), NewCSVScanner(strings.NewReader(input), ParseOptions{}), lookup, options)
}

func TestRun_MixedBatch(t *testing.T) {
	t.Parallel()

	input := header +
		"SKU-1,Acme,US,Austin,TX,Case,10\n" +
		"SKU-1,,US,Austin,TX,Case,5\n" +
		"SKU-2,Acme,US,Dallas,TX,Bottles,3\n"

	lookup := &fakeLookup{
		products: map[string]string{"SKU-1": "p-1", "SKU-2": "p-2"},
		sellers:  map[string]string{"Acme": "s-1"},
	}

	result, err := runCSV(t, input, lookup, Options{AccountID: "acct-1"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsRead)
	assert.Equal(t, 2, result.RowsAccepted)
	assert.Equal(t, 1, result.RowsRejected)
	assert.Equal(t, []string{"Line 3: Missing Distributor"}, result.Messages())
	assert.Equal(t, []int{3}, result.RejectedLines())

	require.Len(t, result.Accepted, 2)
	assert.Equal(t, "acct-1", result.Accepted[0].AccountID)
	assert.Equal(t, "p-2", result.Accepted[1].ProductID)
	assert.Empty(t, result.Accepted[0].Token)
}

func TestRun_EveryRowClassifiedOnce(t *testing.T) {
	t.Parallel()

	input := header +
		"SKU-1,Acme,US,Austin,TX,Case,10\n" +
		"SKU-1,Acme,US,Austin,TX,Pallet,10\n" +
		"SKU-9,Nobody,US,,TX,Case,0\n" +
		"SKU-1,Acme,US,Austin,TX,Bottles,abc\n"

	lookup := &fakeLookup{
		products: map[string]string{"SKU-1": "p-1"},
		sellers:  map[string]string{"Acme": "s-1"},
	}

	result, err := runCSV(t, input, lookup, Options{AllowedTypes: []string{"Case", "Bottles"}})
	require.NoError(t, err)

	assert.Equal(t, result.RowsRead, result.RowsAccepted+len(result.RejectedLines()))
	assert.Equal(t, 2, result.RowsAccepted)
	assert.Equal(t, []int{4, 5}, result.RejectedLines())

	lines := make([]int, 0, len(result.Errors))
	for _, e := range result.Errors {
		lines = append(lines, e.Line)
	}
	assert.IsNonDecreasing(t, lines)
}

func TestRun_LookupCalledOncePerBatch(t *testing.T) {
	t.Parallel()

	input := header +
		"SKU-1,Acme,US,Austin,TX,Case,1\n" +
		"SKU-1,Acme,US,Austin,TX,Case,2\n" +
		"SKU-2,Acme,US,Austin,TX,Case,3\n"

	lookup := &fakeLookup{products: map[string]string{}, sellers: map[string]string{}}

	result, err := runCSV(t, input, lookup, Options{})
	require.NoError(t, err)

	require.Len(t, lookup.productArgs, 1)
	assert.Equal(t, []string{"SKU-1", "SKU-2"}, lookup.productArgs[0])
	require.Len(t, lookup.sellerArgs, 1)
	assert.Equal(t, 0, result.RowsAccepted)
	assert.Equal(t, 3, result.RowsRejected)
}

func TestRun_NoKeysIsBatchError(t *testing.T) {
	t.Parallel()

	input := header + ",,US,Austin,TX,Case,1\n"
	lookup := &fakeLookup{}

	_, err := runCSV(t, input, lookup, Options{})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, BatchNoKeys, batchErr.Kind)
	assert.Equal(t, `CSV has no values for "Product SKU" or "Distributor".`, batchErr.Error())
	assert.Empty(t, lookup.productArgs)
}

func TestRun_HeaderOnlyIsNoKeys(t *testing.T) {
	t.Parallel()

	_, err := runCSV(t, header, &fakeLookup{}, Options{})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, BatchNoKeys, batchErr.Kind)
}

func TestRun_MalformedFileAbortsBeforeLookup(t *testing.T) {
	t.Parallel()

	input := header + "SKU-1,Acme,US\n"
	lookup := &fakeLookup{}

	result, err := runCSV(t, input, lookup, Options{})
	assert.Nil(t, result)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, BatchMalformedFile, batchErr.Kind)
	require.Len(t, batchErr.Messages(), 1)
	assert.True(t, strings.HasPrefix(batchErr.Messages()[0], "Row 2: Too few fields"))
	assert.Empty(t, lookup.productArgs)
}

func TestRun_LookupFailureIsBatchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("timeout")
	input := header + "SKU-1,Acme,US,Austin,TX,Case,1\n"

	_, err := runCSV(t, input, &fakeLookup{productErr: boom}, Options{})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, BatchLookupFailed, batchErr.Kind)
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "CSV lookup failed"))
}
