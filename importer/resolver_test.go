package importer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	mu          sync.Mutex
	products    map[string]string
	sellers     map[string]string
	productErr  error
	sellerErr   error
	productArgs [][]string
	sellerArgs  [][]string
}

func (f *fakeLookup) ResolveProductCodes(_ context.Context, codes []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productArgs = append(f.productArgs, append([]string(nil), codes...))
	if f.productErr != nil {
		return nil, f.productErr
	}
	return f.products, nil
}

func (f *fakeLookup) ResolveSellerNames(_ context.Context, names []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sellerArgs = append(f.sellerArgs, append([]string(nil), names...))
	if f.sellerErr != nil {
		return nil, f.sellerErr
	}
	return f.sellers, nil
}

func TestCollectKeys_DistinctTrimmedSorted(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Line: 2, Values: map[string]string{"Product SKU": "B", "Distributor": " Acme "}},
		{Line: 3, Values: map[string]string{"Product SKU": "A", "Distributor": "Acme"}},
		{Line: 4, Values: map[string]string{"Product SKU": "B", "Distributor": ""}},
	}

	keys := CollectKeys(rows, DefaultColumns())
	assert.Equal(t, []string{"A", "B"}, keys.ProductCodes)
	assert.Equal(t, []string{"Acme"}, keys.SellerNames)
	assert.False(t, keys.Empty())
}

func TestResolve_IssuesOneCallPerKeySet(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{
		products: map[string]string{"A": "p-a", "B": "p-b"},
		sellers:  map[string]string{"Acme": "s-1"},
	}

	result, err := Resolve(context.Background(), lookup, Keys{
		ProductCodes: []string{"A", "B"},
		SellerNames:  []string{"Acme"},
	})
	require.NoError(t, err)

	assert.Len(t, lookup.productArgs, 1)
	assert.Len(t, lookup.sellerArgs, 1)
	id, ok := result.ProductID("B")
	assert.True(t, ok)
	assert.Equal(t, "p-b", id)
	_, ok = result.SellerID("Other")
	assert.False(t, ok)
}

func TestResolve_EmptyKeySetSkipsRemoteCall(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{products: map[string]string{"A": "p-a"}}

	result, err := Resolve(context.Background(), lookup, Keys{ProductCodes: []string{"A"}})
	require.NoError(t, err)

	assert.Len(t, lookup.productArgs, 1)
	assert.Empty(t, lookup.sellerArgs)
	assert.NotNil(t, result.Sellers)
	assert.Empty(t, result.Sellers)
}

func TestResolve_DropsUnrequestedAndBlankIDs(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{
		products: map[string]string{"A": "p-a", "B": " ", "Z": "p-z"},
	}

	result, err := Resolve(context.Background(), lookup, Keys{ProductCodes: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "p-a"}, result.Products)
}

func TestResolve_FailureAbortsBatch(t *testing.T) {
	t.Parallel()

	boom := errors.New("directory unavailable")
	lookup := &fakeLookup{sellerErr: boom}

	_, err := Resolve(context.Background(), lookup, Keys{
		ProductCodes: []string{"A"},
		SellerNames:  []string{"Acme"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "resolve seller names")
}
