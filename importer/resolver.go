package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Lookup is the directory contract used to resolve natural keys to ids.
// A key that cannot be resolved is absent from the returned map.
type Lookup interface {
	ResolveProductCodes(ctx context.Context, codes []string) (map[string]string, error)
	ResolveSellerNames(ctx context.Context, names []string) (map[string]string, error)
}

// LookupResult maps product codes and seller names to directory ids. A
// missing key means "not found".
type LookupResult struct {
	Products map[string]string
	Sellers  map[string]string
}

func (r LookupResult) ProductID(code string) (string, bool) {
	id, ok := r.Products[code]
	return id, ok
}

func (r LookupResult) SellerID(name string) (string, bool) {
	id, ok := r.Sellers[name]
	return id, ok
}

// Resolve performs at most one product lookup and one seller lookup, issued
// concurrently. Empty key sets are answered locally without a remote call.
func Resolve(ctx context.Context, lookup Lookup, keys Keys) (LookupResult, error) {
	result := LookupResult{
		Products: map[string]string{},
		Sellers:  map[string]string{},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if len(keys.ProductCodes) > 0 {
		group.Go(func() error {
			found, err := lookup.ResolveProductCodes(groupCtx, keys.ProductCodes)
			if err != nil {
				return fmt.Errorf("resolve product codes: %w", err)
			}
			result.Products = keepRequested(found, keys.ProductCodes)
			return nil
		})
	}
	if len(keys.SellerNames) > 0 {
		group.Go(func() error {
			found, err := lookup.ResolveSellerNames(groupCtx, keys.SellerNames)
			if err != nil {
				return fmt.Errorf("resolve seller names: %w", err)
			}
			result.Sellers = keepRequested(found, keys.SellerNames)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return LookupResult{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("product_codes", len(keys.ProductCodes)).
		Int("products_found", len(result.Products)).
		Int("seller_names", len(keys.SellerNames)).
		Int("sellers_found", len(result.Sellers)).
		Msg("lookup keys resolved")

	return result, nil
}

// keepRequested drops entries that were not asked for or carry an empty id,
// so absence is the only "not found" signal.
func keepRequested(found map[string]string, requested []string) map[string]string {
	out := make(map[string]string, len(requested))
	for _, key := range requested {
		id, ok := found[key]
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		out[key] = id
	}
	return out
}
