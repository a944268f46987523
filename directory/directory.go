package directory

import (
	"context"

	"depletions/depletion"
)

// Directory is the CRM-side catalog the depletion workflow talks to. It is
// implemented remotely by HTTPClient and locally by storage.SQLiteStore.
type Directory interface {
	// ResolveProductCodes maps product codes to product ids. Unknown codes are
	// absent from the result.
	ResolveProductCodes(ctx context.Context, codes []string) (map[string]string, error)
	// ResolveSellerNames maps third-party seller names to seller ids.
	ResolveSellerNames(ctx context.Context, names []string) (map[string]string, error)
	MovementTypes(ctx context.Context) ([]string, error)
	// ValidateAccount returns the account id for the pair, or "" when none
	// matches.
	ValidateAccount(ctx context.Context, taxID, email string) (string, error)
	ProductName(ctx context.Context, productID string) (string, error)
	SellerName(ctx context.Context, sellerID string) (string, error)
	CreateSeller(ctx context.Context, name string) (string, error)
	CreateDepletions(ctx context.Context, depletions []depletion.Submission) error
}
