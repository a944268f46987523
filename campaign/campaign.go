package campaign

import (
	"context"
	"errors"
	"strings"
)

const limitedEditionFamily = "E. Limitadas"

var (
	ErrCampaignInactive = errors.New("campaign is not active")
	ErrMissingEmail     = errors.New("Missing customer email.")
	ErrNoProducts       = errors.New("No products selected.")
)

// Backend is the remote side of the campaign order form.
type Backend interface {
	IsCampaignActive(ctx context.Context, campaignID string) (bool, error)
	CampaignCatalog(ctx context.Context, campaignID string) (Catalog, error)
	// PersonAccountByEmail returns nil when no account matches.
	PersonAccountByEmail(ctx context.Context, email string) (*PersonAccount, error)
	CreateOrders(ctx context.Context, request OrderRequest) error
	UpdateMissingAccountFields(ctx context.Context, update AccountUpdate) error
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Product struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Family string `json:"Family"`
	Code   string `json:"ProductCode,omitempty"`
}

// MaxQuantity is the advertised per-order limit. It is informational and not
// enforced when building the order.
func (p Product) MaxQuantity() int {
	if p.Family == limitedEditionFamily {
		return 2
	}
	return 4
}

// Catalog lists pickup locations and the products offered at each of them.
type Catalog struct {
	PickupLocations    []Option             `json:"pickupLocations"`
	ProductsByLocation map[string][]Product `json:"productsByLocation"`
}

func (c Catalog) hasLocation(value string) bool {
	for _, option := range c.PickupLocations {
		if option.Value == value {
			return true
		}
	}
	return false
}

type PersonAccount struct {
	AccountID             string `json:"accountId"`
	OptInAnnualNewsletter bool   `json:"optInAnnualNewsletter"`
	Birthdate             string `json:"birthdate"`
	Region                string `json:"region"`
	Country               string `json:"country"`
	State                 string `json:"state"`
}

func (a PersonAccount) MissingBirthdate() bool {
	return strings.TrimSpace(a.Birthdate) == ""
}

func (a PersonAccount) MissingLocation() bool {
	return strings.TrimSpace(a.Region) == "" ||
		strings.TrimSpace(a.Country) == "" ||
		strings.TrimSpace(a.State) == ""
}
