package depletion

import "fmt"

const (
	MinQuantity = 1
	MaxQuantity = 99999
)

// Record is one entry of the working list, produced by manual entry or CSV
// import. Product and seller references are always resolved ids.
type Record struct {
	Token       string `json:"id"`
	AccountID   string `json:"accountId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SellerID    string `json:"thirdPartySellerId"`
	SellerName  string `json:"thirdPartySellerName"`
	Country     string `json:"country"`
	City        string `json:"city"`
	State       string `json:"state"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
}

// Submission is the normalized shape accepted by the bulk submission sink.
type Submission struct {
	AccountID string `json:"accountId"`
	ProductID string `json:"productId"`
	SellerID  string `json:"thirdPartySellerId"`
	Country   string `json:"country"`
	City      string `json:"city"`
	State     string `json:"state"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
}

func (r Record) Submission() Submission {
	return Submission{
		AccountID: r.AccountID,
		ProductID: r.ProductID,
		SellerID:  r.SellerID,
		Country:   r.Country,
		City:      r.City,
		State:     r.State,
		Type:      r.Type,
		Quantity:  r.Quantity,
	}
}

// QuantityInRange reports whether n is an acceptable depletion quantity.
func QuantityInRange(n, min, max int) bool {
	return n >= min && n <= max
}

func QuantityRangeMessage(min, max int) string {
	return fmt.Sprintf("Quantity must be an integer between %d and %d", min, max)
}
