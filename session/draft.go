package session

import (
	"fmt"
	"strconv"
	"strings"

	"depletions/depletion"
)

// Draft is the manual entry form before it is added to the working list.
type Draft struct {
	ProductID     string `json:"productId"`
	SellerID      string `json:"thirdPartySellerId"`
	NewSellerName string `json:"newSellerName"`
	UseNewSeller  bool   `json:"useNewSeller"`
	Country       string `json:"country"`
	City          string `json:"city"`
	State         string `json:"state"`
	Type          string `json:"type"`
	Quantity      string `json:"quantity"`
}

// Set updates one field. Lookup fields take the selected id.
func (d *Draft) Set(field depletion.Field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case depletion.FieldProduct:
		d.ProductID = value
	case depletion.FieldSeller:
		d.SellerID = value
	case depletion.FieldNewSellerName:
		d.NewSellerName = value
	case depletion.FieldUseNewSeller:
		if value == "" {
			d.UseNewSeller = false
			return nil
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		d.UseNewSeller = enabled
	case depletion.FieldCountry:
		d.Country = value
	case depletion.FieldCity:
		d.City = value
	case depletion.FieldState:
		d.State = value
	case depletion.FieldType:
		d.Type = value
	case depletion.FieldQuantity:
		d.Quantity = value
	default:
		return fmt.Errorf("unknown field %s", field)
	}
	return nil
}

// Reset clears the entry fields after an add. Country and the new-seller
// toggle are kept for the next entry.
func (d *Draft) Reset() {
	d.ProductID = ""
	d.SellerID = ""
	d.NewSellerName = ""
	d.City = ""
	d.State = ""
	d.Type = ""
	d.Quantity = ""
}

func (d Draft) complete() bool {
	hasSeller := d.SellerID != ""
	if d.UseNewSeller {
		hasSeller = d.NewSellerName != ""
	}
	return d.ProductID != "" &&
		hasSeller &&
		d.City != "" &&
		d.State != "" &&
		d.Type != "" &&
		d.Quantity != ""
}
