package campaign

import (
	"fmt"
	"strings"
)

// Line is one product offered at the selected pickup location.
type Line struct {
	Product  Product `json:"product"`
	Selected bool    `json:"selected"`
	Quantity int     `json:"quantity"`
}

// Form holds the customer's order in progress.
type Form struct {
	CampaignID            string         `json:"campaignId"`
	Email                 string         `json:"email"`
	OptInAnnualNewsletter bool           `json:"optInAnnualNewsletter"`
	FirstName             string         `json:"firstName"`
	LastName              string         `json:"lastName"`
	Birthdate             string         `json:"birthdate"`
	Phone                 string         `json:"phone"`
	City                  string         `json:"city"`
	Zip                   string         `json:"zip"`
	Region                string         `json:"region"`
	Country               string         `json:"country"`
	State                 string         `json:"state"`
	PickupLocation        string         `json:"pickupLocation"`
	LocationLocked        bool           `json:"locationLocked"`
	Lines                 []Line         `json:"lines"`
	Account               *PersonAccount `json:"account,omitempty"`

	catalog Catalog
}

// NewForm starts a form over catalog. A catalog with exactly one pickup
// location has that location selected and locked.
func NewForm(campaignID string, catalog Catalog) *Form {
	form := &Form{CampaignID: campaignID, catalog: catalog}
	if len(catalog.PickupLocations) == 1 {
		form.PickupLocation = catalog.PickupLocations[0].Value
		form.LocationLocked = true
		form.Lines = linesFor(catalog.ProductsByLocation[form.PickupLocation])
	}
	return form
}

func (f *Form) Catalog() Catalog {
	return f.catalog
}

// SelectLocation switches the pickup location and resets the product lines.
func (f *Form) SelectLocation(value string) error {
	if f.LocationLocked && value != f.PickupLocation {
		return fmt.Errorf("pickup location is fixed to %q", f.PickupLocation)
	}
	if !f.catalog.hasLocation(value) {
		return fmt.Errorf("unknown pickup location %q", value)
	}
	f.PickupLocation = value
	f.Lines = linesFor(f.catalog.ProductsByLocation[value])
	return nil
}

// Toggle selects or clears a line. The quantity is reset either way.
func (f *Form) Toggle(index int, selected bool) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}
	f.Lines[index].Selected = selected
	f.Lines[index].Quantity = 0
	return nil
}

// SetQuantity is ignored for lines that are not selected.
func (f *Form) SetQuantity(index, quantity int) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}
	if !f.Lines[index].Selected {
		return nil
	}
	if quantity < 0 {
		quantity = 0
	}
	f.Lines[index].Quantity = quantity
	return nil
}

// SetRegion clears the dependent country and state.
func (f *Form) SetRegion(region string) {
	f.Region = strings.TrimSpace(region)
	f.Country = ""
	f.State = ""
}

// SetCountry clears the dependent state.
func (f *Form) SetCountry(country string) {
	f.Country = strings.TrimSpace(country)
	f.State = ""
}

// ApplyAccount copies what is known about the customer into the form.
func (f *Form) ApplyAccount(account *PersonAccount) {
	f.Account = account
	if account == nil {
		f.OptInAnnualNewsletter = false
		return
	}
	f.OptInAnnualNewsletter = account.OptInAnnualNewsletter
}

// ResetLines clears every selection after an order was placed.
func (f *Form) ResetLines() {
	f.Lines = linesFor(f.catalog.ProductsByLocation[f.PickupLocation])
}

// IsNewCustomer reports an email with no matching account.
func (f *Form) IsNewCustomer() bool {
	return strings.TrimSpace(f.Email) != "" && (f.Account == nil || f.Account.AccountID == "")
}

func (f *Form) checkIndex(index int) error {
	if index < 0 || index >= len(f.Lines) {
		return fmt.Errorf("product line %d out of range", index)
	}
	return nil
}

func linesFor(products []Product) []Line {
	lines := make([]Line, 0, len(products))
	for _, product := range products {
		lines = append(lines, Line{Product: product})
	}
	return lines
}
