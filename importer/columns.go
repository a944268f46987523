package importer

import "strings"

// Columns names the header text for each depletion attribute in an import file.
type Columns struct {
	Product  string `mapstructure:"product"`
	Seller   string `mapstructure:"seller"`
	Country  string `mapstructure:"country"`
	City     string `mapstructure:"city"`
	State    string `mapstructure:"state"`
	Type     string `mapstructure:"type"`
	Quantity string `mapstructure:"quantity"`
}

func DefaultColumns() Columns {
	return Columns{
		Product:  "Product SKU",
		Seller:   "Distributor",
		Country:  "Country",
		City:     "City",
		State:    "State",
		Type:     "Case/Bottles",
		Quantity: "Quantity",
	}
}

// WithDefaults fills blank column names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	c.Product = firstNonEmpty(c.Product, d.Product)
	c.Seller = firstNonEmpty(c.Seller, d.Seller)
	c.Country = firstNonEmpty(c.Country, d.Country)
	c.City = firstNonEmpty(c.City, d.City)
	c.State = firstNonEmpty(c.State, d.State)
	c.Type = firstNonEmpty(c.Type, d.Type)
	c.Quantity = firstNonEmpty(c.Quantity, d.Quantity)
	return c
}

// Headers returns the column names in template order.
func (c Columns) Headers() []string {
	return []string{c.Product, c.Seller, c.Country, c.City, c.State, c.Type, c.Quantity}
}

// Required returns the column names that must carry a value on every row.
func (c Columns) Required() []string {
	return []string{c.Product, c.Seller, c.City, c.State, c.Type, c.Quantity}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
