package depletion

import (
	"fmt"
	"strings"
)

// Field identifies one editable attribute of a depletion entry.
type Field int

const (
	FieldProduct Field = iota + 1
	FieldSeller
	FieldNewSellerName
	FieldUseNewSeller
	FieldCountry
	FieldCity
	FieldState
	FieldType
	FieldQuantity
)

var fieldNames = map[Field]string{
	FieldProduct:       "product",
	FieldSeller:        "seller",
	FieldNewSellerName: "newSellerName",
	FieldUseNewSeller:  "useNewSeller",
	FieldCountry:       "country",
	FieldCity:          "city",
	FieldState:         "state",
	FieldType:          "type",
	FieldQuantity:      "quantity",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a field name (case-insensitive) to its identifier.
func ParseField(name string) (Field, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for field, fieldName := range fieldNames {
		if strings.ToLower(fieldName) == needle {
			return field, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Change is a tagged update of one field. ID is used by lookup fields
// (product, seller); Value carries the text or the display label.
type Change struct {
	Field Field  `json:"-"`
	Name  string `json:"field"`
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
}

// Resolve fills Field from Name when only the wire name is set.
func (c Change) Resolve() (Change, error) {
	if c.Field != 0 {
		return c, nil
	}
	field, err := ParseField(c.Name)
	if err != nil {
		return c, err
	}
	c.Field = field
	return c, nil
}
