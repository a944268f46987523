package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"depletions/depletion"
)

type ValidatorOptions struct {
	Columns     Columns
	QuantityMin int
	QuantityMax int
	// AllowedTypes is the movement-type enumeration. An empty set disables
	// the membership check.
	AllowedTypes []string
	// BlockInvalidType rejects rows whose type is not in AllowedTypes. When
	// false such rows are accepted and the problem is reported as a warning.
	BlockInvalidType bool
}

// Validator applies every row check and collects all messages for a line.
type Validator struct {
	columns          Columns
	quantityMin      int
	quantityMax      int
	allowedTypes     map[string]struct{}
	blockInvalidType bool
}

func NewValidator(options ValidatorOptions) *Validator {
	min, max := options.QuantityMin, options.QuantityMax
	if min == 0 && max == 0 {
		min, max = depletion.MinQuantity, depletion.MaxQuantity
	}

	allowed := make(map[string]struct{}, len(options.AllowedTypes))
	for _, value := range options.AllowedTypes {
		value = strings.TrimSpace(value)
		if value != "" {
			allowed[value] = struct{}{}
		}
	}

	return &Validator{
		columns:          options.Columns.WithDefaults(),
		quantityMin:      min,
		quantityMax:      max,
		allowedTypes:     allowed,
		blockInvalidType: options.BlockInvalidType,
	}
}

// Validate checks one row against the lookup result. It returns the
// normalized record and true when the row is accepted. Messages are returned
// for accepted rows too when they carry warnings.
func (v *Validator) Validate(row Row, lookup LookupResult) (depletion.Record, bool, []depletion.ValidationError) {
	c := v.columns
	sku := row.Get(c.Product)
	distributor := row.Get(c.Seller)
	movementType := row.Get(c.Type)
	city := row.Get(c.City)
	state := row.Get(c.State)

	errs := make([]depletion.ValidationError, 0, 2)
	reject := func(format string, args ...any) {
		errs = append(errs, depletion.ValidationError{
			Line:     row.Line,
			Message:  fmt.Sprintf(format, args...),
			Severity: depletion.SeverityError,
		})
	}

	accepted := true
	for _, required := range []struct {
		column string
		value  string
	}{
		{c.Product, sku},
		{c.Seller, distributor},
		{c.Type, movementType},
		{c.City, city},
		{c.State, state},
	} {
		if required.value == "" {
			reject("Missing %s", required.column)
			accepted = false
		}
	}

	quantity, ok := parseQuantity(row.Get(c.Quantity))
	if !ok || !depletion.QuantityInRange(quantity, v.quantityMin, v.quantityMax) {
		reject("%s", depletion.QuantityRangeMessage(v.quantityMin, v.quantityMax))
		accepted = false
	}

	if len(v.allowedTypes) > 0 && movementType != "" {
		if _, known := v.allowedTypes[movementType]; !known {
			severity := depletion.SeverityWarning
			if v.blockInvalidType {
				severity = depletion.SeverityError
				accepted = false
			}
			errs = append(errs, depletion.ValidationError{
				Line:     row.Line,
				Message:  fmt.Sprintf("Type %q is not a valid option", movementType),
				Severity: severity,
			})
		}
	}

	productID, productFound := lookup.ProductID(sku)
	if sku != "" && !productFound {
		reject("%s %q not found", c.Product, sku)
	}
	if !productFound {
		accepted = false
	}

	sellerID, sellerFound := lookup.SellerID(distributor)
	if distributor != "" && !sellerFound {
		reject("%s %q not found", c.Seller, distributor)
	}
	if !sellerFound {
		accepted = false
	}

	if !accepted {
		return depletion.Record{}, false, errs
	}

	return depletion.Record{
		ProductID:   productID,
		ProductName: sku,
		SellerID:    sellerID,
		SellerName:  distributor,
		Country:     row.Get(c.Country),
		City:        city,
		State:       state,
		Type:        movementType,
		Quantity:    quantity,
	}, true, errs
}

// parseQuantity accepts whole numbers, including integral decimals like "12.0".
func parseQuantity(raw string) (int, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(cleaned); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseQuantity parses and range-checks a quantity typed by a user.
func ParseQuantity(raw string, min, max int) (int, error) {
	n, ok := parseQuantity(raw)
	if !ok || !depletion.QuantityInRange(n, min, max) {
		return 0, fmt.Errorf("%s", depletion.QuantityRangeMessage(min, max))
	}
	return n, nil
}
