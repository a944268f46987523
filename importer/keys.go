package importer

import (
	"sort"
	"strings"
)

// Keys holds the distinct lookup keys referenced by a batch.
type Keys struct {
	ProductCodes []string
	SellerNames  []string
}

func (k Keys) Empty() bool {
	return len(k.ProductCodes) == 0 && len(k.SellerNames) == 0
}

// CollectKeys gathers trimmed, non-empty, de-duplicated product codes and
// seller names across all rows so each lookup is issued once per batch.
func CollectKeys(rows []Row, columns Columns) Keys {
	return Keys{
		ProductCodes: distinctValues(rows, columns.Product),
		SellerNames:  distinctValues(rows, columns.Seller),
	}
}

func distinctValues(rows []Row, column string) []string {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		value := strings.TrimSpace(row.Get(column))
		if value == "" {
			continue
		}
		seen[value] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
