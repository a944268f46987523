package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"depletions/depletion"
)

// Writer renders the working list in one file format.
type Writer interface {
	Write(w io.Writer, records []depletion.Record) error
	ContentType() string
	Extension() string
}

var exportHeaders = []string{"Id", "Product", "ProductId", "Distributor", "DistributorId", "Country", "City", "State", "Type", "Quantity"}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "", "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile renders records to path.
func WriteFile(path string, writer Writer, records []depletion.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := writer.Write(file, records); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	return nil
}

func exportRow(record depletion.Record) []string {
	return []string{
		record.Token,
		record.ProductName,
		record.ProductID,
		record.SellerName,
		record.SellerID,
		record.Country,
		record.City,
		record.State,
		record.Type,
		strconv.Itoa(record.Quantity),
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
