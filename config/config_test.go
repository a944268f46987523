package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("example config should be valid: %v", err)
	}
	if cfg.Directory.Mode != DirectoryModeSQLite {
		t.Fatalf("unexpected directory mode: %q", cfg.Directory.Mode)
	}
	if cfg.Directory.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Directory.Timeout)
	}
	if cfg.Import.Columns.Type != "Case/Bottles" || cfg.Submit.BatchSize != 200 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestValidateYAMLContent_DefaultsFillMissingKeys(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("import:\n  columns:\n    product: \"SKU\"\n"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Import.Columns.Product != "SKU" || cfg.Import.Columns.Seller != "Distributor" {
		t.Fatalf("unexpected columns: %+v", cfg.Import.Columns)
	}
	if cfg.Import.QuantityMin != 1 || cfg.Import.QuantityMax != 99999 {
		t.Fatalf("unexpected quantity range: %d..%d", cfg.Import.QuantityMin, cfg.Import.QuantityMax)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestValidateYAMLContent_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "http mode without url",
			content: "directory:\n  mode: \"http\"\n",
			want:    "directory.url is required",
		},
		{
			name:    "unknown mode",
			content: "directory:\n  mode: \"ftp\"\n",
			want:    "validation failed",
		},
		{
			name:    "inverted quantity range",
			content: "import:\n  quantity_min: 10\n  quantity_max: 5\n",
			want:    "must not exceed",
		},
		{
			name:    "quantity max above limit",
			content: "import:\n  quantity_max: 100000\n",
			want:    "validation failed",
		},
		{
			name:    "multi character delimiter",
			content: "import:\n  delimiter: \";;\"\n",
			want:    "single character",
		},
		{
			name:    "duplicate column names",
			content: "import:\n  columns:\n    city: \"Place\"\n    state: \"Place\"\n",
			want:    "both use \"Place\"",
		},
		{
			name:    "unknown log format",
			content: "log:\n  format: \"xml\"\n",
			want:    "validation failed",
		},
	}

	for _, tt := range tests {
		_, err := ValidateYAMLContent([]byte(tt.content))
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected %q in error, got %v", tt.name, tt.want, err)
		}
	}
}

func TestImportConfig_DelimiterRune(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]rune{"": ',', ";": ';', `\t`: '\t', "tab": '\t', "|": '|'} {
		if got := (ImportConfig{Delimiter: input}).DelimiterRune(); got != want {
			t.Fatalf("delimiter %q: expected %q, got %q", input, want, got)
		}
	}
}
