package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"depletions/importer"
)

const (
	KeyDirectoryMode      = "directory.mode"
	KeyDirectoryURL       = "directory.url"
	KeyDirectoryToken     = "directory.token"
	KeyDirectoryTimeout   = "directory.timeout"
	KeyImportDelimiter    = "import.delimiter"
	KeyImportBlockInvalid = "import.block_invalid_type"
	KeyImportQuantityMin  = "import.quantity_min"
	KeyImportQuantityMax  = "import.quantity_max"
	KeyImportColumns      = "import.columns"
	KeySubmitBatchSize    = "submit.batch_size"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
)

const (
	DirectoryModeSQLite = "sqlite"
	DirectoryModeHTTP   = "http"

	defaultDirectoryTimeout = 30 * time.Second
)

type Config struct {
	Directory DirectoryConfig `mapstructure:"directory"`
	Import    ImportConfig    `mapstructure:"import"`
	Submit    SubmitConfig    `mapstructure:"submit"`
	Log       LogConfig       `mapstructure:"log"`
}

type DirectoryConfig struct {
	Mode    string        `mapstructure:"mode" validate:"required,oneof=sqlite http"`
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type ImportConfig struct {
	Delimiter        string           `mapstructure:"delimiter"`
	BlockInvalidType bool             `mapstructure:"block_invalid_type"`
	QuantityMin      int              `mapstructure:"quantity_min" validate:"gte=1"`
	QuantityMax      int              `mapstructure:"quantity_max" validate:"gte=1,lte=99999"`
	Columns          importer.Columns `mapstructure:"columns"`
}

// DelimiterRune returns the configured field separator; "\t" and "tab" name
// the tab character.
func (c ImportConfig) DelimiterRune() rune {
	switch strings.ToLower(c.Delimiter) {
	case "", ",":
		return ','
	case `\t`, "tab", "\t":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

type SubmitConfig struct {
	BatchSize int `mapstructure:"batch_size" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# depletions configuration
directory:
  mode: "sqlite"      # sqlite | http
  url: ""             # required when mode is http
  token: ""
  timeout: "30s"

import:
  delimiter: ","
  block_invalid_type: false
  quantity_min: 1
  quantity_max: 99999
  columns:
    product: "Product SKU"
    seller: "Distributor"
    country: "Country"
    city: "City"
    state: "State"
    type: "Case/Bottles"
    quantity: "Quantity"

submit:
  batch_size: 200

log:
  level: "info"       # trace | debug | info | warn | error
  format: "console"   # console | json
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Directory.Mode = strings.ToLower(strings.TrimSpace(cfg.Directory.Mode))
	cfg.Import.Columns = cfg.Import.Columns.WithDefaults()

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := importer.DefaultColumns()
	v.SetDefault(KeyDirectoryMode, DirectoryModeSQLite)
	v.SetDefault(KeyDirectoryURL, "")
	v.SetDefault(KeyDirectoryToken, "")
	v.SetDefault(KeyDirectoryTimeout, defaultDirectoryTimeout)
	v.SetDefault(KeyImportDelimiter, ",")
	v.SetDefault(KeyImportBlockInvalid, false)
	v.SetDefault(KeyImportQuantityMin, 1)
	v.SetDefault(KeyImportQuantityMax, 99999)
	v.SetDefault(KeyImportColumns+".product", defaults.Product)
	v.SetDefault(KeyImportColumns+".seller", defaults.Seller)
	v.SetDefault(KeyImportColumns+".country", defaults.Country)
	v.SetDefault(KeyImportColumns+".city", defaults.City)
	v.SetDefault(KeyImportColumns+".state", defaults.State)
	v.SetDefault(KeyImportColumns+".type", defaults.Type)
	v.SetDefault(KeyImportColumns+".quantity", defaults.Quantity)
	v.SetDefault(KeySubmitBatchSize, 200)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

func validateSettings(cfg Config) error {
	if cfg.Directory.Mode == DirectoryModeHTTP && strings.TrimSpace(cfg.Directory.URL) == "" {
		return fmt.Errorf("validation failed: directory.url is required when directory.mode is %q", DirectoryModeHTTP)
	}
	if cfg.Import.QuantityMin > cfg.Import.QuantityMax {
		return fmt.Errorf(
			"validation failed: import.quantity_min (%d) must not exceed import.quantity_max (%d)",
			cfg.Import.QuantityMin,
			cfg.Import.QuantityMax,
		)
	}
	if utf8.RuneCountInString(cfg.Import.Delimiter) > 1 && cfg.Import.DelimiterRune() != '\t' {
		return fmt.Errorf("validation failed: import.delimiter %q must be a single character", cfg.Import.Delimiter)
	}
	switch cfg.Import.DelimiterRune() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("validation failed: import.delimiter %q is not usable", cfg.Import.Delimiter)
	}

	seen := make(map[string]string, 7)
	columns := cfg.Import.Columns
	for key, name := range map[string]string{
		"product":  columns.Product,
		"seller":   columns.Seller,
		"country":  columns.Country,
		"city":     columns.City,
		"state":    columns.State,
		"type":     columns.Type,
		"quantity": columns.Quantity,
	} {
		if other, exists := seen[name]; exists {
			return fmt.Errorf("validation failed: import.columns.%s and import.columns.%s both use %q", other, key, name)
		}
		seen[name] = key
	}
	return nil
}
