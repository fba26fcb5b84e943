// =============================================================================
// Project Data Cleaner - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the dataset
// configurations that bind input columns to field types.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Dataset Configs (configs/*.yaml): One file per input dataset
//
// LOADING ORDER:
//   1. YAML file
//   2. Defaults for unset options
//   3. Optional .env file (godotenv), then CLEANER_* environment overrides
//      (envconfig), e.g. CLEANER_LOG_LEVEL=debug, CLEANER_AUDIT_DSN=...
//   4. Struct validation (go-playground/validator)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "CLEANER"

// ErrNoDatasets is returned when the configs directory holds no dataset file.
var ErrNoDatasets = errors.New("no dataset configurations found")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for raw CSV files and workbooks.
	// Default: "./input"
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`

	// OutputDir receives the cleaned CSV files and cleaning_report.txt.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// ConfigsDir is the directory containing dataset configurations.
	// Default: "./configs"
	ConfigsDir string `yaml:"configs_dir" envconfig:"CONFIGS_DIR" validate:"required"`

	// LogsDir receives cleaning_warnings.log. Empty disables the file log.
	// Default: "./logs"
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of console logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the cleaned file name.
	// Placeholders:
	//   {stem}      - Input file name without extension and "_raw" suffix
	//   {dataset}   - Dataset code
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "{stem}_clean.csv"
	OutputNameFormat string `yaml:"output_name_format" envconfig:"OUTPUT_NAME_FORMAT" validate:"required"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"gte=1,lte=64"`

	// ContinueOnError keeps processing other files when one file fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`

	// ExtractWorkbooks converts every sheet of every .xlsx in InputDir to a
	// raw CSV before processing.
	ExtractWorkbooks bool `yaml:"extract_workbooks" envconfig:"EXTRACT_WORKBOOKS"`

	// =========================================================================
	// AUDIT SETTINGS
	// =========================================================================

	// Audit configures the SQL audit trail. Disabled when Driver is empty.
	Audit AuditConfig `yaml:"audit" envconfig:"AUDIT"`
}

// AuditConfig configures persistence of Failed and Corrected outcomes.
type AuditConfig struct {
	// Driver is the database/sql driver name: "postgres" or "sqlite3".
	Driver string `yaml:"driver" envconfig:"DRIVER" validate:"omitempty,oneof=postgres sqlite3"`

	// DSN is the data source name passed to the driver.
	DSN string `yaml:"dsn" envconfig:"DSN" validate:"required_with=Driver"`

	// Table is the audit table name.
	// Default: "cleaning_audit"
	Table string `yaml:"table" envconfig:"TABLE" validate:"omitempty,alphanumunderscore"`
}

// Enabled reports whether an audit sink should be opened.
func (a AuditConfig) Enabled() bool {
	return a.Driver != ""
}

// ShouldContinueOnError reports the effective continue_on_error setting.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// DATASET CONFIGURATION STRUCTURE
// =============================================================================

// DatasetConfig describes one input dataset: which files belong to it, how
// they are parsed and which resolver handles each column.
type DatasetConfig struct {
	// DatasetName is the human-readable name used in logs and reports.
	DatasetName string `yaml:"dataset_name" validate:"required"`

	// DatasetCode is a short identifier used by --dataset and {dataset}.
	// Default: the config file name without extension.
	DatasetCode string `yaml:"dataset_code"`

	// FileMatchingPatterns are glob patterns matched against input file names.
	// Examples:
	//   - "Projetos*.csv"
	//   - "*_custos_raw.csv"
	FileMatchingPatterns []string `yaml:"file_matching_patterns" validate:"required,min=1,dive,required"`

	// CSVSettings contains settings for parsing the input CSV file.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Fields binds columns to field types. Columns without an entry are
	// copied through with only null canonicalization.
	Fields []FieldConfig `yaml:"fields" validate:"required,min=1,dive"`

	schema *normalize.Schema
}

// Schema returns the field schema built when the config was loaded.
func (d *DatasetConfig) Schema() *normalize.Schema {
	return d.schema
}

// Matches reports whether fileName matches one of the dataset's patterns.
// Matching is done on the base name only.
func (d *DatasetConfig) Matches(fileName string) bool {
	base := filepath.Base(fileName)
	for _, pattern := range d.FileMatchingPatterns {
		matched, err := filepath.Match(pattern, base)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter" validate:"len=1"`

	// HeaderRows is the number of header rows. The last one names the columns.
	// Default: 1
	HeaderRows int `yaml:"header_rows" validate:"gte=1"`

	// DataStartRow is the 1-based row number where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row" validate:"gtfield=HeaderRows"`

	// Encoding is the character encoding of the CSV file.
	// Valid values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" validate:"oneof=UTF-8 ISO-8859-1 Windows-1252"`

	// OutputDelimiter is the delimiter of the cleaned file.
	// Default: ","
	OutputDelimiter string `yaml:"output_delimiter" validate:"len=1"`
}

// =============================================================================
// FIELD CONFIGURATION STRUCTURE
// =============================================================================

// FieldConfig binds one column to a field type.
type FieldConfig struct {
	// Column is the header of the column in the input file.
	Column string `yaml:"column" validate:"required"`

	// Type is one of: text, date, currency, percentage, duration, category,
	// boolean.
	Type string `yaml:"type" validate:"required,fieldkind"`

	// Table names the category table for category fields:
	// "priority", "status" or "boolean".
	Table string `yaml:"table" validate:"required_if=Type category,omitempty,categorytable"`

	// Cap is the percentage ceiling for percentage fields.
	// Default: 100
	Cap int `yaml:"cap" validate:"gte=0"`

	// Lowercase lowercases free text fields.
	Lowercase bool `yaml:"lowercase"`
}

// Spec converts the config entry to a field spec.
func (f FieldConfig) Spec() normalize.FieldSpec {
	return normalize.FieldSpec{
		Name:      f.Column,
		Kind:      normalize.Kind(f.Type),
		Table:     f.Table,
		Cap:       f.Cap,
		Lowercase: f.Lowercase,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// newValidator returns a validator that reports yaml field names and knows
// the field kinds and category tables.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("fieldkind", func(fl validator.FieldLevel) bool {
		_, err := normalize.ParseKind(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("categorytable", func(fl validator.FieldLevel) bool {
		_, err := normalize.LookupTable(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("alphanumunderscore", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return false
			}
		}
		return true
	})

	return v
}

// describeValidation flattens validator errors into one readable error.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (%s), got %v", ns, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q, got %v", ns, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file and applies
// environment overrides.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg MainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads path into the environment when it exists. Variables that
// are already set keep their value.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(cfg *MainConfig) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.ConfigsDir == "" {
		cfg.ConfigsDir = "./configs"
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = "./logs"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{stem}_clean.csv"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Audit.Driver != "" && cfg.Audit.Table == "" {
		cfg.Audit.Table = "cleaning_audit"
	}
}

// ValidateMainConfig validates the main configuration.
func ValidateMainConfig(cfg *MainConfig) error {
	if cfg.Audit.Driver != "" && cfg.Audit.Table == "" {
		cfg.Audit.Table = "cleaning_audit"
	}
	if err := newValidator().Struct(cfg); err != nil {
		return describeValidation(err)
	}
	return nil
}

// LoadDatasetConfigs loads all dataset configurations from a directory.
//
// PARAMETERS:
//   - configsDir: The directory containing dataset configuration files.
//
// RETURNS:
//   - A map of dataset configurations, keyed by dataset code.
//   - ErrNoDatasets if the directory has no .yaml or .yml file.
//   - An error if any file cannot be parsed or is invalid.
func LoadDatasetConfigs(configsDir string) (map[string]*DatasetConfig, error) {
	files, err := filepath.Glob(filepath.Join(configsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(configsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	files = append(files, ymlFiles...)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDatasets, configsDir)
	}

	configs := make(map[string]*DatasetConfig, len(files))
	for _, file := range files {
		cfg, err := LoadDatasetConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if _, dup := configs[cfg.DatasetCode]; dup {
			return nil, fmt.Errorf("dataset code %q is defined more than once", cfg.DatasetCode)
		}
		configs[cfg.DatasetCode] = cfg
	}

	return configs, nil
}

// LoadDatasetConfig loads, validates and compiles a single dataset file.
func LoadDatasetConfig(filePath string) (*DatasetConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg DatasetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if cfg.DatasetCode == "" {
		cfg.DatasetCode = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	applyDatasetConfigDefaults(&cfg)

	if err := newValidator().Struct(&cfg); err != nil {
		return nil, describeValidation(err)
	}

	specs := make([]normalize.FieldSpec, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		specs = append(specs, f.Spec())
	}
	schema, err := normalize.NewSchema(cfg.DatasetCode, specs)
	if err != nil {
		return nil, err
	}
	cfg.schema = schema

	return &cfg, nil
}

// applyDatasetConfigDefaults sets default values for dataset configuration.
func applyDatasetConfigDefaults(cfg *DatasetConfig) {
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.HeaderRows == 0 {
		cfg.CSVSettings.HeaderRows = 1
	}
	if cfg.CSVSettings.DataStartRow == 0 {
		cfg.CSVSettings.DataStartRow = cfg.CSVSettings.HeaderRows + 1
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "UTF-8"
	}
	if cfg.CSVSettings.OutputDelimiter == "" {
		cfg.CSVSettings.OutputDelimiter = ","
	}
}

// FindDataset returns the dataset whose patterns match filePath. Datasets are
// tried in code order so the result does not depend on map iteration.
func FindDataset(filePath string, datasets map[string]*DatasetConfig) *DatasetConfig {
	codes := make([]string, 0, len(datasets))
	for code := range datasets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if datasets[code].Matches(filePath) {
			return datasets[code]
		}
	}
	return nil
}
