// =============================================================================
// Fixture Survey - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config file (survey.yaml). A missing file is not an error.
//   3. Environment variables, optionally loaded from a .env file:
//        SURVEY_STORE_DRIVER, SURVEY_STORE_PATH, SURVEY_LOG_LEVEL,
//        SURVEY_OUTPUT_DIR
//
// All settings are validated once after they are merged.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/store"
)

// DefaultConfigFile is the config file used when none is given.
const DefaultConfigFile = "survey.yaml"

// Environment variables that override file settings.
const (
	EnvStoreDriver = "SURVEY_STORE_DRIVER"
	EnvStorePath   = "SURVEY_STORE_PATH"
	EnvLogLevel    = "SURVEY_LOG_LEVEL"
	EnvOutputDir   = "SURVEY_OUTPUT_DIR"
)

// CSV decoding modes.
const (
	// CSVModeNaive splits lines on newlines and fields on the delimiter.
	// Quoted fields are not supported.
	CSVModeNaive = "naive"

	// CSVModeQuoted decodes RFC 4180 CSV.
	CSVModeQuoted = "quoted"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// Store selects where the session and override state is kept.
	Store StoreSettings `yaml:"store"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where rendered reports are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat defines the format for report file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {customer}  - Customer name from the session
	//   {ext}       - File extension of the chosen format
	//
	// Default: "survey_report_{timestamp}.{ext}"
	OutputNameFormat string `yaml:"output_name_format"`

	// ArchiveDir receives a copy of any report file that is about to be
	// overwritten. Empty disables archival.
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveByDate files archived reports under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile is an optional log file. Logs always go to stderr as well.
	LogFile string `yaml:"log_file"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// CSV contains settings for decoding CSV input.
	CSV CSVSettings `yaml:"csv"`

	// Detection contains the column discovery settings.
	Detection DetectionSettings `yaml:"detection"`

	// CellRules clean up cell values before rows are ingested.
	// Rules run in order; see TransformationAction for the action types.
	CellRules []TransformationRule `yaml:"cell_rules"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// Report contains the report layout settings.
	Report ReportSettings `yaml:"report"`
}

// StoreSettings selects the state backend.
type StoreSettings struct {
	// Driver is one of "sqlite", "file" or "memory".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database or JSON file path.
	// Default: "./.survey/state.db" (sqlite) or "./.survey/state.json" (file)
	Path string `yaml:"path"`
}

// CSVSettings contains settings for decoding CSV files.
type CSVSettings struct {
	// Mode is "naive" (split on newline then delimiter) or "quoted".
	// Default: "naive"
	Mode string `yaml:"mode"`

	// Delimiter is the field separator.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// DetectionSettings controls column discovery.
type DetectionSettings struct {
	// Strategy is one of "auto", "fixed_columns", "header_keyword_search"
	// or "cell_content_scan".
	// Default: "auto"
	Strategy string `yaml:"strategy"`

	// FixedColumns are the 0-based fixture column indices used by the
	// fixed_columns strategy. Use -1 for a fixture that is not present.
	FixedColumns discovery.FixedColumns `yaml:"fixed_columns"`

	// HeaderSampleRows is how many rows are inspected when the input has
	// no usable header row.
	// Default: 10
	HeaderSampleRows int `yaml:"header_sample_rows"`

	// UnitColumn forces the unit column instead of discovering it.
	UnitColumn string `yaml:"unit_column"`

	// NotesColumns are copied into the unit notes.
	NotesColumns []string `yaml:"notes_columns"`
}

// ReportSettings contains the report layout settings.
type ReportSettings struct {
	// Title is printed at the top of every report page.
	// Default: "Water Installation Report"
	Title string `yaml:"title"`

	// PageSize is the number of units per report page.
	// Default: 10
	PageSize int `yaml:"page_size"`
}

// AllColumns is the rule column that matches every column.
const AllColumns = "*"

// TransformationRule defines the actions applied to the cells of one column.
type TransformationRule struct {
	// Column is the header of the column to transform, or "*" for all.
	Column string `yaml:"column"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single cell action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string"       : Add Value to the beginning
	//   - "append_string"        : Add Value to the end
	//   - "trim"                 : Remove leading and trailing whitespace
	//   - "uppercase"            : Convert to uppercase
	//   - "lowercase"            : Convert to lowercase
	//   - "replace"              : Replace Find with Value
	//   - "regex_replace"        : Replace the Find pattern with Value
	//   - "normalize_whitespace" : Collapse runs of whitespace
	//   - "extract_digits"       : Keep only the digits
	//   - "remove_leading_zeros" : Strip leading zeros, keeping one
	//   - "lookup"               : Replace using LookupTable (case-insensitive)
	//   - "lookup_with_default"  : Like lookup, Value when nothing matches
	//   - "if_empty_use_default" : Value when the cell is blank
	//   - "if_empty_use_field"   : The cell of column Value when blank
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable is used for "lookup" and "lookup_with_default".
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// CellActionTypes lists the supported cell action types.
var CellActionTypes = []string{
	"prepend_string", "append_string", "trim", "uppercase", "lowercase",
	"replace", "regex_replace", "normalize_whitespace", "extract_digits",
	"remove_leading_zeros", "lookup", "lookup_with_default",
	"if_empty_use_default", "if_empty_use_field",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg := newConfig()
	applyDefaults(cfg)
	return cfg
}

// newConfig returns an empty configuration. Fixed columns start out unset
// so that fixtures missing from the file stay absent.
func newConfig() *Config {
	return &Config{
		Detection: DetectionSettings{
			FixedColumns: discovery.FixedColumns{Kitchen: -1, Bathroom: -1, Shower: -1, Toilet: -1},
		},
	}
}

// Load loads the configuration from a YAML file and applies environment
// overrides.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. A missing file yields
//     the defaults.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be parsed or a setting is invalid.
func Load(configPath string) (*Config, error) {
	cfg := newConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment.
// Variables that are already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// applyEnv copies the environment overrides into the configuration.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvStoreDriver); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = store.DriverSQLite
	}
	if cfg.Store.Path == "" {
		switch strings.ToLower(cfg.Store.Driver) {
		case store.DriverSQLite:
			cfg.Store.Path = "./.survey/state.db"
		case store.DriverFile, "json":
			cfg.Store.Path = "./.survey/state.json"
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "survey_report_{timestamp}.{ext}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CSV.Mode == "" {
		cfg.CSV.Mode = CSVModeNaive
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.Detection.Strategy == "" {
		cfg.Detection.Strategy = string(discovery.StrategyAuto)
	}
	if cfg.Detection.HeaderSampleRows == 0 {
		cfg.Detection.HeaderSampleRows = discovery.MaxSampleRows
	}
	if cfg.Report.Title == "" {
		cfg.Report.Title = "Water Installation Report"
	}
	if cfg.Report.PageSize == 0 {
		cfg.Report.PageSize = 10
	}
}

// validate checks the merged configuration.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Store.Driver) {
	case store.DriverSQLite, store.DriverFile, "json", store.DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	switch cfg.CSV.Mode {
	case CSVModeNaive, CSVModeQuoted:
	default:
		return fmt.Errorf("unknown csv mode %q (expected %q or %q)", cfg.CSV.Mode, CSVModeNaive, CSVModeQuoted)
	}
	if len([]rune(cfg.CSV.Delimiter)) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", cfg.CSV.Delimiter)
	}

	if _, err := discovery.ParseStrategy(cfg.Detection.Strategy); err != nil {
		return err
	}
	if cfg.Detection.HeaderSampleRows < 1 || cfg.Detection.HeaderSampleRows > discovery.MaxSampleRows {
		return fmt.Errorf("header_sample_rows must be between 1 and %d", discovery.MaxSampleRows)
	}

	if cfg.Report.PageSize < 1 {
		return fmt.Errorf("report page_size must be positive, got %d", cfg.Report.PageSize)
	}

	for i, rule := range cfg.CellRules {
		if strings.TrimSpace(rule.Column) == "" {
			return fmt.Errorf("cell_rules[%d]: column is required", i)
		}
		for j, action := range rule.Actions {
			if !slices.Contains(CellActionTypes, action.Type) {
				return fmt.Errorf("cell_rules[%d].actions[%d]: unknown action type %q", i, j, action.Type)
			}
			if action.Type == "regex_replace" {
				if _, err := regexp.Compile(action.Find); err != nil {
					return fmt.Errorf("cell_rules[%d].actions[%d]: invalid pattern: %w", i, j, err)
				}
			}
		}
	}

	return nil
}

// Strategy returns the parsed detection strategy.
func (c *Config) Strategy() discovery.Strategy {
	s, err := discovery.ParseStrategy(c.Detection.Strategy)
	if err != nil {
		return discovery.StrategyAuto
	}
	return s
}
