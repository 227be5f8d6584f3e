package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 1
	DefaultReportPrefix = "bug_analysis"
	DefaultReportDir    = "."
	DefaultPreviewRows  = 0
	MaxPreviewRows      = 1_000_000
)

// DefaultExtensions are the input extensions accepted when none are configured.
var DefaultExtensions = []string{".xlsx", ".xlsm", ".csv"}

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	Inputs       []string
	Extensions   []string
	Sheet        string
	Workers      int
	Output       schema.OutputMode
	OutputFile   string
	Precision    int
	Width        int // Terminal width override (0 = auto-detect)
	WriteReport  bool
	ReportDir    string
	ReportPrefix string
	PreviewRows  int // 0 = every row goes into the detail section

	Vocabulary Vocabulary

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Inputs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Extensions     string `mapstructure:"extensions"`
	Sheet          string `mapstructure:"sheet"`
	Workers        int    `mapstructure:"workers"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	Report            string `mapstructure:"report"`
	ReportDir         string `mapstructure:"report-dir"`
	ReportPrefix      string `mapstructure:"report-prefix"`
	PreviewRows       int    `mapstructure:"preview-rows"`
	DefaultDefectType string `mapstructure:"default-defect-type"`

	// --- Vocabulary overrides from config file ---
	Vocabulary VocabularyRawInput `mapstructure:"vocabulary"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Inputs = slices.Clone(c.Inputs)
	clone.Extensions = slices.Clone(c.Extensions)
	clone.Vocabulary = c.Vocabulary.Clone()
	return &clone
}

// ConfigParams returns the settings recorded alongside each tracked run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"inputs":              c.Inputs,
		"extensions":          c.Extensions,
		"sheet":               c.Sheet,
		"workers":             c.Workers,
		"preview_rows":        c.PreviewRows,
		"default_defect_type": string(c.Vocabulary.DefaultDefectType),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processReportOptions(cfg, input); err != nil {
		return err
	}
	vocab, err := ProcessVocabulary(input.Vocabulary, input.DefaultDefectType)
	if err != nil {
		return err
	}
	cfg.Vocabulary = vocab
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseExtensions turns "xlsx, .CSV" into [".xlsx", ".csv"], dropping blanks and repeats.
func ParseExtensions(raw string) []string {
	var exts []string
	for part := range strings.SplitSeq(raw, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return exts
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Inputs = slices.Clone(input.Inputs)
	cfg.Sheet = strings.TrimSpace(input.Sheet)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := parseOptionalBool(input.Emoji, false)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := parseOptionalBool(input.Color, false)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.Extensions = ParseExtensions(input.Extensions)
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = slices.Clone(DefaultExtensions)
	}

	return nil
}

// validateBackendConfigs validates cache and run-history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// Both stores on the same SQLite file would clear each other
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runDBPath := cfg.RunDBConnect
		if runDBPath == "" {
			runDBPath = GetRunDBFilePath()
		}
		if cacheDBPath == runDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// processReportOptions handles the workbook report settings.
func processReportOptions(cfg *Config, input *ConfigRawInput) error {
	write, err := parseOptionalBool(input.Report, true)
	if err != nil {
		return fmt.Errorf("invalid --report value: %w", err)
	}
	cfg.WriteReport = write

	cfg.ReportDir = input.ReportDir
	if cfg.ReportDir == "" {
		cfg.ReportDir = DefaultReportDir
	}
	cfg.ReportPrefix = strings.TrimSpace(input.ReportPrefix)
	if cfg.ReportPrefix == "" {
		cfg.ReportPrefix = DefaultReportPrefix
	}
	if strings.ContainsAny(cfg.ReportPrefix, `/\`) {
		return fmt.Errorf("report prefix must not contain path separators (received %q)", cfg.ReportPrefix)
	}

	if input.PreviewRows < 0 || input.PreviewRows > MaxPreviewRows {
		return fmt.Errorf("preview-rows must be between 0 and %d (received %d)", MaxPreviewRows, input.PreviewRows)
	}
	cfg.PreviewRows = input.PreviewRows
	return nil
}

// parseOptionalBool is ParseBoolString with a fallback for unset values.
func parseOptionalBool(s string, fallback bool) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return ParseBoolString(s)
}
