package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/qascope/qascope/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultMinScore    = 5
	DefaultHost        = "localhost"
	DefaultURLPath     = "/"
	DefaultTimeout     = 10 * time.Second
)

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	TargetPath  string
	Excludes    []string
	ResultLimit int
	Output      schema.OutputMode
	OutputFile  string
	Only        []schema.AnalyzerName
	Width       int // Terminal width override (0 = auto-detect)

	Host    string
	URLPath string
	Ports   []int
	Timeout time.Duration

	MinScore   int
	Thresholds map[schema.AnalyzerName]int

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in report headers
	UseColors bool // Enable colored score labels
	Verbose   bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	TargetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Exclude          string `mapstructure:"exclude"`
	Limit            int    `mapstructure:"limit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`

	// --- Fields from analyzeCmd/probeCmd flags ---
	Only    string `mapstructure:"only"`
	Host    string `mapstructure:"host"`
	URLPath string `mapstructure:"url-path"`
	Port    int    `mapstructure:"port"`
	Ports   string `mapstructure:"ports"`
	Timeout string `mapstructure:"timeout"`

	// --- Fields from checkCmd.Flags() ---
	MinScore      int    `mapstructure:"min-score"`
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Per-analyzer minimum scores from config file ---
	Thresholds map[string]int `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	if c.Only != nil {
		clone.Only = make([]schema.AnalyzerName, len(c.Only))
		copy(clone.Only, c.Only)
	}
	if c.Ports != nil {
		clone.Ports = make([]int, len(c.Ports))
		copy(clone.Ports, c.Ports)
	}
	if c.Thresholds != nil {
		clone.Thresholds = make(map[schema.AnalyzerName]int, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

// ThresholdFor returns the minimum acceptable score for an analyzer.
func (c *Config) ThresholdFor(name schema.AnalyzerName) int {
	if v, ok := c.Thresholds[name]; ok {
		return v
	}
	return c.MinScore
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processProbeInputs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	return resolveTargetPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
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

// ParseHistoryBackend normalizes a raw backend string, mapping empty to none.
func ParseHistoryBackend(raw string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	// --- 3. Backend Validation ---
	backend, err := ParseHistoryBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// --- 4. Analyzer Selection ---
	cfg.Only = nil
	for name := range strings.SplitSeq(input.Only, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !schema.IsValidAnalyzer(schema.AnalyzerName(name)) {
			return fmt.Errorf("unknown analyzer '%s' in --only", name)
		}
		cfg.Only = append(cfg.Only, schema.AnalyzerName(name))
	}

	// --- 5. Excludes Processing ---
	cfg.Excludes = nil
	for p := range strings.SplitSeq(input.Exclude, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}

	return nil
}

// processProbeInputs handles host, url path, ports and timeout.
func processProbeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Host = strings.TrimSpace(input.Host)
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	cfg.URLPath = strings.TrimSpace(input.URLPath)
	if cfg.URLPath == "" {
		cfg.URLPath = DefaultURLPath
	}
	if !strings.HasPrefix(cfg.URLPath, "/") {
		cfg.URLPath = "/" + cfg.URLPath
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = d
	}

	ports, err := ParsePorts(input.Ports)
	if err != nil {
		return err
	}
	if input.Port != 0 {
		if err := validatePort(input.Port); err != nil {
			return err
		}
		ports = append([]int{input.Port}, ports...)
	}
	cfg.Ports = ports
	return nil
}

// ParsePorts parses a comma-separated port list such as "3000,8000".
func ParsePorts(s string) ([]int, error) {
	var ports []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		port, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid port '%s': %w", part, err)
		}
		if err := validatePort(port); err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (received %d)", port)
	}
	return nil
}

// processThresholds builds the per-analyzer minimum score map.
// Command-line --thresholds-override takes precedence over config file settings.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	cfg.MinScore = input.MinScore
	if cfg.MinScore < 0 || cfg.MinScore > schema.MaxScore {
		return fmt.Errorf("min-score must be between 0 and %d (received %d)", schema.MaxScore, cfg.MinScore)
	}

	thresholds := make(map[schema.AnalyzerName]int)
	for name, v := range input.Thresholds {
		thresholds[schema.AnalyzerName(strings.ToLower(name))] = v
	}

	if input.ThresholdsStr != "" {
		parsed, err := parseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for name, v := range thresholds {
		if !schema.IsValidAnalyzer(name) {
			return fmt.Errorf("unknown analyzer '%s' in thresholds", name)
		}
		if v < 0 || v > schema.MaxScore {
			return fmt.Errorf("threshold for %s must be between 0 and %d (received %d)", name, schema.MaxScore, v)
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

// parseThresholdsString parses "security:6,sql:4" into a map.
func parseThresholdsString(s string) (map[schema.AnalyzerName]int, error) {
	result := make(map[schema.AnalyzerName]int)
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("expected analyzer:score, got '%s'", pair)
		}
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid score for %s: %w", name, err)
		}
		result[schema.AnalyzerName(strings.ToLower(strings.TrimSpace(name)))] = v
	}
	return result, nil
}

// resolveTargetPath makes the positional target absolute. Existence is checked
// by each analyzer so a missing path becomes a failed report, not a CLI error.
func resolveTargetPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.TargetPathStr
	if searchPath == "" {
		searchPath = "."
	}
	abs, err := filepath.Abs(searchPath)
	if err != nil {
		return fmt.Errorf("cannot resolve target path %q: %w", searchPath, err)
	}
	cfg.TargetPath = filepath.Clean(abs)
	return nil
}
