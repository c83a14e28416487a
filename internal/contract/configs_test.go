package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:         DefaultResultLimit,
		Output:        "text",
		Emoji:         "yes",
		Color:         "no",
		MinScore:      DefaultMinScore,
		TargetPathStr: ".",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				abs, _ := filepath.Abs(".")
				assert.Equal(t, abs, cfg.TargetPath)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
				assert.Equal(t, DefaultHost, cfg.Host)
				assert.Equal(t, DefaultURLPath, cfg.URLPath)
				assert.Equal(t, DefaultTimeout, cfg.Timeout)
				assert.True(t, cfg.UseEmojis)
				assert.False(t, cfg.UseColors)
			},
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "limit too large",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: "limit must be greater than 0",
		},
		{
			name:        "invalid emoji flag",
			mutate:      func(in *ConfigRawInput) { in.Emoji = "maybe" },
			expectError: "invalid --emoji value",
		},
		{
			name:        "only list parsed",
			mutate:      func(in *ConfigRawInput) { in.Only = "security, SQL ,deps-typo" },
			expectError: "unknown analyzer 'deps-typo'",
		},
		{
			name:   "only list valid",
			mutate: func(in *ConfigRawInput) { in.Only = "security,sql" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []schema.AnalyzerName{schema.SecurityAnalyzer, schema.SQLAnalyzer}, cfg.Only)
			},
		},
		{
			name: "ports merged with port",
			mutate: func(in *ConfigRawInput) {
				in.Port = 3000
				in.Ports = "8000, 5173"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []int{3000, 8000, 5173}, cfg.Ports)
			},
		},
		{
			name:        "port out of range",
			mutate:      func(in *ConfigRawInput) { in.Ports = "70000" },
			expectError: "port must be between 1 and 65535",
		},
		{
			name:   "url path gets leading slash",
			mutate: func(in *ConfigRawInput) { in.URLPath = "health" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/health", cfg.URLPath)
			},
		},
		{
			name:   "custom timeout",
			mutate: func(in *ConfigRawInput) { in.Timeout = "250ms" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
			},
		},
		{
			name:        "bad timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectError: "invalid timeout",
		},
		{
			name:        "invalid history backend",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "oracle" },
			expectError: "invalid history backend",
		},
		{
			name:        "mysql without connection string",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "mysql" },
			expectError: "history-db-connect is required",
		},
		{
			name: "thresholds from file and flag",
			mutate: func(in *ConfigRawInput) {
				in.Thresholds = map[string]int{"security": 8, "sql": 3}
				in.ThresholdsStr = "sql:6"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.ThresholdFor(schema.SecurityAnalyzer))
				assert.Equal(t, 6, cfg.ThresholdFor(schema.SQLAnalyzer))
				assert.Equal(t, DefaultMinScore, cfg.ThresholdFor(schema.SyntaxAnalyzer))
			},
		},
		{
			name:        "threshold out of range",
			mutate:      func(in *ConfigRawInput) { in.ThresholdsStr = "security:11" },
			expectError: "threshold for security must be between 0 and 10",
		},
		{
			name:        "threshold for unknown analyzer",
			mutate:      func(in *ConfigRawInput) { in.Thresholds = map[string]int{"lint": 4} },
			expectError: "unknown analyzer 'lint'",
		},
		{
			name:        "malformed thresholds override",
			mutate:      func(in *ConfigRawInput) { in.ThresholdsStr = "security" },
			expectError: "expected analyzer:score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Excludes:   []string{"vendor/"},
		Only:       []schema.AnalyzerName{schema.SecurityAnalyzer},
		Ports:      []int{3000},
		Thresholds: map[schema.AnalyzerName]int{schema.SQLAnalyzer: 4},
	}
	clone := cfg.Clone()
	clone.Excludes[0] = "changed"
	clone.Only[0] = schema.SQLAnalyzer
	clone.Ports[0] = 1
	clone.Thresholds[schema.SQLAnalyzer] = 9

	assert.Equal(t, "vendor/", cfg.Excludes[0])
	assert.Equal(t, schema.SecurityAnalyzer, cfg.Only[0])
	assert.Equal(t, 3000, cfg.Ports[0])
	assert.Equal(t, 4, cfg.Thresholds[schema.SQLAnalyzer])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty ok", schema.SQLiteBackend, "", false},
		{"none ok", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/qascope", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/qascope", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=qascope", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePorts(t *testing.T) {
	ports, err := ParsePorts("")
	require.NoError(t, err)
	assert.Empty(t, ports)

	ports, err = ParsePorts("3000,,8080")
	require.NoError(t, err)
	assert.Equal(t, []int{3000, 8080}, ports)

	_, err = ParsePorts("abc")
	assert.Error(t, err)
}
