package cmd

import (
	"fmt"
	"os"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/runstore"
	"github.com/qascope/qascope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig reads and validates the backend settings shared by the history commands.
func historyConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseHistoryBackend(viper.GetString("history-backend"))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need store access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}

	if err := runstore.InitHistory(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store or create tables, so migrations can run on a fresh database.
func historyMigrateSetup() error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on run history management.
//
// Note: history subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by analysis commands. No target path is resolved.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored analyzer runs and exports",
	Long: `Manage the optional history of analyzer runs.

When a history backend is configured, every analyzer run from the CLI stores:
- Run metadata (analyzer, target, configuration, duration)
- The score and finding counts per severity tier
- Every finding in report order

Analyzers never read history back; it exists for trend tracking and export.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs and findings to Parquet
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  # Record runs to the default SQLite file
  qascope analyze --history-backend sqlite

  # Check what was stored
  qascope history status --history-backend sqlite`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show information about the stored run history.

Displays:
- Backend type and connection status
- Total number of runs and findings stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  qascope history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status := schema.HistoryStatus{Backend: string(schema.NoneBackend)}
		if store := runstore.Manager.GetHistoryStore(); store != nil {
			var err error
			if status, err = store.GetStatus(); err != nil {
				contract.LogFatal("Failed to get history status", err)
			}
		}
		if err := runstore.PrintHistoryStatus(os.Stdout, status); err != nil {
			contract.LogFatal("Failed to print history status", err)
		}
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored run history",
	Long: `Delete all stored runs and findings.

For SQLite the database file is removed. For MySQL and PostgreSQL the
history tables are dropped and recreated on the next recorded run.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  qascope history export --output-file backup
  qascope history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ClearHistory(cfg.HistoryBackend, runstore.GetDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and findings to Parquet.

Writes two files next to --output-file:
- <output-file>.runs.parquet     - one row per analyzer run
- <output-file>.findings.parquet - one row per finding

Requires: --output-file parameter

Examples:
  qascope history export --history-backend sqlite --output-file qascope

  # Query with DuckDB
  duckdb -c "SELECT analyzer, avg(score) FROM read_parquet('qascope.runs.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteHistoryExport(os.Stdout, runstore.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  qascope history migrate --history-backend sqlite

  # Rollback everything
  qascope history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
