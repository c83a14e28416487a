// Package cmd defines the command-line interface for qascope.
package cmd

import (
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path patterns to ignore")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Maximum lines shown per report section")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Prefix report titles with emojis (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log skipped files and other diagnostics to stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Probe flags shared by analyze and probe
	for _, c := range []*cobra.Command{analyzeCmd, probeCmd} {
		c.Flags().String("host", contract.DefaultHost, "Host to probe")
		c.Flags().String("ports", "", "Comma-separated list of ports to probe (e.g., 3000,8000)")
		c.Flags().String("timeout", contract.DefaultTimeout.String(), "Probe timeout (e.g., 5s)")
	}
	analyzeCmd.Flags().String("url-path", contract.DefaultURLPath, "URL path requested by probes")
	analyzeCmd.Flags().String("only", "", "Comma-separated list of analyzers to run")

	probeCmd.Flags().Int("port", 0, "Port of the local server to probe")
	probeCmd.Flags().String("path", contract.DefaultURLPath, "URL path to request")

	checkCmd.Flags().String("only", "", "Comma-separated list of analyzers to gate on")
	checkCmd.Flags().Int("min-score", contract.DefaultMinScore, "Minimum score every analyzer must reach")
	checkCmd.Flags().String("thresholds-override", "", "Per-analyzer minimum scores (format: 'security:7,sql:6')")

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
