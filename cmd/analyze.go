package cmd

import (
	"fmt"
	"strings"

	"github.com/qascope/qascope/core"
	"github.com/qascope/qascope/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd runs every path analyzer plus the configured probes.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run every analyzer against a project and print the reports.",
	Long: `Run all static analyzers against a file or folder and print one report per analyzer.

Each report ends with a score from 2 to 10 derived from its findings.
Ports given with --ports are probed after the static analyzers.

Examples:
  # Analyze the current directory
  qascope analyze

  # Only security and SQL, as JSON
  qascope analyze ./service --only security,sql --output json

  # Include the local dev server
  qascope analyze --ports 3000 --url-path /health

  # Export every finding to CSV
  qascope analyze --output csv --output-file findings.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor("Cannot run analysis", core.ExecuteAnalyze),
}

// runCmd runs a single analyzer by name.
var runCmd = &cobra.Command{
	Use:   "run <analyzer> [path]",
	Short: "Run a single analyzer.",
	Long: fmt.Sprintf(`Run one analyzer against a file or folder.

Available analyzers: %s

Examples:
  # Complexity of one package
  qascope run complexity ./app

  # Dependency manifests as JSON
  qascope run dependencies --output json`, strings.Join(analyzerNames(), ", ")),
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: analyzerNames(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !schema.IsValidAnalyzer(schema.AnalyzerName(args[0])) {
			return fmt.Errorf("unknown analyzer '%s'. must be one of %s", args[0], strings.Join(analyzerNames(), ", "))
		}
		return sharedSetup(rootCtx, cmd, args[1:])
	},
	Run: func(cmd *cobra.Command, args []string) {
		runExecutor("Cannot run analyzer", core.ExecuteRun(schema.AnalyzerName(args[0])))(cmd, args)
	},
}

// analyzerNames lists the registered analyzer names in report order.
func analyzerNames() []string {
	names := make([]string, 0, len(schema.AllAnalyzers))
	for _, name := range schema.AllAnalyzers {
		names = append(names, string(name))
	}
	return names
}
