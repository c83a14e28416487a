package cmd

import (
	"github.com/qascope/qascope/core"
	"github.com/spf13/cobra"
)

// listCmd prints the analyzer registry.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every analyzer and its tool name.",
	Long: `Print the analyzer registry: the name used with 'run' and --only, the
tool name exposed over MCP, and a one-line description.

No analysis is performed.`,
	Args: cobra.NoArgs,
	Run:  runExecutor("Cannot list analyzers", core.ExecuteList),
}
