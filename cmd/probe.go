package cmd

import (
	"fmt"

	"github.com/qascope/qascope/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// probeCmd checks that a local development server answers.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe a local development server.",
	Long: `Send a single GET request to a local endpoint and report whether it answers.

The report covers the status code, latency band, page title, detected
frameworks and error markers in the body. Redirects are not followed.

Examples:
  # Probe the default React dev server
  qascope probe --port 3000

  # Probe a health endpoint with a short timeout
  qascope probe --port 8000 --path /health --timeout 2s

  # Probe several ports at once
  qascope probe --ports 3000,5173,8000`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("url-path", cmd.Flags().Lookup("path")); err != nil {
			return fmt.Errorf("failed to bind path flag: %w", err)
		}
		return sharedSetup(rootCtx, cmd, args)
	},
	Run: runExecutor("Cannot probe endpoint", core.ExecuteProbe),
}
