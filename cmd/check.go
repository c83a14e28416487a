package cmd

import (
	"github.com/qascope/qascope/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Enforce minimum scores for CI/CD pipelines (fails build on violations)",
	Long: `Run the static analyzers and fail with a non-zero exit code when any score
falls below its threshold or any analyzer cannot complete.

Default threshold: 5 for every analyzer. Per-analyzer thresholds can be set
under 'thresholds' in .qascope.yaml or with --thresholds-override.

Use cases:
- Pull request gates - block merges that introduce risky code
- Release validation - require clean security and SQL reports
- Quality enforcement - keep documentation and tests from slipping

Examples:
  # Gate on the default minimum score
  qascope check

  # Stricter security, looser docs
  qascope check --thresholds-override "security:8,docs:3"

  # Only gate on security and dependencies
  qascope check --only security,dependencies --min-score 7`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor("Quality check failed", core.ExecuteCheck),
}
