package runstore

import (
	"bytes"
	"testing"
	"time"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHistoryStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"}))
		assert.Equal(t, "History Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("with runs", func(t *testing.T) {
		var buf bytes.Buffer
		now := time.Now()
		status := schema.HistoryStatus{
			Backend:       "sqlite",
			Connected:     true,
			TotalRuns:     3,
			LastRunID:     3,
			LastRunTime:   now,
			OldestRunTime: now.Add(-time.Hour),
			TotalFindings: 5,
			TableSizes:    map[string]int64{runsTable: 3, findingsTable: 5},
		}
		require.NoError(t, PrintHistoryStatus(&buf, status))

		out := buf.String()
		assert.Contains(t, out, "History Backend: sqlite")
		assert.Contains(t, out, "Total Runs: 3")
		assert.Contains(t, out, "Last Run ID: 3")
		assert.Contains(t, out, "Total Findings: 5")
		assert.Contains(t, out, "qascope_runs")
		assert.Contains(t, out, "qascope_findings")
	})
}
