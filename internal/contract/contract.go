// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/qascope/qascope/schema"
)

// Analyzer is a single canonical analysis capability. Run must always return a
// report, including when the target is missing or an internal step fails.
type Analyzer interface {
	// Name is the registry key, e.g. "security".
	Name() schema.AnalyzerName

	// Tool is the function-call name exposed to agents, e.g. "scan_security_vulnerabilities".
	Tool() string

	// Description is a one-line summary used in listings and tool metadata.
	Description() string

	// Run analyzes the target and renders the report.
	Run(ctx context.Context, target schema.AnalysisTarget) schema.Report
}

// HistoryManager defines the interface for accessing the run history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording analyzer runs and their findings.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(analyzer schema.AnalyzerName, target string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordFindings stores the findings produced by a run
	RecordFindings(runID int64, findings []schema.Finding) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every stored run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFindings retrieves every stored finding
	GetAllFindings() ([]schema.FindingRecord, error)

	// Close closes the underlying connection
	Close() error
}
