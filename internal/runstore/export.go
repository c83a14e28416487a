package runstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/parquet"
)

// ExecuteHistoryExport exports every stored run and finding to two Parquet
// files named after outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled; set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total findings: %d\n", status.TotalFindings)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	findings, err := store.GetAllFindings()
	if err != nil {
		return fmt.Errorf("failed to retrieve findings: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	findingsFile := outputFile + ".findings.parquet"
	if err := parquet.WriteFindingsParquet(parquet.ConvertFindingRecords(findings), findingsFile); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d findings to: %s\n", len(findings), findingsFile)

	return nil
}
