// Package parquet exports qascope run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/qascope/qascope/schema"
)

// Run is a single analyzer run. It maps to the qascope_runs table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Analyzer is the registry name of the analyzer that ran
	Analyzer string `parquet:"analyzer,snappy,dict"`

	// Target is the sanitized path or URL that was analyzed
	Target string `parquet:"target,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the run duration in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Score is the 0-10 score; null for failed runs
	Score *int32 `parquet:"score,optional,snappy"`

	Failed       bool  `parquet:"failed,snappy"`
	HighCount    int32 `parquet:"high_count,snappy"`
	MediumCount  int32 `parquet:"medium_count,snappy"`
	LowCount     int32 `parquet:"low_count,snappy"`
	FilesScanned int32 `parquet:"files_scanned,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Finding is one finding recorded by a run. It maps to the qascope_findings table.
type Finding struct {
	RunID       int64  `parquet:"run_id,snappy"`
	FilePath    string `parquet:"file_path,snappy"`
	Line        int32  `parquet:"line,snappy"`
	Tier        string `parquet:"tier,snappy,dict"`
	Category    string `parquet:"category,snappy,dict"`
	Description string `parquet:"description,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file at outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFindingsParquet writes findings to a Parquet file at outputPath.
func WriteFindingsParquet(data []Finding, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Analyzer:      record.Analyzer,
			Target:        record.Target,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Score:         record.Score,
			Failed:        record.Failed,
			HighCount:     record.HighCount,
			MediumCount:   record.MediumCount,
			LowCount:      record.LowCount,
			FilesScanned:  record.FilesScanned,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFindingRecords converts stored findings for Parquet export.
func ConvertFindingRecords(records []schema.FindingRecord) []Finding {
	result := make([]Finding, len(records))
	for i, record := range records {
		result[i] = Finding{
			RunID:       record.RunID,
			FilePath:    record.FilePath,
			Line:        record.Line,
			Tier:        record.Tier,
			Category:    record.Category,
			Description: record.Description,
		}
	}
	return result
}
