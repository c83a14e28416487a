package schema

import "time"

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFindings int              `json:"total_findings"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunSummary is what an analyzer run leaves behind in the history store.
type RunSummary struct {
	Analyzer     AnalyzerName
	Target       string
	Score        *int
	Failed       bool
	FilesScanned int
	Counts       TierCounts
}

// RunRecord represents a row from the qascope_runs table.
type RunRecord struct {
	RunID         int64
	Analyzer      string
	Target        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Score         *int32
	Failed        bool
	HighCount     int32
	MediumCount   int32
	LowCount      int32
	FilesScanned  int32
	ConfigParams  *string
}

// FindingRecord represents a row from the qascope_findings table.
type FindingRecord struct {
	RunID       int64
	FilePath    string
	Line        int32
	Tier        string
	Category    string
	Description string
}
