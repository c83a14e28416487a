package schema

// CheckResult holds the results of a score gate over several analyzers.
type CheckResult struct {
	Passed     bool                 `json:"passed"`
	Target     string               `json:"target"`
	Thresholds map[AnalyzerName]int `json:"thresholds"`
	Scores     map[AnalyzerName]int `json:"scores"`
	Failures   []CheckFailure       `json:"failures"`
	Errors     []string             `json:"errors,omitempty"`
}

// CheckFailure represents an analyzer whose score fell below its threshold.
type CheckFailure struct {
	Analyzer  AnalyzerName `json:"analyzer"`
	Score     int          `json:"score"`
	Threshold int          `json:"threshold"`
}
