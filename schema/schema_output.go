package schema

import "time"

// Section is one titled block of a rendered report.
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// Report is the ordered rendering of one analyzer call. Data carries the
// analyzer-specific result for structured output modes.
type Report struct {
	Analyzer AnalyzerName  `json:"analyzer"`
	Title    string        `json:"title"`
	Target   string        `json:"target"`
	Sections []Section     `json:"sections"`
	Score    *int          `json:"score,omitempty"`
	Findings []Finding     `json:"findings,omitempty"`
	Failed   bool          `json:"failed"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Data     any           `json:"data,omitempty"`
}

// AddSection appends a section when it has at least one line.
func (r *Report) AddSection(heading string, lines ...string) {
	if len(lines) == 0 {
		return
	}
	r.Sections = append(r.Sections, Section{Heading: heading, Lines: lines})
}

// SetScore records the quality score of the report.
func (r *Report) SetScore(score int) {
	r.Score = &score
}

// GetPlainLabel returns a plain text label for a quality score.
func GetPlainLabel(score int) string {
	switch {
	case score >= 9:
		return "Excellent"
	case score >= 7:
		return "Good"
	case score >= 5:
		return "Fair"
	default:
		return "Poor"
	}
}
