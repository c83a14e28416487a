// Package schema holds the plain data types shared by the analyzers, the report
// formatter and the history store.
package schema

import "time"

// AnalysisTarget is the read-only input of an analyzer call. Static analyzers use
// Path and Excludes; the live probe uses Host, Port, URLPath and Timeout.
type AnalysisTarget struct {
	Path     string        `json:"path,omitempty"`
	Excludes []string      `json:"excludes,omitempty"`
	Host     string        `json:"host,omitempty"`
	Port     int           `json:"port,omitempty"`
	URLPath  string        `json:"url_path,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// FileRecord describes a single regular file produced by the walker.
type FileRecord struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
}

// FunctionRecord describes one parsed function definition.
type FunctionRecord struct {
	Name           string `json:"name"`
	File           string `json:"file"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	Complexity     int    `json:"cyclomatic_complexity"`
	HasDocstring   bool   `json:"has_docstring"`
	ParameterCount int    `json:"parameter_count"`
	IsMethod       bool   `json:"is_method"`
}

// Lines returns the number of source lines spanned by the function.
func (f FunctionRecord) Lines() int {
	if f.EndLine < f.StartLine {
		return 0
	}
	return f.EndLine - f.StartLine + 1
}

// ClassRecord describes one parsed class definition.
type ClassRecord struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	StartLine    int    `json:"start_line"`
	MethodCount  int    `json:"method_count"`
	HasDocstring bool   `json:"has_docstring"`
}

// ImportRecord describes one import statement.
type ImportRecord struct {
	Module string   `json:"module"`
	Names  []string `json:"names,omitempty"`
	File   string   `json:"file"`
	Line   int      `json:"line"`
	From   bool     `json:"from"`
}

// Finding is a single flagged issue. Line is 0 when the issue has no line.
type Finding struct {
	File        string   `json:"file"`
	Line        int      `json:"line,omitempty"`
	Description string   `json:"description"`
	Tier        RiskTier `json:"risk_tier"`
	Category    string   `json:"category"`
}

// DependencyRecord describes one declared dependency.
type DependencyRecord struct {
	Name            string `json:"name"`
	DeclaredVersion string `json:"declared_version,omitempty"`
	Constraint      string `json:"constraint,omitempty"`
	Manifest        string `json:"source_manifest"`
	Ecosystem       string `json:"ecosystem"`
	Dev             bool   `json:"dev"`
	Unpinned        bool   `json:"unpinned"`
}

// EndpointReport is the outcome of a single live endpoint probe.
type EndpointReport struct {
	URL           string        `json:"url"`
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	Path          string        `json:"path"`
	State         ProbeState    `json:"state"`
	StatusCode    int           `json:"status_code,omitempty"`
	Latency       time.Duration `json:"latency"`
	ContentType   string        `json:"content_type,omitempty"`
	ContentLength int           `json:"content_length"`
	Title         string        `json:"title,omitempty"`
	Frameworks    []string      `json:"frameworks,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	ErrorMarker   bool          `json:"error_marker"`
	Performance   string        `json:"performance,omitempty"`
	Error         string        `json:"error,omitempty"`
	Hints         []string      `json:"hints,omitempty"`
}

// TierCounts tallies findings per risk tier.
type TierCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the number of findings across all tiers.
func (c TierCounts) Total() int {
	return c.High + c.Medium + c.Low
}

// CountTiers tallies the given findings per tier.
func CountTiers(findings []Finding) TierCounts {
	var c TierCounts
	for _, f := range findings {
		switch f.Tier {
		case HighRisk:
			c.High++
		case MediumRisk:
			c.Medium++
		case LowRisk:
			c.Low++
		}
	}
	return c
}
