// Package report turns analyzer results into ordered, sanitized reports and
// renders them as text, JSON or CSV.
package report

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// Titles holds the report title of every analyzer.
var Titles = map[schema.AnalyzerName]string{
	schema.StructureAnalyzer:  "CODE STRUCTURE ANALYSIS",
	schema.SyntaxAnalyzer:     "PYTHON SYNTAX CHECK",
	schema.ComplexityAnalyzer: "CODE COMPLEXITY ANALYSIS",
	schema.SecurityAnalyzer:   "SECURITY VULNERABILITY SCAN",
	schema.SQLAnalyzer:        "SQL QUERY VALIDATION",
	schema.DependencyAnalyzer: "DEPENDENCY ANALYSIS",
	schema.ProbeAnalyzer:      "LOCALHOST SITE CHECK",
	schema.ReactAnalyzer:      "REACT COMPONENTS ANALYSIS",
	schema.DocsAnalyzer:       "DOCUMENTATION QUALITY",
	schema.GeneralAnalyzer:    "GENERAL QA ASSESSMENT",
}

// titleEmojis prefix report titles when emojis are enabled.
var titleEmojis = map[schema.AnalyzerName]string{
	schema.StructureAnalyzer:  "🏗️",
	schema.SyntaxAnalyzer:     "🐍",
	schema.ComplexityAnalyzer: "🧮",
	schema.SecurityAnalyzer:   "🔒",
	schema.SQLAnalyzer:        "🗄️",
	schema.DependencyAnalyzer: "📦",
	schema.ProbeAnalyzer:      "🌐",
	schema.ReactAnalyzer:      "⚛️",
	schema.DocsAnalyzer:       "📚",
	schema.GeneralAnalyzer:    "🧪",
}

// tierHeadings are the section headings of the per-tier finding lists.
var tierHeadings = map[schema.RiskTier]string{
	schema.HighRisk:   "High Risk Issues",
	schema.MediumRisk: "Medium Risk Issues",
	schema.LowRisk:    "Low Risk Issues",
}

func newReport(name schema.AnalyzerName, target string) schema.Report {
	return schema.Report{
		Analyzer: name,
		Title:    Titles[name],
		Target:   contract.SanitizePath(target),
	}
}

// Failed builds the report of an analyzer call that could not complete.
func Failed(name schema.AnalyzerName, target string, err error) schema.Report {
	r := newReport(name, target)
	r.Failed = true
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if target != "" {
		msg = strings.ReplaceAll(msg, target, r.Target)
	}
	r.Error = msg
	r.AddSection("Error", msg)
	return r
}

// sanitizeFindings returns a copy of findings with every path sanitized.
func sanitizeFindings(findings []schema.Finding) []schema.Finding {
	if len(findings) == 0 {
		return nil
	}
	out := make([]schema.Finding, len(findings))
	for i, f := range findings {
		f.File = contract.SanitizePath(f.File)
		out[i] = f
	}
	return out
}

// location formats a file and optional line.
func location(file string, line int) string {
	file = contract.SanitizePath(file)
	if line <= 0 {
		return file
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func findingLine(f schema.Finding) string {
	return fmt.Sprintf("%s - %s", location(f.File, f.Line), f.Description)
}

// addFindingSections appends one section per non-empty risk tier, highest first.
func addFindingSections(r *schema.Report, findings []schema.Finding) {
	r.Findings = sanitizeFindings(findings)
	for _, tier := range schema.AllRiskTiers {
		var lines []string
		for _, f := range findings {
			if f.Tier == tier {
				lines = append(lines, findingLine(f))
			}
		}
		if len(lines) > 0 {
			r.AddSection(fmt.Sprintf("%s (%d)", tierHeadings[tier], len(lines)), lines...)
		}
	}
}

// countLines formats a name→count map, largest count first then by name.
func countLines(counts map[string]int) []string {
	keys := slices.Collect(maps.Keys(counts))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return lines
}

func sanitizeAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = contract.SanitizePath(p)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
