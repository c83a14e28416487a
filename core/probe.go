package core

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/qascope/qascope/core/probe"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// errPortRequired is returned when a probe target has no port.
var errPortRequired = errors.New("port is required")

// ProbeAnalysis checks that a local development server answers.
type ProbeAnalysis struct{}

// Name implements contract.Analyzer.
func (ProbeAnalysis) Name() schema.AnalyzerName { return schema.ProbeAnalyzer }

// Tool implements contract.Analyzer.
func (ProbeAnalysis) Tool() string { return "check_localhost_site" }

// Description implements contract.Analyzer.
func (ProbeAnalysis) Description() string {
	return "Send one GET to a local endpoint and report reachability, latency and detected frameworks"
}

// Run implements contract.Analyzer.
func (a ProbeAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), probeLabel(target), func(ctx context.Context) (schema.Report, error) {
		if target.Port <= 0 {
			return schema.Report{}, errPortRequired
		}
		rep := probe.Probe(ctx, target.Host, target.Port, target.URLPath, target.Timeout)
		return report.Probe(rep, ProbeScore(rep)), nil
	})
}

// ProbeScore rates an endpoint report. Only an accessible endpoint scores
// above zero; the latency band sets the base and error markers cost two points.
func ProbeScore(rep schema.EndpointReport) int {
	if rep.State != schema.Accessible {
		return 0
	}
	score := 4
	switch rep.Performance {
	case probe.PerfExcellent:
		score = 10
	case probe.PerfGood:
		score = 8
	case probe.PerfAcceptable:
		score = 6
	}
	if rep.ErrorMarker {
		score -= 2
	}
	return max(score, schema.FloorScore)
}

// probeLabel names a probe target for failed reports.
func probeLabel(target schema.AnalysisTarget) string {
	host := target.Host
	if host == "" {
		host = contract.DefaultHost
	}
	if target.Port <= 0 {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(target.Port))
}
