package core

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ExecuteAnalyze runs every selected path analyzer against the target, then
// probes the configured ports, and writes all reports.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	reports := RunAnalyzers(ctx, cfg, mgr, selectedAnalyzers(cfg))
	if len(cfg.Ports) > 0 && (len(cfg.Only) == 0 || slices.Contains(cfg.Only, schema.ProbeAnalyzer)) {
		reports = append(reports, runProbes(ctx, cfg, mgr)...)
	}
	return report.WriteReports(reports, cfg, time.Since(start))
}

// ExecuteRun returns an executor that runs the single named analyzer.
func ExecuteRun(name schema.AnalyzerName) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
		analyzer, ok := Lookup(name)
		if !ok {
			return fmt.Errorf("unknown analyzer: %s", name)
		}
		start := time.Now()
		var reports []schema.Report
		if analyzer.Name() == schema.ProbeAnalyzer {
			reports = runProbes(ctx, cfg, mgr)
		} else {
			reports = RunAnalyzers(ctx, cfg, mgr, []contract.Analyzer{analyzer})
		}
		return report.WriteReports(reports, cfg, time.Since(start))
	}
}

// ExecuteProbe probes every configured port.
func ExecuteProbe(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return ExecuteRun(schema.ProbeAnalyzer)(ctx, cfg, mgr)
}

// RunAnalyzers runs the analyzers sequentially against the configured path.
func RunAnalyzers(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, analyzers []contract.Analyzer) []schema.Report {
	target := PathTarget(cfg)
	reports := make([]schema.Report, 0, len(analyzers))
	for _, a := range analyzers {
		started := time.Now()
		rep := a.Run(ctx, target)
		recordRun(mgr, cfg, rep, target.Path, started)
		reports = append(reports, rep)
	}
	return reports
}

// PathTarget builds the static analysis target from the config.
func PathTarget(cfg *contract.Config) schema.AnalysisTarget {
	return schema.AnalysisTarget{Path: cfg.TargetPath, Excludes: cfg.Excludes}
}

// ProbeTargets builds one probe target per configured port.
func ProbeTargets(cfg *contract.Config) []schema.AnalysisTarget {
	targets := make([]schema.AnalysisTarget, 0, len(cfg.Ports))
	for _, port := range cfg.Ports {
		targets = append(targets, schema.AnalysisTarget{
			Host:    cfg.Host,
			Port:    port,
			URLPath: cfg.URLPath,
			Timeout: cfg.Timeout,
		})
	}
	return targets
}

func runProbes(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) []schema.Report {
	analyzer := Registry[schema.ProbeAnalyzer]
	targets := ProbeTargets(cfg)
	if len(targets) == 0 {
		targets = []schema.AnalysisTarget{{Host: cfg.Host, URLPath: cfg.URLPath, Timeout: cfg.Timeout}}
	}
	reports := make([]schema.Report, 0, len(targets))
	for _, target := range targets {
		started := time.Now()
		rep := analyzer.Run(ctx, target)
		recordRun(mgr, cfg, rep, probeLabel(target), started)
		reports = append(reports, rep)
	}
	return reports
}

// selectedAnalyzers resolves --only into path analyzers, keeping report order.
func selectedAnalyzers(cfg *contract.Config) []contract.Analyzer {
	all := PathAnalyzers()
	if len(cfg.Only) == 0 {
		return all
	}
	var out []contract.Analyzer
	for _, a := range all {
		if slices.Contains(cfg.Only, a.Name()) {
			out = append(out, a)
		}
	}
	return out
}

// recordRun stores a finished run in the history store when one is configured.
func recordRun(mgr contract.HistoryManager, cfg *contract.Config, rep schema.Report, target string, start time.Time) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	params := map[string]any{
		"excludes": cfg.Excludes,
		"output":   cfg.Output,
	}
	if rep.Analyzer == schema.ProbeAnalyzer {
		params["url_path"] = cfg.URLPath
		params["timeout"] = cfg.Timeout.String()
	}

	runID, err := store.BeginRun(rep.Analyzer, contract.SanitizePath(target), start, params)
	if err != nil {
		contract.LogWarn("Failed to record run start", err)
		return
	}
	summary := schema.RunSummary{
		Analyzer:     rep.Analyzer,
		Target:       rep.Target,
		Score:        rep.Score,
		Failed:       rep.Failed,
		FilesScanned: filesScanned(rep),
		Counts:       schema.CountTiers(rep.Findings),
	}
	if err := store.EndRun(runID, start.Add(rep.Duration), summary); err != nil {
		contract.LogWarn("Failed to record run end", err)
		return
	}
	if err := store.RecordFindings(runID, rep.Findings); err != nil {
		contract.LogWarn("Failed to record findings", err)
	}
}

// filesScanned extracts the number of files an analyzer looked at.
func filesScanned(rep schema.Report) int {
	switch data := rep.Data.(type) {
	case schema.StructureResult:
		return data.TotalFiles
	case schema.SyntaxResult:
		return data.FilesChecked
	case schema.ComplexityResult:
		return data.FilesAnalyzed
	case schema.SecurityResult:
		return data.FilesScanned
	case schema.SQLResult:
		return data.FilesScanned
	case schema.DependencyResult:
		return len(data.Manifests) + len(data.Unparsed)
	case schema.ReactResult:
		return data.FilesScanned
	case schema.GeneralResult:
		return data.CodeFiles + len(data.TestFiles)
	default:
		return 0
	}
}
