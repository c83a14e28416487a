package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// WriteReports outputs the reports, dispatching based on the output format configured.
func WriteReports(reports []schema.Report, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteJSON(w, reports)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteFindingsCSV(w, reports)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeText(w, reports, cfg, duration)
		}, "Wrote report")
	}
	return nil
}

// writeText renders every report and, for multi-analyzer runs, a summary table.
func writeText(w io.Writer, reports []schema.Report, cfg *contract.Config, duration time.Duration) error {
	opts := OptionsFromConfig(cfg)
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := RenderText(w, r, opts); err != nil {
			return err
		}
	}
	if len(reports) > 1 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := WriteSummaryTable(w, reports, cfg); err != nil {
			return err
		}
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Analysis completed in %v. History backend: %s\n", duration.Round(time.Millisecond), cfg.HistoryBackend); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes a single report as an object and several as an array.
func WriteJSON(w io.Writer, reports []schema.Report) error {
	if len(reports) == 1 {
		return writeJSON(w, reports[0])
	}
	return writeJSON(w, reports)
}

// WriteFindingsCSV writes one row per finding across all reports.
func WriteFindingsCSV(w io.Writer, reports []schema.Report) error {
	header := []string{"analyzer", "file", "line", "tier", "category", "description", "score"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			score := ""
			if r.Score != nil {
				score = strconv.Itoa(*r.Score)
			}
			for _, f := range r.Findings {
				row := []string{
					string(r.Analyzer),
					f.File,
					strconv.Itoa(f.Line),
					string(f.Tier),
					f.Category,
					f.Description,
					score,
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
		return nil
	})
}

// WriteSummaryTable writes one row per report with its score and tier counts.
func WriteSummaryTable(w io.Writer, reports []schema.Report, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Analyzer", "Target", "Score", "Label", "High", "Medium", "Low"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	width := GetMaxTablePathWidth(cfg)
	var data [][]string
	passed := 0
	for _, r := range reports {
		score, label := "-", "FAILED"
		if r.Score != nil {
			score = strconv.Itoa(*r.Score)
			label = schema.GetPlainLabel(*r.Score)
			if cfg.UseColors {
				label = contract.GetColorLabel(*r.Score)
			}
			if *r.Score >= cfg.ThresholdFor(r.Analyzer) {
				passed++
			}
		}
		counts := schema.CountTiers(r.Findings)
		data = append(data, []string{
			string(r.Analyzer),
			contract.TruncatePath(r.Target, width),
			score,
			label,
			strconv.Itoa(counts.High),
			strconv.Itoa(counts.Medium),
			strconv.Itoa(counts.Low),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d analyzers at or above their minimum score\n", passed, len(reports))
	return err
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}
