package runstore

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/qascope/qascope/schema"
)

const timeLayout = "2006-01-02 15:04:05"

// PrintHistoryStatus writes history status information to w.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) error {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Local().Format(timeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Local().Format(timeLayout))
	}
	_, _ = fmt.Fprintf(w, "Total Findings: %d\n\n", status.TotalFindings)

	tables := make([]string, 0, len(status.TableSizes))
	for name := range status.TableSizes {
		tables = append(tables, name)
	}
	slices.Sort(tables)

	data := make([][]string, 0, len(tables))
	for _, name := range tables {
		data = append(data, []string{name, strconv.FormatInt(status.TableSizes[name], 10)})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Table", "Rows"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
