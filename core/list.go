package core

import (
	"context"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/qascope/qascope/internal/contract"
)

// ExecuteList prints every registered analyzer.
func ExecuteList(_ context.Context, _ *contract.Config, _ contract.HistoryManager) error {
	return WriteAnalyzerList(os.Stdout)
}

// WriteAnalyzerList writes a table of analyzer names, tool names and descriptions.
func WriteAnalyzerList(w io.Writer) error {
	analyzers := Analyzers()
	data := make([][]string, 0, len(analyzers))
	for _, a := range analyzers {
		data = append(data, []string{string(a.Name()), a.Tool(), a.Description()})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Analyzer", "Tool", "Description"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
