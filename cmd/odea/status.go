package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/mcdrc/odea/internal/workflow"
)

// renderSummary lays out the collection census as a two-column table.
// Styling is dropped when the output is not a terminal so the result
// stays grep-friendly in pipelines.
func renderSummary(s *workflow.Summary, out io.Writer) string {
	tw := table.NewWriter()
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"collection", s.Title})
	rows := []table.Row{
		{"root", s.Root},
		{"identifier", s.Identifier},
		{"archive", s.Archive},
		{"items", strconv.Itoa(s.Items)},
		{"source files", strconv.Itoa(s.SourceFiles)},
		{"derivatives", strconv.Itoa(s.Derivatives)},
		{"published pages", strconv.Itoa(s.Published)},
		{"manifest entries", strconv.Itoa(s.Manifest)},
	}
	tw.AppendRows(rows)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
