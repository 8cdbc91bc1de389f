package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"nif-optimizer/internal/batch"
)

// printSummary prints the summed spell counters and the first failures.
func printSummary(w io.Writer, m *batch.Manifest) {
	names := make([]string, 0, len(m.Totals))
	for k := range m.Totals {
		names = append(names, k)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Counter", "Total"})
	for _, k := range names {
		table.Append([]string{k, fmt.Sprint(m.Totals[k])})
	}
	table.Render()

	if m.Failed == 0 {
		return
	}
	fmt.Fprintf(w, "\nFailed (%d):\n", m.Failed)
	shown := 0
	for _, r := range m.Files {
		if r.Success {
			continue
		}
		if shown == 20 {
			fmt.Fprintf(w, "  ... and %d more\n", m.Failed-shown)
			break
		}
		fmt.Fprintf(w, "  %s: %s\n", r.File, r.Error)
		shown++
	}
}
