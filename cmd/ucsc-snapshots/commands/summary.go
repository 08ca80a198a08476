package commands

import (
	"fmt"
	"io"
	"time"

	"ucsc-snapshots/internal/snapshot"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderSummary(w io.Writer, artifacts []snapshot.Artifact) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Line", "Position", "Name", "Strand", "Format", "Size", "Written", "Path"})
	total := 0
	for _, a := range artifacts {
		t.AppendRow(table.Row{
			a.Region.Line,
			a.Region.Position(),
			a.Region.Name,
			a.Region.Strand,
			a.Format,
			fmt.Sprintf("%d B", a.Bytes),
			a.Written.Format(time.TimeOnly),
			a.Path,
		})
		total += a.Bytes
	}
	t.AppendFooter(table.Row{"", "", "", "", len(artifacts), fmt.Sprintf("%d B", total), "", ""})
	t.Render()
}
