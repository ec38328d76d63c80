package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"

	"sentinela-mg/core/analytics"
)

const barWidth = 40

func renderTable(out io.Writer, keyHeader string, buckets []analytics.Bucket) {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	// Don't uppercase the header values.
	t.Style().Format.Header = text.FormatDefault

	t.AppendHeader(table.Row{keyHeader, "Registros"})
	for _, b := range buckets {
		t.AppendRow(table.Row{b.Label, b.Total})
	}
	t.Render()
}

// renderBars prints one horizontal bar per bucket, scaled to the
// largest total.
func renderBars(out io.Writer, buckets []analytics.Bucket) {
	max, labelWidth := 0, 0
	for _, b := range buckets {
		if b.Total > max {
			max = b.Total
		}
		if w := utf8.RuneCountInString(b.Label); w > labelWidth {
			labelWidth = w
		}
	}
	if max == 0 {
		fmt.Fprintln(out, "(sem dados)")
		return
	}
	for _, b := range buckets {
		n := b.Total * barWidth / max
		if b.Total > 0 && n == 0 {
			n = 1
		}
		if n < 0 {
			n = 0
		}
		pad := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(b.Label))
		fmt.Fprintf(out, "%s%s  %s %d\n", b.Label, pad, strings.Repeat("█", n), b.Total)
	}
}

// renderLine plots bucket totals as a line chart.
func renderLine(out io.Writer, buckets []analytics.Bucket) {
	series := make([]float64, len(buckets))
	for i, b := range buckets {
		series[i] = float64(b.Total)
	}
	fmt.Fprintln(out, asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Width(48)))
}
