package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"exusiai.dev/dashsync/internal/render"
)

const clearScreen = "\033[H\033[2J"

var metricLabels = []lo.Tuple2[string, string]{
	lo.T2(render.IDSystemStatus, "System"),
	lo.T2(render.IDAvgTemp, "Average temperature"),
	lo.T2(render.IDTotalContracts, "Contracts"),
	lo.T2(render.IDContractBreakdown, ""),
	lo.T2(render.IDSuccessRate, "Success rate"),
	lo.T2(render.IDActiveAlerts, "Active alerts"),
	lo.T2(render.IDLastUpdated, "Last updated"),
}

// Print writes a plain-text rendering of doc. Elements that were never rendered
// are left out.
func Print(w io.Writer, route string, doc *render.Document) {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "dashsync  %s\n\n", route)

	for _, l := range metricLabels {
		e, ok := doc.Element(l.A)
		if !ok || e.Text == "" {
			continue
		}
		if l.B == "" {
			fmt.Fprintf(&b, "  %-22s %s\n", "", e.Text)
			continue
		}
		fmt.Fprintf(&b, "  %-22s %s\n", l.B+":", e.Text)
	}

	if e, ok := doc.Element(render.IDOngoingTable); ok {
		b.WriteString("\nOngoing shipments\n")
		for _, row := range e.Rows {
			cells := lo.FilterMap(row.Cells, func(c render.Cell, _ int) (string, bool) {
				return c.Text, c.Text != ""
			})
			fmt.Fprintf(&b, "  %s\n", strings.Join(cells, " | "))
		}
	}

	if e, ok := doc.Element(render.IDAlertsContainer); ok {
		b.WriteString("\nAlerts\n")
		for _, item := range e.Items {
			level := strings.TrimPrefix(item.Class, "alert alert-")
			if level == item.Class {
				fmt.Fprintf(&b, "  %s\n", item.Text)
				continue
			}
			fmt.Fprintf(&b, "  [%s] %s\n", level, item.Text)
		}
	}

	if e, ok := doc.Element(render.IDTemperatureChart); ok {
		b.WriteString("\nChart\n")
		for _, s := range e.Chart {
			values := lo.Map(s.Values(), func(v float64, _ int) string { return render.FormatTemp(v, true) })
			fmt.Fprintf(&b, "  %s: %s\n", s.Name, strings.Join(values, " "))
		}
	}

	io.WriteString(w, b.String())
}
