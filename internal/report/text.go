package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fridayops/crossing/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
)

func riskColor(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return colorRed
	case model.RiskElevated, model.RiskMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

// WriteSummary prints the scan summary section.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "%s%s=== Scan Summary ===%s\n\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "Root:                  %s\n", s.Root)
	fmt.Fprintf(w, "Files scanned:         %d\n", s.FilesScanned)
	if s.ParseErrors > 0 {
		fmt.Fprintf(w, "%sParse errors:          %d%s\n", colorYellow, s.ParseErrors, colorReset)
	}
	fmt.Fprintf(w, "Raise sites:           %d (%d explicit, %d implicit)\n", s.TotalRaises, s.ExplicitRaises, s.ImplicitRaises)
	fmt.Fprintf(w, "Handler sites:         %d\n", s.TotalHandlers)
	fmt.Fprintf(w, "Crossings:             %d (%d polymorphic, %d risky)\n", s.TotalCrossings, s.PolymorphicCrossings, s.RiskyCrossings)
	fmt.Fprintf(w, "Total information loss: %.2f bits\n", s.TotalInformationLossBits)
	fmt.Fprintf(w, "Mean collapse ratio:    %.2f\n", s.MeanCollapseRatio)
}

// WriteCrossings prints the per-crossing table, one row per crossing with
// risk-colored level, followed by the description and associated sites.
func WriteCrossings(w io.Writer, crossings []model.SemanticCrossing) {
	fmt.Fprintf(w, "\n%s%s=== Semantic Crossings ===%s\n\n", colorBold, colorCyan, colorReset)

	if len(crossings) == 0 {
		fmt.Fprintln(w, "no crossings found")
		return
	}

	typeW := len("EXCEPTION TYPE")
	for _, c := range crossings {
		if l := len(c.ExceptionType); l > typeW {
			typeW = l
		}
	}
	const maxType = 40
	if typeW > maxType {
		typeW = maxType
	}

	sep := strings.Repeat("─", typeW+46)
	fmt.Fprintf(w, "%s%-*s  %-8s  %6s  %6s  %-8s%s\n",
		colorBold, typeW, "EXCEPTION TYPE", "RISK", "RAISES", "HNDLRS", "POLY", colorReset)
	fmt.Fprintln(w, sep)

	for _, c := range crossings {
		color := riskColor(c.RiskLevel)
		typ := c.ExceptionType
		if len(typ) > typeW {
			typ = typ[:typeW-3] + "..."
		}
		poly := ""
		if c.IsPolymorphic {
			poly = "yes"
		}
		fmt.Fprintf(w, "%-*s  %s%-8s%s  %6d  %6d  %-8s\n",
			typeW, typ,
			color, strings.ToUpper(string(c.RiskLevel)), colorReset,
			len(c.RaiseSites), len(c.HandlerSites), poly)
		fmt.Fprintf(w, "  %s\n", c.Description)
		for _, r := range c.RaiseSites {
			fmt.Fprintf(w, "    raise  %s:%d  %s.%s\n", r.File, r.Line, r.Class, r.Function)
		}
		for _, h := range c.HandlerSites {
			fmt.Fprintf(w, "    handle %s:%d  %s.%s (%s)\n", h.File, h.Line, h.Class, h.Function, h.Body)
		}
	}
}

// WriteScan prints the full text report: summary, then crossings table.
func WriteScan(w io.Writer, r ScanReport) {
	WriteSummary(w, r.Summary)
	WriteCrossings(w, r.Crossings)
}
