package cli

import (
	"departure-optimizer-service/internal/domain"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// connection rows shown before the list is elided
const maxConnectionRows = 10

func PrintSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
	fmt.Fprintln(w)
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// FormatError renders an error for display on stderr.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

func printField(w io.Writer, label string, value any) {
	_, _ = labelColor.Fprintf(w, "  %-22s", label+":")
	fmt.Fprintf(w, " %v\n", value)
}

func printReport(w io.Writer, r *domain.OptimizationReport) {
	PrintSection(w, fmt.Sprintf("Optimal departure %s → %s", r.Route.Origin, r.Route.Destination))

	printField(w, "Scheduled departure", r.Route.ScheduledDeparture)
	printField(w, "Optimal departure", r.Route.OptimalDeparture)
	printField(w, "Time offset", fmt.Sprintf("%+.0f min", r.Route.TimeOffsetMinutes))

	PrintSection(w, "Cost analysis")
	printField(w, "Solo cost", fmt.Sprintf("%.2f", r.CostAnalysis.SoloCost))
	printField(w, "Total cost", fmt.Sprintf("%.2f", r.CostAnalysis.TotalCost))
	printField(w, "Savings", fmt.Sprintf("%.2f (%.2f%%)", r.CostAnalysis.TotalSavings, r.CostAnalysis.SavingsPercent))
	printField(w, "Connected segments", fmt.Sprintf("%d of %d (%.1f%%)",
		r.Path.ConnectedSegments, r.Path.TotalSegments, r.Path.ConnectionRate))
	printField(w, "Formation partners", r.Connections.TotalPartners)

	if n := len(r.Connections.ConnectionDetails); n > 0 {
		PrintSection(w, "Connections")
		for i, c := range r.Connections.ConnectionDetails {
			if i == maxConnectionRows {
				_, _ = dimColor.Fprintf(w, "  ... %d more\n", n-maxConnectionRows)
				break
			}
			fmt.Fprintf(w, "  #%-4d %-10s %6.1f km  at %s\n",
				c.NodeIndex, c.Partner.FlightID, c.DistanceKm, c.Position.Timestamp)
		}
	}

	PrintSection(w, "Search")
	printField(w, "Method", r.AlgorithmInfo.Method)
	printField(w, "Candidates evaluated", r.AlgorithmInfo.EvaluatedCandidates)
	printField(w, "Average cost", fmt.Sprintf("%.2f", r.Statistics.AverageCostAllTimes))
	printField(w, "Reduction vs average", fmt.Sprintf("%.2f%%", r.Statistics.CostReductionVsAverage))

	if r.AlgorithmInfo.DeadlineExceeded {
		fmt.Fprintln(w)
		PrintWarning(w, "search deadline reached; showing the best departure found so far")
	}
	fmt.Fprintln(w)
}
