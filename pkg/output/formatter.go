package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/award-network/pkg/analysis"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/network"
)

const barWidth = 20

// FormatMoney renders a dollar amount compactly ($1.25M, $300.0K, $950)
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.1fK", sign, v/1e3)
	}
	return fmt.Sprintf("%s$%.0f", sign, v)
}

// bar draws a weight in [0, 1] as a fixed-width bar
func bar(weight float64) string {
	filled := int(weight*barWidth + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled)
}

// strongest returns up to n edges ordered by strength, then ID
func strongest(edges []model.NetworkEdge, n int) []model.NetworkEdge {
	sorted := make([]model.NetworkEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Metrics.Strength != sorted[j].Metrics.Strength {
			return sorted[i].Metrics.Strength > sorted[j].Metrics.Strength
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func nodeLabel(g *model.NetworkGraph, id string) string {
	if node, ok := g.Node(id); ok && node.Name != "" {
		return node.Name
	}
	if id == "" {
		return "(unknown)"
	}
	return id
}

// PrintNetworkReport prints a nicely formatted network report with colors
func PrintNetworkReport(w io.Writer, g *model.NetworkGraph, report *analysis.Report, clusters []model.GeographicCluster, topN int) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Award Network Report")
	bold.Fprintln(w, "====================")
	focal := report.Focal
	if g.MainContractor != nil && g.MainContractor.Name != "" {
		focal = fmt.Sprintf("%s (%s)", g.MainContractor.Name, g.MainContractor.ID)
	}
	fmt.Fprintf(w, "Focal entity: %s\n", focal)
	fmt.Fprintf(w, "Active as of: %s\n", report.AsOf.Format("2006-01-02"))
	fmt.Fprintf(w, "Events: %d loaded, %d active, %d inactive, %d skipped\n",
		report.TotalEvents, report.ActiveEvents, report.Inactive, report.SkippedCount)
	fmt.Fprintln(w)

	// Summary
	s := g.Summary
	bold.Fprintln(w, "SUMMARY")
	fmt.Fprintf(w, "  Active value:        %s\n", FormatMoney(s.TotalActiveValue))
	fmt.Fprintf(w, "  Network-wide value:  %s\n", FormatMoney(s.NetworkWideValue))
	fmt.Fprintf(w, "  Relationships:       %d (%d inflow, %d outflow)\n",
		s.TotalRelationships, s.InflowRelationships, s.OutflowRelationships)
	fmt.Fprintf(w, "  Counterparties:      %d agencies, %d primes, %d subs, %d subsidiary obligations\n",
		s.RelationshipTypes.Agencies, s.RelationshipTypes.Primes, s.RelationshipTypes.Subs, s.RelationshipTypes.Subsidiaries)
	primary := s.GeographicReach.PrimaryState
	if primary == "" {
		primary = "-"
	}
	fmt.Fprintf(w, "  Geographic reach:    %d states, %d cities (primary: %s)\n",
		s.GeographicReach.States, s.GeographicReach.Cities, primary)
	fmt.Fprintf(w, "  Average strength:    %.1f\n", s.AverageStrength)
	fmt.Fprintln(w)

	// Top relationships
	if len(g.Edges) > 0 {
		top := strongest(g.Edges, topN)
		maxStrength := top[0].Metrics.Strength

		bold.Fprintf(w, "TOP RELATIONSHIPS (%d of %d)\n", len(top), len(g.Edges))
		for _, e := range top {
			arrow := "→"
			other := e.Target
			if e.Direction == model.DirectionInflow {
				arrow = "←"
				other = e.Source
			}
			cyan.Fprintf(w, "  %s %s", arrow, nodeLabel(g, other))
			fmt.Fprintf(w, "  [%s]\n", e.RelationshipType)
			fmt.Fprintf(w, "    %s %5.1f  %s over %d award(s)\n",
				bar(network.NormalizedWeight(e.Metrics.Strength, maxStrength)),
				e.Metrics.Strength, FormatMoney(e.Metrics.TotalValue), e.Metrics.ActiveAwards)
		}
		fmt.Fprintln(w)
	}

	// Top clusters
	if len(clusters) > 0 {
		shown := clusters
		if topN > 0 && len(shown) > topN {
			shown = shown[:topN]
		}
		maxValue := shown[0].TotalValue

		bold.Fprintf(w, "TOP LOCATIONS (%d of %d)\n", len(shown), len(clusters))
		for _, c := range shown {
			fmt.Fprintf(w, "  %-24s %s %10s  %d entities\n",
				fmt.Sprintf("%s, %s", c.City, c.State),
				bar(network.NormalizedWeight(c.TotalValue, maxValue)),
				FormatMoney(c.TotalValue), c.NodeCount)
		}
		fmt.Fprintln(w)
	}

	// Warnings
	if !report.HasWarnings() {
		green.Fprintln(w, "✓ No data quality warnings")
		return
	}

	red.Fprintln(w, "WARNINGS:")
	if report.SkippedCount > 0 {
		yellow.Fprintf(w, "  %d event(s) skipped with unreadable award dates\n", report.SkippedCount)
		for _, msg := range report.Skipped {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}
	for _, c := range report.TypeConflicts {
		yellow.Fprintf(w, "  %s mixes event types %v (shown as %s)\n", c.EdgeID, c.Types, c.Chosen)
	}
	for _, f := range report.CircularFlows {
		yellow.Fprintf(w, "  Circular flow between %s\n", strings.Join(f.Entities, ", "))
	}
}
