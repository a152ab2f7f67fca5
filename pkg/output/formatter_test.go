package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/ritzau/award-network/pkg/analysis"
	"github.com/ritzau/award-network/pkg/cycles"
	"github.com/ritzau/award-network/pkg/geo"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/network"
)

func init() {
	color.NoColor = true
}

func sampleGraph() (*model.NetworkGraph, *analysis.Report) {
	events := []model.ActivityEvent{
		{
			EventID: "E1", ContractorUEI: "C1", ContractorName: "Acme",
			RelatedEntityUEI: "A1", RelatedEntityName: "Dept of Things", RelatedEntityType: model.RelatedGovernment,
			FlowDirection: model.FlowInflow, EventType: model.EventPrime,
			AwardKey: "K1", AwardTotalValue: 2_000_000,
			AwardStartDate: "2024-01-01", AwardEndDate: "2025-01-01",
			PopState: "VA", PopCity: "Arlington",
		},
		{
			EventID: "E2", ContractorUEI: "C1", ContractorName: "Acme",
			RelatedEntityUEI: "P1", RelatedEntityName: "Widgets LLC", RelatedEntityType: model.RelatedContractor,
			FlowDirection: model.FlowOutflow, EventType: model.EventSubaward,
			AwardKey: "K2", AwardTotalValue: 300_000,
			AwardStartDate: "2024-01-01", AwardEndDate: "2025-01-01",
			PopState: "MD", PopCity: "Baltimore",
		},
	}
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	g, build := network.BuildGraph(events, "C1", network.WithAsOf(asOf))
	return g, analysis.NewReport(g, build, "C1", "test", asOf)
}

func TestPrintNetworkReport(t *testing.T) {
	g, report := sampleGraph()
	var buf bytes.Buffer

	PrintNetworkReport(&buf, g, report, geo.BuildClusters(g.Edges), 10)

	out := buf.String()
	for _, want := range []string{
		"Award Network Report",
		"Focal entity: Acme (C1)",
		"Active as of: 2024-06-01",
		"Relationships:       2 (0 inflow, 2 outflow)",
		"TOP RELATIONSHIPS (2 of 2)",
		"Dept of Things",
		"Widgets LLC",
		"Arlington, VA",
		"✓ No data quality warnings",
	} {
		assert.Contains(t, out, want)
	}

	// strongest relationship is listed first
	assert.Less(t, strings.Index(out, "Dept of Things"), strings.Index(out, "Widgets LLC"))
}

func TestPrintNetworkReportTopN(t *testing.T) {
	g, report := sampleGraph()
	var buf bytes.Buffer

	PrintNetworkReport(&buf, g, report, geo.BuildClusters(g.Edges), 1)

	out := buf.String()
	assert.Contains(t, out, "TOP RELATIONSHIPS (1 of 2)")
	assert.Contains(t, out, "TOP LOCATIONS (1 of 2)")
	assert.NotContains(t, out, "Widgets LLC")
}

func TestPrintNetworkReportWarnings(t *testing.T) {
	g, report := sampleGraph()
	report.SkippedCount = 1
	report.Skipped = []string{"event E9: malformed AWARD_START_DATE"}
	report.TypeConflicts = []network.TypeConflict{{EdgeID: "C1->P1", Chosen: model.EventSubaward, Types: []model.EventType{model.EventSubaward, model.EventPrime}}}
	report.CircularFlows = []cycles.CircularFlow{{Entities: []string{"C1", "P1"}}}
	var buf bytes.Buffer

	PrintNetworkReport(&buf, g, report, nil, 10)

	out := buf.String()
	assert.Contains(t, out, "WARNINGS:")
	assert.Contains(t, out, "1 event(s) skipped")
	assert.Contains(t, out, "C1->P1 mixes event types")
	assert.Contains(t, out, "Circular flow between C1, P1")
	assert.NotContains(t, out, "TOP LOCATIONS")
}

func TestPrintNetworkReportEmptyGraph(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	g, build := network.BuildGraph(nil, "C1", network.WithAsOf(asOf))
	report := analysis.NewReport(g, build, "C1", "test", asOf)
	var buf bytes.Buffer

	PrintNetworkReport(&buf, g, report, nil, 10)

	out := buf.String()
	assert.Contains(t, out, "Focal entity: C1")
	assert.Contains(t, out, "primary: -")
	assert.NotContains(t, out, "TOP RELATIONSHIPS")
}

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:             "$0",
		950:           "$950",
		300_000:       "$300.0K",
		1_250_000:     "$1.25M",
		3_000_000_000: "$3.00B",
		-2_000_000:    "-$2.00M",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(in), in)
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", barWidth), bar(1))
	assert.Equal(t, strings.Repeat("·", barWidth), bar(0))
	assert.Equal(t, barWidth, len([]rune(bar(0.5))))
}
