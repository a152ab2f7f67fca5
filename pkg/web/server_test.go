package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/award-network/pkg/analysis"
	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/geo"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/pubsub"
)

type staticEvents []model.ActivityEvent

func (s staticEvents) Name() string { return "Static" }

func (s staticEvents) Load(ctx context.Context, cfg *config.Config) ([]model.ActivityEvent, error) {
	return s, nil
}

type noSnapshot struct{}

func (noSnapshot) Current() *analysis.Snapshot { return nil }

func testEvent(id, related string, relType model.RelatedEntityType, typ model.EventType, total float64, state, city string) model.ActivityEvent {
	return model.ActivityEvent{
		EventID:           id,
		ContractorUEI:     "C1",
		ContractorName:    "Acme",
		RelatedEntityUEI:  related,
		RelatedEntityName: related,
		RelatedEntityType: relType,
		FlowDirection:     model.FlowOutflow,
		EventType:         typ,
		AwardKey:          "K-" + id,
		AwardTotalValue:   total,
		AwardStartDate:    "2024-01-01",
		AwardEndDate:      "2025-01-01",
		PopState:          state,
		PopCity:           city,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	events := staticEvents{
		testEvent("E1", "A1", model.RelatedGovernment, model.EventPrime, 2_000_000, "VA", "Arlington"),
		testEvent("E2", "P1", model.RelatedContractor, model.EventSubaward, 300_000, "MD", "Baltimore"),
	}
	cfg := &config.Config{Focal: "C1", AsOf: "2024-06-01"}
	cfg.Strength = config.StrengthConfig{
		ValueUnit: 1_000_000, ValueCap: 100, CountWeight: 10, CountCap: 50,
		SizeUnit: 100_000, SizeCap: 25, Max: 100,
	}

	runner, err := analysis.NewRunner(events, cfg, nil)
	require.NoError(t, err)
	_, err = runner.Refresh(context.Background(), "test")
	require.NoError(t, err)

	locator := geo.NewLocator(geo.LocationTable{
		Default: geo.Coordinates{Lat: 1, Lon: 1},
		Locations: []geo.Place{
			{State: "VA", City: "Arlington", Lat: 38.88, Lon: -77.1},
			{State: "MD", Lat: 39.0, Lon: -76.7},
		},
	})
	return NewServer(runner, pubsub.NewGraphPublisher(), locator, 16)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestGraphEndpoints(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/graph")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	var g model.NetworkGraph
	decode(t, rec, &g)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)

	rec = get(t, h, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary model.NetworkSummary
	decode(t, rec, &summary)
	assert.Equal(t, 2, summary.TotalRelationships)

	rec = get(t, h, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	var report analysis.Report
	decode(t, rec, &report)
	assert.Equal(t, "C1", report.Focal)
	assert.Equal(t, 2, report.ActiveEvents)
}

func TestNodeEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/nodes/P1")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail NodeDetail
	decode(t, rec, &detail)
	assert.Equal(t, model.RoleSub, detail.Node.Role)
	require.Len(t, detail.Edges, 1)
	assert.Equal(t, "C1->P1", detail.Edges[0].ID)
	assert.Empty(t, detail.CircularFlows)

	rec = get(t, h, "/api/nodes/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEdgesEndpointFilters(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"C1->A1", "C1->P1"}},
		{"types=PRIME", []string{"C1->A1"}},
		{"types=prime,subaward", []string{"C1->A1", "C1->P1"}},
		{"minValue=1000000", []string{"C1->A1"}},
		{"maxValue=500000", []string{"C1->P1"}},
		{"states=md", []string{"C1->P1"}},
		{"activeOnly=true", []string{"C1->A1", "C1->P1"}},
		{"start=2025-06-01", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, h, "/api/edges?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp EdgesResponse
			decode(t, rec, &resp)
			assert.Equal(t, 2, resp.Total)
			got := make([]string, 0, len(resp.Edges))
			for _, e := range resp.Edges {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	// repeated identical requests are served from the view cache
	get(t, h, "/api/edges?types=PRIME")
	rec := get(t, h, "/api/edges?types=PRIME")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEdgesEndpointBadFilters(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, q := range []string{"types=GRANT", "minValue=abc", "activeOnly=maybe", "start=someday", "minValue=10&maxValue=1"} {
		rec := get(t, h, "/api/edges?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), "error", q)
	}
}

func TestClustersEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := get(t, h, "/api/clusters")
	require.Equal(t, http.StatusOK, rec.Code)
	var clusters []LocatedCluster
	decode(t, rec, &clusters)
	require.Len(t, clusters, 2)

	// sorted by value, largest first
	assert.Equal(t, "VA", clusters[0].State)
	assert.Equal(t, geo.PrecisionCity, clusters[0].Precision)
	assert.Equal(t, "MD", clusters[1].State)
	assert.Equal(t, geo.PrecisionState, clusters[1].Precision)

	rec = get(t, h, "/api/clusters?states=VA")
	decode(t, rec, &clusters)
	require.Len(t, clusters, 1)

	// swapping the location table takes effect immediately
	s.SetLocator(nil)
	rec = get(t, h, "/api/clusters?states=VA")
	decode(t, rec, &clusters)
	require.Len(t, clusters, 1)
	assert.Equal(t, geo.PrecisionDefault, clusters[0].Precision)
	assert.Equal(t, geo.DefaultCenter, clusters[0].Coordinates)
}

func TestNotReady(t *testing.T) {
	h := NewServer(noSnapshot{}, pubsub.NewGraphPublisher(), nil, 4).Handler()

	for _, path := range []string{"/api/graph", "/api/summary", "/api/edges", "/api/clusters", "/healthz"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	get(t, h, "/api/graph")
	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "network_http_requests_total")
	assert.Contains(t, body, `route="/api/graph"`)
	assert.Contains(t, body, "network_graph_build_duration_seconds")
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := get(t, h, "/api/summary")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestParseFilters(t *testing.T) {
	q := url.Values{}
	q.Add("types", "prime")
	q.Add("types", "SUBSIDIARY_OBLIGATION")
	q.Set("states", "va, md ,")
	q.Set("minValue", "100")
	q.Set("activeOnly", "1")
	q.Set("start", "2024-01-01")
	q.Set("end", "2024-12-31")

	f, err := ParseFilters(q)
	require.NoError(t, err)
	assert.Equal(t, []model.EventType{model.EventPrime, model.EventSubsidiaryObligation}, f.RelationshipTypes)
	assert.Equal(t, []string{"VA", "MD"}, f.States)
	require.NotNil(t, f.MinValue)
	assert.Equal(t, 100.0, *f.MinValue)
	assert.Nil(t, f.MaxValue)
	assert.True(t, f.ActiveOnly)
	assert.Equal(t, 2024, f.DateRange.Start.Year())
	assert.Equal(t, 12, int(f.DateRange.End.Month()))

	_, err = ParseFilters(url.Values{"start": {"2024-02-01"}, "end": {"2024-01-01"}})
	assert.Error(t, err)

	empty, err := ParseFilters(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, empty.RelationshipTypes)
	assert.Empty(t, empty.States)
	assert.False(t, empty.ActiveOnly)
}
