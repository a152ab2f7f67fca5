package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/award-network/pkg/analysis"
	"github.com/ritzau/award-network/pkg/cycles"
	"github.com/ritzau/award-network/pkg/geo"
	"github.com/ritzau/award-network/pkg/lens"
	"github.com/ritzau/award-network/pkg/logging"
	"github.com/ritzau/award-network/pkg/memo"
	"github.com/ritzau/award-network/pkg/metrics"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/pubsub"
)

// SnapshotSource provides the latest graph build
type SnapshotSource interface {
	Current() *analysis.Snapshot
}

// LocatedCluster is a geographic cluster with map coordinates
type LocatedCluster struct {
	model.GeographicCluster
	Coordinates geo.Coordinates `json:"coordinates"`
	Precision   geo.Precision   `json:"precision"`
}

// EdgesResponse is a filtered view of the current edges
type EdgesResponse struct {
	Hash    string               `json:"hash"`
	Filters model.NetworkFilters `json:"filters"`
	Total   int                  `json:"total"`
	Edges   []model.NetworkEdge  `json:"edges"`
}

// NodeDetail is one node with the relationships it takes part in
type NodeDetail struct {
	Node          model.NetworkNode     `json:"node"`
	Edges         []model.NetworkEdge   `json:"edges"`
	CircularFlows []cycles.CircularFlow `json:"circularFlows"`
}

// Server represents the web server
type Server struct {
	router     *mux.Router
	snapshots  SnapshotSource
	publisher  pubsub.Publisher
	locator    atomic.Pointer[geo.Locator]
	locatorGen atomic.Int64
	edges      *memo.Cache[[]model.NetworkEdge]
	clusters   *memo.Cache[[]LocatedCluster]
}

// NewServer creates a new web server
func NewServer(snapshots SnapshotSource, publisher pubsub.Publisher, locator *geo.Locator, cacheSize int) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		snapshots: snapshots,
		publisher: publisher,
		edges:     memo.New[[]model.NetworkEdge]("edges", cacheSize),
		clusters:  memo.New[[]LocatedCluster]("clusters", cacheSize),
	}
	s.locator.Store(locator)
	s.setupRoutes()
	return s
}

// SetLocator swaps the coordinates table used to decorate clusters
func (s *Server) SetLocator(l *geo.Locator) {
	s.locator.Store(l)
	s.locatorGen.Add(1)
	s.clusters.Purge()
	logging.Info("location table updated", "entries", l.Len())
}

func (s *Server) setupRoutes() {
	s.router.Use(s.metricsMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/graph_status", s.handleSubscribe(pubsub.TopicGraphStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/graph_update", s.handleSubscribe(pubsub.TopicGraphUpdate)).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/report", s.handleReport).Methods("GET")
	s.router.HandleFunc("/api/nodes/{id}", s.handleNode).Methods("GET")
	s.router.HandleFunc("/api/edges", s.handleEdges).Methods("GET")
	s.router.HandleFunc("/api/clusters", s.handleClusters).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Handler returns the root handler with request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// metricsMiddleware counts requests by route template and status code
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		wrapped := logging.WrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(wrapped.Status())).Inc()
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// snapshot returns the current build or answers 503
func (s *Server) snapshot(w http.ResponseWriter) *analysis.Snapshot {
	snap := s.snapshots.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "graph not built yet")
		return nil
	}
	w.Header().Set("ETag", strconv.Quote(snap.Hash))
	return snap
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pubsub.Stream(w, r, s.publisher, topic)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		writeJSON(w, http.StatusOK, snap.Graph)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		writeJSON(w, http.StatusOK, snap.Graph.Summary)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		writeJSON(w, http.StatusOK, snap.Report)
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	id := mux.Vars(r)["id"]
	node, ok := snap.Graph.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node not found: %s", id))
		return
	}

	detail := NodeDetail{
		Node:          *node,
		Edges:         snap.Graph.EdgesOf(id),
		CircularFlows: cycles.Involving(snap.Report.CircularFlows, id),
	}
	if detail.Edges == nil {
		detail.Edges = []model.NetworkEdge{}
	}
	if detail.CircularFlows == nil {
		detail.CircularFlows = []cycles.CircularFlow{}
	}
	writeJSON(w, http.StatusOK, detail)
}

// filtered parses the query and returns the matching edges of snap
func (s *Server) filtered(snap *analysis.Snapshot, r *http.Request) (model.NetworkFilters, []model.NetworkEdge, error) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		return filters, nil, err
	}
	if filters.ActiveOnly {
		filters.AsOf = snap.Report.AsOf
	}
	if lens.IsEmpty(filters) {
		return filters, snap.Graph.Edges, nil
	}

	key := lens.ComputeHash(snap.Hash, filters)
	edges, err := s.edges.Get(key, func() ([]model.NetworkEdge, error) {
		return lens.ApplyFilters(snap.Graph.Edges, filters), nil
	})
	return filters, edges, err
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	filters, edges, err := s.filtered(snap, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, EdgesResponse{
		Hash:    snap.Hash,
		Filters: filters,
		Total:   len(snap.Graph.Edges),
		Edges:   edges,
	})
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	filters, edges, err := s.filtered(snap, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := lens.ComputeHash(snap.Hash, filters, s.locatorGen.Load())
	clusters, err := s.clusters.Get(key, func() ([]LocatedCluster, error) {
		return s.locate(geo.BuildClusters(edges)), nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clusters)
}

func (s *Server) locate(clusters []model.GeographicCluster) []LocatedCluster {
	locator := s.locator.Load()
	out := make([]LocatedCluster, 0, len(clusters))
	for _, c := range clusters {
		coords, precision := locator.Lookup(c.State, c.City)
		out = append(out, LocatedCluster{
			GeographicCluster: c,
			Coordinates:       coords,
			Precision:         precision,
		})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Current()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "building"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": snap.Version,
		"hash":    snap.Hash,
		"builtAt": snap.BuiltAt,
	})
}

// Start serves on the given port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("web server shutdown", "error", err)
		}
	}()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
