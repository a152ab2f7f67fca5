package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the analysis runner
const (
	TopicGraphStatus = "graph_status"
	TopicGraphUpdate = "graph_update"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "graph_status", "graph_update")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "diff")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// Graph build states reported on TopicGraphStatus
const (
	StateLoading  = "loading"
	StateBuilding = "building"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// GraphStatus represents the state of the current graph build
type GraphStatus struct {
	State   string `json:"state"`   // loading, building, ready, failed
	Message string `json:"message"` // Human-readable status message
	Reason  string `json:"reason"`  // What triggered the build (startup, events changed, ...)
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// GraphUpdate announces a new graph snapshot
type GraphUpdate struct {
	Hash          string `json:"hash"`
	Version       int    `json:"version"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	AddedNodes    int    `json:"added_nodes"`
	RemovedNodes  int    `json:"removed_nodes"`
	AddedEdges    int    `json:"added_edges"`
	RemovedEdges  int    `json:"removed_edges"`
	ModifiedEdges int    `json:"modified_edges"`
	FullGraph     bool   `json:"full_graph"` // True when clients should refetch everything
}
