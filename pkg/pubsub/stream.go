package pubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ritzau/award-network/pkg/logging"
)

// KeepAliveInterval is how often an idle stream sends a comment line
var KeepAliveInterval = 25 * time.Second

// NewGraphPublisher returns a publisher with the graph topics configured.
// Late subscribers receive the latest status and the latest update.
func NewGraphPublisher() *SSEPublisher {
	p := NewSSEPublisher()

	// graph_status: buffer last 10 events, replay only last event to new subscribers
	p.ConfigureTopic(TopicGraphStatus, TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	// graph_update: buffer last 5 events, replay only last event
	p.ConfigureTopic(TopicGraphUpdate, TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})
	return p
}

// Stream serves one topic as a Server-Sent Events response until the
// client disconnects or the publisher closes
func Stream(w http.ResponseWriter, r *http.Request, p Publisher, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := p.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				return
			}
			if err := WriteSSE(w, event); err != nil {
				logging.WarnContext(ctx, "error writing SSE event", "topic", topic, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
