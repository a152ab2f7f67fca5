package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveBuild(t *testing.T) {
	beforeActive := testutil.ToFloat64(EventsProcessed.WithLabelValues("active"))
	beforeSkipped := testutil.ToFloat64(EventsProcessed.WithLabelValues("skipped"))

	ObserveBuild(150*time.Millisecond, 4, 2, 1, 5, 3)

	assert.InDelta(t, beforeActive+4, testutil.ToFloat64(EventsProcessed.WithLabelValues("active")), 1e-9)
	assert.InDelta(t, beforeSkipped+1, testutil.ToFloat64(EventsProcessed.WithLabelValues("skipped")), 1e-9)
	assert.InDelta(t, 5, testutil.ToFloat64(GraphSize.WithLabelValues("nodes")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(GraphSize.WithLabelValues("edges")), 1e-9)
}

func TestViewCacheRequests(t *testing.T) {
	c := ViewCacheRequests.WithLabelValues("edges", "hit")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(c), 1e-9)
}
