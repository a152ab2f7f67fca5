package watcher

import (
	"context"
	"time"

	"github.com/ritzau/award-network/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive rebuilds.
// A batch is released after quietPeriod without new events, or after
// maxWait since its first event, whichever comes first.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// stopTimer stops t and drains its channel if it already fired
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// run processes events and applies debouncing logic
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	quiet := time.NewTimer(d.quietPeriod)
	stopTimer(quiet)
	deadline := time.NewTimer(d.maxWait)
	stopTimer(deadline)

	accumulated := make(map[ChangeType][]string)
	eventCount := 0

	flush := func() {
		stopTimer(quiet)
		stopTimer(deadline)
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated file events", "count", eventCount)

		// Locations first so a rebuild triggered by events sees fresh coordinates
		for _, typ := range []ChangeType{ChangeTypeLocations, ChangeTypeEvents} {
			if paths := accumulated[typ]; len(paths) > 0 {
				d.output <- ChangeEvent{
					Type:      typ,
					Paths:     paths,
					Timestamp: time.Now(),
				}
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			for _, p := range event.Paths {
				accumulated[event.Type] = appendUnique(accumulated[event.Type], p)
			}
			if eventCount == 0 {
				deadline.Reset(d.maxWait)
			}
			eventCount++

			stopTimer(quiet)
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
