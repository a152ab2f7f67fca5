package network

import (
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/award-network/pkg/model"
)

// ErrNoFocalEntity is returned when a graph is requested without a focal entity
var ErrNoFocalEntity = errors.New("no focal entity configured")

// MalformedEventError describes an event dropped from the active set
// because one of its award dates could not be parsed
type MalformedEventError struct {
	EventID string
	Field   string
	Value   string
	Err     error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event %s: malformed %s %q: %v", e.EventID, e.Field, e.Value, e.Err)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// ActiveEvent is an event that passed the active-window test, with its
// parsed award window
type ActiveEvent struct {
	model.ActivityEvent
	Start time.Time
	End   time.Time
}

// ActiveSet is the outcome of the active-window filter
type ActiveSet struct {
	Events   []ActiveEvent
	Inactive int
	Skipped  []*MalformedEventError
}

// FilterActive selects events whose award window contains now.
// The end of the window is AWARD_END_DATE, falling back to
// AWARD_POTENTIAL_END_DATE. Events whose start or end cannot be parsed are
// not verifiably active: they are excluded and reported in Skipped.
func FilterActive(events []model.ActivityEvent, now time.Time) ActiveSet {
	var set ActiveSet

	for i := range events {
		ev := events[i]

		start, err := model.ParseEventDate(ev.AwardStartDate)
		if err != nil {
			set.Skipped = append(set.Skipped, &MalformedEventError{
				EventID: ev.EventID, Field: "AWARD_START_DATE", Value: ev.AwardStartDate, Err: err,
			})
			continue
		}

		endField := "AWARD_END_DATE"
		if ev.EffectiveEndDate() != ev.AwardEndDate {
			endField = "AWARD_POTENTIAL_END_DATE"
		}
		end, err := model.ParseEventDate(ev.EffectiveEndDate())
		if err != nil {
			set.Skipped = append(set.Skipped, &MalformedEventError{
				EventID: ev.EventID, Field: endField, Value: ev.EffectiveEndDate(), Err: err,
			})
			continue
		}

		if now.Before(start) || now.After(end) {
			set.Inactive++
			continue
		}

		set.Events = append(set.Events, ActiveEvent{ActivityEvent: ev, Start: start, End: end})
	}

	return set
}

// Raw returns the underlying activity events of the set
func (s ActiveSet) Raw() []model.ActivityEvent {
	out := make([]model.ActivityEvent, len(s.Events))
	for i := range s.Events {
		out[i] = s.Events[i].ActivityEvent
	}
	return out
}
