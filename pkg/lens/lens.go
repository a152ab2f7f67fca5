package lens

import (
	"strings"

	"github.com/ritzau/award-network/pkg/model"
)

// Predicate decides whether an edge passes one filter criterion
type Predicate func(e *model.NetworkEdge) bool

// Compile turns filter criteria into the list of predicates that are
// actually constrained. Unconstrained criteria produce no predicate.
func Compile(f model.NetworkFilters) []Predicate {
	var preds []Predicate

	if len(f.RelationshipTypes) > 0 {
		allowed := make(map[model.EventType]bool, len(f.RelationshipTypes))
		for _, t := range f.RelationshipTypes {
			allowed[t] = true
		}
		preds = append(preds, func(e *model.NetworkEdge) bool {
			return allowed[e.RelationshipType]
		})
	}

	if f.MinValue != nil {
		min := *f.MinValue
		preds = append(preds, func(e *model.NetworkEdge) bool {
			return e.Metrics.TotalValue >= min
		})
	}
	if f.MaxValue != nil {
		max := *f.MaxValue
		preds = append(preds, func(e *model.NetworkEdge) bool {
			return e.Metrics.TotalValue <= max
		})
	}

	if len(f.States) > 0 {
		allowed := make(map[string]bool, len(f.States))
		for _, s := range f.States {
			allowed[strings.ToUpper(strings.TrimSpace(s))] = true
		}
		preds = append(preds, func(e *model.NetworkEdge) bool {
			for _, s := range e.Geography.States {
				if allowed[strings.ToUpper(s)] {
					return true
				}
			}
			return false
		})
	}

	if !f.DateRange.Start.IsZero() {
		start := f.DateRange.Start
		preds = append(preds, func(e *model.NetworkEdge) bool {
			return !e.Temporal.LatestEnd.Before(start)
		})
	}
	if !f.DateRange.End.IsZero() {
		end := f.DateRange.End
		preds = append(preds, func(e *model.NetworkEdge) bool {
			return !e.Temporal.EarliestStart.After(end)
		})
	}

	if f.ActiveOnly {
		asOf := f.AsOf
		preds = append(preds, func(e *model.NetworkEdge) bool {
			if !e.Temporal.IsCurrentlyActive {
				return false
			}
			if asOf.IsZero() {
				return true
			}
			return !asOf.Before(e.Temporal.EarliestStart) && !asOf.After(e.Temporal.LatestEnd)
		})
	}

	return preds
}

// Matches reports whether an edge passes every predicate
func Matches(e *model.NetworkEdge, preds []Predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

// ApplyFilters returns the edges passing all criteria, in input order.
// The input slice is never modified.
//
// ActiveOnly re-applies the active-window test: an edge must be flagged
// currently active and, when AsOf is set, its span must contain AsOf.
func ApplyFilters(edges []model.NetworkEdge, f model.NetworkFilters) []model.NetworkEdge {
	preds := Compile(f)

	out := make([]model.NetworkEdge, 0, len(edges))
	for i := range edges {
		if Matches(&edges[i], preds) {
			out = append(out, edges[i])
		}
	}
	return out
}

// IsEmpty reports whether the criteria constrain nothing
func IsEmpty(f model.NetworkFilters) bool {
	return len(Compile(f)) == 0
}
