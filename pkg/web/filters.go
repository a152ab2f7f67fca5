package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ritzau/award-network/pkg/model"
)

// listParam collects a comma-separated or repeated query parameter
func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &f, nil
}

// ParseFilters reads edge filter criteria from query parameters:
// types, minValue, maxValue, states, activeOnly, start and end.
func ParseFilters(q url.Values) (model.NetworkFilters, error) {
	var f model.NetworkFilters

	for _, raw := range listParam(q, "types") {
		t, err := model.ParseEventType(raw)
		if err != nil {
			return f, err
		}
		f.RelationshipTypes = append(f.RelationshipTypes, t)
	}

	var err error
	if f.MinValue, err = floatParam(q, "minValue"); err != nil {
		return f, err
	}
	if f.MaxValue, err = floatParam(q, "maxValue"); err != nil {
		return f, err
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return f, fmt.Errorf("minValue %v exceeds maxValue %v", *f.MinValue, *f.MaxValue)
	}

	for _, s := range listParam(q, "states") {
		f.States = append(f.States, strings.ToUpper(s))
	}

	if raw := strings.TrimSpace(q.Get("activeOnly")); raw != "" {
		if f.ActiveOnly, err = strconv.ParseBool(raw); err != nil {
			return f, fmt.Errorf("invalid activeOnly %q", raw)
		}
	}

	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		if f.DateRange.Start, err = model.ParseEventDate(raw); err != nil {
			return f, fmt.Errorf("invalid start: %w", err)
		}
	}
	if raw := strings.TrimSpace(q.Get("end")); raw != "" {
		if f.DateRange.End, err = model.ParseEventDate(raw); err != nil {
			return f, fmt.Errorf("invalid end: %w", err)
		}
	}
	if !f.DateRange.Start.IsZero() && !f.DateRange.End.IsZero() && f.DateRange.End.Before(f.DateRange.Start) {
		return f, fmt.Errorf("end is before start")
	}

	return f, nil
}
