package events

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ritzau/award-network/pkg/model"
)

// fieldSetter assigns one raw column value to an event
type fieldSetter func(e *model.ActivityEvent, v string) error

func setString(dst func(*model.ActivityEvent) *string) fieldSetter {
	return func(e *model.ActivityEvent, v string) error {
		*dst(e) = strings.TrimSpace(v)
		return nil
	}
}

func setAmount(dst func(*model.ActivityEvent) *float64) fieldSetter {
	return func(e *model.ActivityEvent, v string) error {
		f, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*dst(e) = f
		return nil
	}
}

// fields maps upper-case column names to setters. JSON keys and CSV headers
// share the same names.
var fields = map[string]fieldSetter{
	"EVENT_ID":            setString(func(e *model.ActivityEvent) *string { return &e.EventID }),
	"CONTRACTOR_UEI":      setString(func(e *model.ActivityEvent) *string { return &e.ContractorUEI }),
	"CONTRACTOR_NAME":     setString(func(e *model.ActivityEvent) *string { return &e.ContractorName }),
	"CONTRACTOR_STATE":    setString(func(e *model.ActivityEvent) *string { return &e.ContractorState }),
	"CONTRACTOR_CITY":     setString(func(e *model.ActivityEvent) *string { return &e.ContractorCity }),
	"RELATED_ENTITY_UEI":  setString(func(e *model.ActivityEvent) *string { return &e.RelatedEntityUEI }),
	"RELATED_ENTITY_NAME": setString(func(e *model.ActivityEvent) *string { return &e.RelatedEntityName }),
	"RELATED_ENTITY_TYPE": func(e *model.ActivityEvent, v string) error {
		e.RelatedEntityType = model.RelatedEntityType(strings.ToUpper(strings.TrimSpace(v)))
		return nil
	},
	"FLOW_DIRECTION": func(e *model.ActivityEvent, v string) error {
		e.FlowDirection = model.FlowDirection(strings.ToUpper(strings.TrimSpace(v)))
		return nil
	},
	"EVENT_TYPE": func(e *model.ActivityEvent, v string) error {
		e.EventType = model.EventType(strings.ToUpper(strings.TrimSpace(v)))
		return nil
	},
	"EVENT_AMOUNT":             setAmount(func(e *model.ActivityEvent) *float64 { return &e.EventAmount }),
	"AWARD_KEY":                setString(func(e *model.ActivityEvent) *string { return &e.AwardKey }),
	"AWARD_TOTAL_VALUE":        setAmount(func(e *model.ActivityEvent) *float64 { return &e.AwardTotalValue }),
	"AWARD_START_DATE":         setString(func(e *model.ActivityEvent) *string { return &e.AwardStartDate }),
	"AWARD_END_DATE":           setString(func(e *model.ActivityEvent) *string { return &e.AwardEndDate }),
	"AWARD_POTENTIAL_END_DATE": setString(func(e *model.ActivityEvent) *string { return &e.AwardPotentialEndDate }),
	"EVENT_DATE":               setString(func(e *model.ActivityEvent) *string { return &e.EventDate }),
	"POP_STATE":                setString(func(e *model.ActivityEvent) *string { return &e.PopState }),
	"POP_CITY":                 setString(func(e *model.ActivityEvent) *string { return &e.PopCity }),
	"NAICS_CODE":               setString(func(e *model.ActivityEvent) *string { return &e.NAICSCode }),
	"NAICS_DESCRIPTION":        setString(func(e *model.ActivityEvent) *string { return &e.NAICSDescription }),
	"PSC_CODE":                 setString(func(e *model.ActivityEvent) *string { return &e.PSCCode }),
	"PSC_DESCRIPTION":          setString(func(e *model.ActivityEvent) *string { return &e.PSCDescription }),
}

// ParseAmount parses a monetary value. Empty means zero; currency
// symbols and thousands separators are ignored.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return f, nil
}

// FieldError reports a column that could not be decoded
type FieldError struct {
	Record int // 1-based record number within the file
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("record %d: field %s: %v", e.Record, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// assign applies named values to a fresh event; unknown names are ignored
func assign(record int, values map[string]string) (model.ActivityEvent, error) {
	var e model.ActivityEvent
	for name, v := range values {
		set, ok := fields[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if err := set(&e, v); err != nil {
			return model.ActivityEvent{}, &FieldError{Record: record, Field: name, Err: err}
		}
	}
	return e, nil
}
