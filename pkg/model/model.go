package model

import (
	"fmt"
	"strings"
	"time"
)

// RelatedEntityType classifies the counterparty of an activity event
type RelatedEntityType string

const (
	RelatedGovernment  RelatedEntityType = "GOVERNMENT"
	RelatedContractor  RelatedEntityType = "CONTRACTOR"
	RelatedUnspecified RelatedEntityType = ""
)

// IsGovernment reports whether the counterparty is a government agency
func (t RelatedEntityType) IsGovernment() bool {
	return strings.EqualFold(string(t), string(RelatedGovernment))
}

// FlowDirection is the money/work direction relative to the focal entity
type FlowDirection string

const (
	FlowInflow  FlowDirection = "INFLOW"
	FlowOutflow FlowDirection = "OUTFLOW"
)

// EventType is the kind of contractual transaction
type EventType string

const (
	EventPrime                EventType = "PRIME"
	EventSubaward             EventType = "SUBAWARD"
	EventSubsidiaryObligation EventType = "SUBSIDIARY_OBLIGATION"
)

// Valid returns true for the three known event types
func (t EventType) Valid() bool {
	switch t {
	case EventPrime, EventSubaward, EventSubsidiaryObligation:
		return true
	}
	return false
}

// ParseEventType normalizes a raw event type string (case-insensitive)
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// ActivityEvent is one contractual transaction record. Events are immutable
// facts; nothing in this module modifies them after loading.
type ActivityEvent struct {
	EventID string `json:"EVENT_ID"`

	// Focal contractor side of the transaction (edge source)
	ContractorUEI   string `json:"CONTRACTOR_UEI"`
	ContractorName  string `json:"CONTRACTOR_NAME"`
	ContractorState string `json:"CONTRACTOR_STATE,omitempty"`
	ContractorCity  string `json:"CONTRACTOR_CITY,omitempty"`

	// Counterparty (edge target)
	RelatedEntityUEI  string            `json:"RELATED_ENTITY_UEI"`
	RelatedEntityName string            `json:"RELATED_ENTITY_NAME"`
	RelatedEntityType RelatedEntityType `json:"RELATED_ENTITY_TYPE,omitempty"`

	FlowDirection FlowDirection `json:"FLOW_DIRECTION"`
	EventType     EventType     `json:"EVENT_TYPE"`
	EventAmount   float64       `json:"EVENT_AMOUNT"`

	AwardKey        string  `json:"AWARD_KEY"`
	AwardTotalValue float64 `json:"AWARD_TOTAL_VALUE"`

	// Raw date strings; parsed by the active-window filter
	AwardStartDate        string `json:"AWARD_START_DATE"`
	AwardEndDate          string `json:"AWARD_END_DATE,omitempty"`
	AwardPotentialEndDate string `json:"AWARD_POTENTIAL_END_DATE,omitempty"`
	EventDate             string `json:"EVENT_DATE,omitempty"`

	// Place of performance
	PopState string `json:"POP_STATE,omitempty"`
	PopCity  string `json:"POP_CITY,omitempty"`

	NAICSCode        string `json:"NAICS_CODE,omitempty"`
	NAICSDescription string `json:"NAICS_DESCRIPTION,omitempty"`
	PSCCode          string `json:"PSC_CODE,omitempty"`
	PSCDescription   string `json:"PSC_DESCRIPTION,omitempty"`
}

// EffectiveEndDate returns AWARD_END_DATE if present, else the potential end date
func (e *ActivityEvent) EffectiveEndDate() string {
	if strings.TrimSpace(e.AwardEndDate) != "" {
		return e.AwardEndDate
	}
	return e.AwardPotentialEndDate
}

// dateLayouts are tried in order by ParseEventDate
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseEventDate parses a date as found in award exports.
// Date-only values are interpreted as midnight UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
