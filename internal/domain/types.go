// Package domain contains the core entities of adverse-event report processing:
// the persisted report record, the fixed severity vocabulary, the outcome tags
// recognised in narrative text, and the contracts the service layer depends on.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Severity is the clinical significance tag attached to a report.
// Only the three declared values are ever stored.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// SeverityLevels lists the tags in declaration order, which is also the
// presentation order used by the analytics summary.
var SeverityLevels = []Severity{SeverityMild, SeverityModerate, SeveritySevere}

// ErrInvalidSeverity is returned when a string is not one of the severity tags.
var ErrInvalidSeverity = errors.New("invalid severity tag")

// IsValid reports whether s is one of the enumerated tags.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// String returns the canonical tag.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a canonical tag, case-insensitively, into a Severity.
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, value)
	}
	return s, nil
}

// Outcome is the patient outcome tag recognised in a narrative.
type Outcome string

const (
	OutcomeFatal           Outcome = "fatal"
	OutcomeLifeThreatening Outcome = "life-threatening"
	OutcomeHospitalized    Outcome = "hospitalized"
	OutcomeOngoing         Outcome = "ongoing"
	OutcomeRecovered       Outcome = "recovered"
)

// IndicatesDeathOrLifeThreat reports whether the outcome is fatal or life-threatening.
func (o Outcome) IndicatesDeathOrLifeThreat() bool {
	return o == OutcomeFatal || o == OutcomeLifeThreatening
}

// IndicatesHospitalization reports whether the patient was hospitalized.
func (o Outcome) IndicatesHospitalization() bool {
	return o == OutcomeHospitalized
}

// String returns the tag.
func (o Outcome) String() string {
	return string(o)
}

// ExtractedFields holds the candidate values pulled out of a narrative.
// Zero values mean the signal was not found.
type ExtractedFields struct {
	Drug          string
	AdverseEvents []string
	Outcome       Outcome
}

// ReportFields is everything needed to persist a new report except its ID.
type ReportFields struct {
	Drug          *string
	AdverseEvents []string
	Severity      *Severity
	Outcome       *string
	RawText       string
}

// Report is one processed narrative as stored. Absent optional fields are nil
// and encode as JSON null. RawText is kept for audit and never serialized.
type Report struct {
	ID            int64     `json:"id"`
	Drug          *string   `json:"drug"`
	AdverseEvents []string  `json:"adverse_events"`
	Severity      *Severity `json:"severity"`
	Outcome       *string   `json:"outcome"`
	RawText       string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers never share memory with the store.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	c := *r
	c.Drug = cloneString(r.Drug)
	c.Outcome = cloneString(r.Outcome)
	if r.Severity != nil {
		s := *r.Severity
		c.Severity = &s
	}
	c.AdverseEvents = append(make([]string, 0, len(r.AdverseEvents)), r.AdverseEvents...)
	return &c
}

// SeverityCount is one bucket of the severity distribution.
type SeverityCount struct {
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
}

// TranslatableReport is the report-shaped object a caller submits for
// translation. ID, Severity and CreatedAt are copied through untouched.
type TranslatableReport struct {
	ID            *int64     `json:"id,omitempty"`
	Drug          *string    `json:"drug"`
	AdverseEvents []string   `json:"adverse_events"`
	Severity      *Severity  `json:"severity"`
	Outcome       *string    `json:"outcome"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SeverityPtr returns a pointer to s, or nil when s is empty.
func SeverityPtr(s Severity) *Severity {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
