package service

import (
	"github.com/adverse-event-server/internal/domain"
)

// DefaultEventThreshold is the number of distinct adverse events above which
// a report is at least moderate.
const DefaultEventThreshold = 2

// SeverityRule is one ordered classification rule. Rules are evaluated in
// order and the first whose predicate holds decides the severity.
type SeverityRule struct {
	Name     string
	Severity domain.Severity
	Applies  func(fields domain.ExtractedFields) bool
}

// Classification is the result of applying the rule table to extracted fields
type Classification struct {
	Severity domain.Severity
	Rule     string
}

// Present reports whether any rule assigned a severity
func (c Classification) Present() bool {
	return c.Severity != ""
}

// SeverityClassifier maps extracted fields to a severity tier
type SeverityClassifier struct {
	threshold int
	rules     []SeverityRule
}

// NewSeverityClassifier creates a classifier using the given event-count threshold.
// A negative threshold falls back to DefaultEventThreshold; zero makes any
// single event moderate.
func NewSeverityClassifier(threshold int) *SeverityClassifier {
	if threshold < 0 {
		threshold = DefaultEventThreshold
	}
	c := &SeverityClassifier{threshold: threshold}
	c.rules = []SeverityRule{
		{
			Name:     "death_or_life_threat",
			Severity: domain.SeveritySevere,
			Applies: func(f domain.ExtractedFields) bool {
				return f.Outcome.IndicatesDeathOrLifeThreat()
			},
		},
		{
			Name:     "hospitalization",
			Severity: domain.SeverityModerate,
			Applies: func(f domain.ExtractedFields) bool {
				return f.Outcome.IndicatesHospitalization()
			},
		},
		{
			Name:     "event_count_above_threshold",
			Severity: domain.SeverityModerate,
			Applies: func(f domain.ExtractedFields) bool {
				return len(f.AdverseEvents) > c.threshold
			},
		},
		{
			Name:     "any_event",
			Severity: domain.SeverityMild,
			Applies: func(f domain.ExtractedFields) bool {
				return len(f.AdverseEvents) > 0
			},
		},
	}
	return c
}

// Classify returns the severity of the first matching rule. When no rule
// matches the classification is absent.
func (c *SeverityClassifier) Classify(fields domain.ExtractedFields) Classification {
	for _, rule := range c.rules {
		if rule.Applies(fields) {
			return Classification{Severity: rule.Severity, Rule: rule.Name}
		}
	}
	return Classification{}
}

// Rules returns the rule names in evaluation order
func (c *SeverityClassifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Threshold returns the configured event-count threshold
func (c *SeverityClassifier) Threshold() int {
	return c.threshold
}
