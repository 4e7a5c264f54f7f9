package service

import (
	"github.com/adverse-event-server/internal/domain"
)

// AggregateSeverities counts reports per severity tier. Every tier is present
// in mild, moderate, severe order, with a zero count when no report carries it.
// Reports without a severity are not counted.
func AggregateSeverities(reports []*domain.Report) []domain.SeverityCount {
	counts := make(map[domain.Severity]int, len(domain.SeverityLevels))
	for _, r := range reports {
		if r == nil || r.Severity == nil || !r.Severity.IsValid() {
			continue
		}
		counts[*r.Severity]++
	}

	summary := make([]domain.SeverityCount, 0, len(domain.SeverityLevels))
	for _, level := range domain.SeverityLevels {
		summary = append(summary, domain.SeverityCount{Severity: level, Count: counts[level]})
	}
	return summary
}
