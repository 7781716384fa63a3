package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// Classification is the normalized output of the triage call for one
// report. It is produced once per triage run and never mutated; a
// re-triage replaces the whole record via upsert keyed by report ID.
type Classification struct {
	ReportID          types.ReportID
	Category          types.CategoryID
	UrgencyScore      float64
	ImpactScope       types.ImpactScope
	Environmental     bool
	ConfidenceScore   float64
	UrgencyLevel      types.UrgencyLevel
	ReportType        types.ReportType
	Welfare           bool
	RequiresImmediate bool
	SpamConfidence    float64
	ContextValidity   types.ContextValidity
	Reasoning         string
	CreatedAt         time.Time
}

// DefaultClassification returns the neutral fallback used when the
// triage provider is unreachable or its response is fully unparseable.
// Zero confidence deliberately sinks the priority score so that
// unclassifiable reports are never falsely escalated.
func DefaultClassification(reportID types.ReportID) *Classification {
	return &Classification{
		ReportID:        reportID,
		Category:        CategoryInfrastructure,
		UrgencyScore:    0.5,
		ImpactScope:     types.ImpactScopeSingle,
		ConfidenceScore: 0,
		UrgencyLevel:    types.UrgencyLevelMedium,
		ReportType:      types.ReportTypeGeneral,
		ContextValidity: types.ContextValid,
		Reasoning:       "automatic classification unavailable",
		CreatedAt:       time.Now(),
	}
}

// IsSpam reports whether the classification marks the report as spam,
// either by type or by spam confidence at or above the given threshold.
func (c *Classification) IsSpam(threshold float64) bool {
	return c.ReportType == types.ReportTypeSpam || c.SpamConfidence >= threshold
}
