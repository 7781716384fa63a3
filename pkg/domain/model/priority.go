package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// PriorityComponents holds the four weighted component values of a
// computed priority, each scaled to its display range (x100).
type PriorityComponents struct {
	Urgency       float64
	Impact        float64
	Frequency     float64
	Environmental float64
}

// PrioritySnapshot is one entry of the append-only priority history of
// a group. The current priority of a group is its most recent snapshot.
// A manual override carries nil Components and the overriding
// administrator in OverriddenBy.
type PrioritySnapshot struct {
	ID           types.SnapshotID
	GroupID      types.GroupID
	Components   *PriorityComponents
	RawScore     float64
	Confidence   float64
	TotalScore   float64
	OverriddenBy string
	Reason       string
	ComputedAt   time.Time
}

// NewPrioritySnapshot creates a computed priority snapshot
func NewPrioritySnapshot(groupID types.GroupID, components PriorityComponents, rawScore, confidence, totalScore float64) (*PrioritySnapshot, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is required")
	}

	return &PrioritySnapshot{
		ID:         types.NewSnapshotID(),
		GroupID:    groupID,
		Components: &components,
		RawScore:   rawScore,
		Confidence: confidence,
		TotalScore: totalScore,
		ComputedAt: time.Now(),
	}, nil
}

// NewManualPrioritySnapshot creates an administrator-authored override
// snapshot. Components stay nil to mark that no formula produced it.
func NewManualPrioritySnapshot(groupID types.GroupID, score float64, reason, overriddenBy string) (*PrioritySnapshot, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is required")
	}
	if score < 0 || score > 100 {
		return nil, goerr.New("override score must be in [0, 100]", goerr.V("score", score))
	}
	if overriddenBy == "" {
		return nil, goerr.New("overriding administrator is required")
	}

	return &PrioritySnapshot{
		ID:           types.NewSnapshotID(),
		GroupID:      groupID,
		TotalScore:   score,
		OverriddenBy: overriddenBy,
		Reason:       reason,
		ComputedAt:   time.Now(),
	}, nil
}

// IsManual reports whether the snapshot was authored by an administrator
func (s *PrioritySnapshot) IsManual() bool {
	return s.Components == nil
}

// FrequencySample records the report count of a group within the
// trailing frequency window at computation time. Write-once; the most
// recent sample wins for scoring.
type FrequencySample struct {
	ID         types.SampleID
	GroupID    types.GroupID
	Count      int
	Window     time.Duration
	ComputedAt time.Time
}

// NewFrequencySample creates a frequency sample for a group
func NewFrequencySample(groupID types.GroupID, count int, window time.Duration, computedAt time.Time) (*FrequencySample, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is required")
	}
	if count < 0 {
		return nil, goerr.New("sample count must not be negative", goerr.V("count", count))
	}

	return &FrequencySample{
		ID:         types.NewSampleID(),
		GroupID:    groupID,
		Count:      count,
		Window:     window,
		ComputedAt: computedAt,
	}, nil
}
