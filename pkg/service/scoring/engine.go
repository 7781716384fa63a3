package scoring

import (
	"math"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// Input carries the signals the priority formula blends
type Input struct {
	// UrgencyScore is the classifier's numeric urgency in [0, 1];
	// values outside the range are clamped.
	UrgencyScore float64

	// ImpactScope is the classifier's single/multi judgement
	ImpactScope types.ImpactScope

	// ReportCount is the total number of reports linked to the group
	ReportCount int

	// RecentCount is the number of reports linked within the trailing
	// frequency window
	RecentCount int

	// Environmental is the classifier's environmental flag
	Environmental bool

	// ConfidenceScore discounts the raw score; zero confidence sinks
	// the total to zero
	ConfidenceScore float64
}

// Breakdown is the transparent result of one scoring run. Components
// are scaled to their display range (x100); TotalScore is 0-100
// rounded to two decimals.
type Breakdown struct {
	Components model.PriorityComponents
	RawScore   float64
	Confidence float64
	TotalScore float64
}

// Engine computes priority scores from immutable configuration.
// Score is deterministic and side-effect free; identical inputs yield
// bit-identical output.
type Engine struct {
	config *model.ScoringConfig
}

// New creates a scoring engine. A nil config selects the documented
// default weights.
func New(config *model.ScoringConfig) *Engine {
	if config == nil {
		config = model.DefaultScoringConfig()
	}
	return &Engine{config: config}
}

// Score blends the four weighted components into one comparable score
func (e *Engine) Score(input Input) Breakdown {
	cfg := e.config

	urgency := clamp01(input.UrgencyScore) * cfg.UrgencyWeight

	base := cfg.ImpactBaseSingle
	if input.ImpactScope == types.ImpactScopeMulti {
		base = cfg.ImpactBaseMulti
	}
	boost := float64(max(0, input.ReportCount-1)) * cfg.ImpactBoost
	impact := math.Min(base+boost, 1.0) * cfg.ImpactWeight

	frequency := math.Min(float64(input.RecentCount)/cfg.FrequencySaturation, 1.0) * cfg.FrequencyWeight

	environmental := 0.0
	if input.Environmental {
		environmental = cfg.EnvironmentalWeight
	}

	raw := urgency + impact + frequency + environmental
	confidence := clamp01(input.ConfidenceScore)

	return Breakdown{
		Components: model.PriorityComponents{
			Urgency:       round2(urgency * 100),
			Impact:        round2(impact * 100),
			Frequency:     round2(frequency * 100),
			Environmental: round2(environmental * 100),
		},
		RawScore:   raw,
		Confidence: confidence,
		TotalScore: round2(raw * confidence * 100),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
