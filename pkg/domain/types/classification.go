package types

// UrgencyLevel is the discrete urgency bucket reported by the classifier
type UrgencyLevel string

const (
	UrgencyLevelCritical UrgencyLevel = "CRITICAL"
	UrgencyLevelHigh     UrgencyLevel = "HIGH"
	UrgencyLevelMedium   UrgencyLevel = "MEDIUM"
	UrgencyLevelLow      UrgencyLevel = "LOW"
)

// String returns the string representation
func (l UrgencyLevel) String() string {
	return string(l)
}

// IsValid checks if the urgency level is one of the known buckets
func (l UrgencyLevel) IsValid() bool {
	switch l {
	case UrgencyLevelCritical, UrgencyLevelHigh, UrgencyLevelMedium, UrgencyLevelLow:
		return true
	default:
		return false
	}
}

// UrgencyLevelFromScore derives a discrete level from a numeric urgency score
func UrgencyLevelFromScore(score float64) UrgencyLevel {
	switch {
	case score >= 0.9:
		return UrgencyLevelCritical
	case score >= 0.7:
		return UrgencyLevelHigh
	case score >= 0.5:
		return UrgencyLevelMedium
	default:
		return UrgencyLevelLow
	}
}

// ReportType is the coarse classification of a report
type ReportType string

const (
	ReportTypeEmergency      ReportType = "EMERGENCY"
	ReportTypeSafety         ReportType = "SAFETY"
	ReportTypeInfrastructure ReportType = "INFRASTRUCTURE"
	ReportTypeAcademic       ReportType = "ACADEMIC"
	ReportTypeGeneral        ReportType = "GENERAL"
	ReportTypeTest           ReportType = "TEST"
	ReportTypeSpam           ReportType = "SPAM"
)

// String returns the string representation
func (t ReportType) String() string {
	return string(t)
}

// IsValid checks if the report type is one of the known values
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeEmergency, ReportTypeSafety, ReportTypeInfrastructure,
		ReportTypeAcademic, ReportTypeGeneral, ReportTypeTest, ReportTypeSpam:
		return true
	default:
		return false
	}
}

// ImpactScope describes how many people a report affects
type ImpactScope string

const (
	ImpactScopeSingle ImpactScope = "single"
	ImpactScopeMulti  ImpactScope = "multi"
)

// String returns the string representation
func (s ImpactScope) String() string {
	return string(s)
}

// ContextValidity is the classifier's judgement of whether the report text
// makes sense as a real problem report
type ContextValidity string

const (
	ContextValid     ContextValidity = "VALID"
	ContextAmbiguous ContextValidity = "AMBIGUOUS"
	ContextInvalid   ContextValidity = "INVALID"
)

// String returns the string representation
func (v ContextValidity) String() string {
	return string(v)
}

// IsValid checks if the context validity is one of the known values
func (v ContextValidity) IsValid() bool {
	switch v {
	case ContextValid, ContextAmbiguous, ContextInvalid:
		return true
	default:
		return false
	}
}

// RouteConfidence expresses how certain a routing decision is
type RouteConfidence string

const (
	RouteConfidenceHigh   RouteConfidence = "HIGH"
	RouteConfidenceMedium RouteConfidence = "MEDIUM"
)

// String returns the string representation
func (c RouteConfidence) String() string {
	return string(c)
}
