package triage

import (
	"strconv"
	"strings"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

const defaultReasoning = "no reasoning provided"

// normalize maps the raw key-value response onto a fully-defaulted
// Classification. Every field is defaulted independently when absent,
// out of range or of the wrong type; nothing undefined propagates
// downstream.
func normalize(reportID types.ReportID, fields map[string]any) *model.Classification {
	urgency := numberInRange(fields, "urgency_score", 0.5)

	c := &model.Classification{
		ReportID:          reportID,
		Category:          normalizeCategory(stringValue(fields, "category")),
		UrgencyScore:      urgency,
		ImpactScope:       normalizeScope(stringValue(fields, "impact_scope")),
		Environmental:     boolValue(fields, "environmental_flag"),
		ConfidenceScore:   numberInRange(fields, "confidence_score", 0.7),
		UrgencyLevel:      normalizeUrgencyLevel(stringValue(fields, "urgency_level"), urgency),
		ReportType:        normalizeReportType(stringValue(fields, "report_type")),
		Welfare:           boolValue(fields, "welfare_flag"),
		RequiresImmediate: boolValue(fields, "requires_immediate_action"),
		SpamConfidence:    numberInRange(fields, "spam_confidence", 0),
		ContextValidity:   normalizeValidity(stringValue(fields, "context_validity")),
		Reasoning:         stringValue(fields, "reasoning"),
		CreatedAt:         time.Now(),
	}
	if c.Reasoning == "" {
		c.Reasoning = defaultReasoning
	}
	return c
}

// normalizeCategory lower-cases the value and checks it against the
// fixed category set, then tries the keyword fallback, then defaults
// to infrastructure.
func normalizeCategory(v string) types.CategoryID {
	c := strings.ToLower(strings.TrimSpace(v))
	if id := types.CategoryID(c); model.IsKnownCategory(id) {
		return id
	}
	return categoryFromKeywords(c)
}

// keywordRules maps raw-text fragments to categories, checked in
// order. Short keywords match whole tokens only so that e.g. "ac"
// never fires inside an unrelated word.
var keywordRules = []struct {
	substrings []string
	tokens     []string
	category   types.CategoryID
}{
	{substrings: []string{"internet", "network"}, category: model.CategoryWifi},
	{substrings: []string{"electric", "power"}, tokens: []string{"ac", "fan"}, category: model.CategoryElectricity},
	{substrings: []string{"toilet", "bathroom", "clean"}, category: model.CategorySanitation},
	{substrings: []string{"exam", "class", "professor", "result"}, category: model.CategoryAcademics},
	{substrings: []string{"secure", "theft", "danger"}, category: model.CategorySafety},
}

func categoryFromKeywords(c string) types.CategoryID {
	tokens := strings.FieldsFunc(c, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	for _, rule := range keywordRules {
		for _, sub := range rule.substrings {
			if strings.Contains(c, sub) {
				return rule.category
			}
		}
		for _, kw := range rule.tokens {
			for _, tok := range tokens {
				if tok == kw {
					return rule.category
				}
			}
		}
	}
	return model.CategoryInfrastructure
}

func normalizeScope(v string) types.ImpactScope {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "multi", "multiple":
		return types.ImpactScopeMulti
	default:
		return types.ImpactScopeSingle
	}
}

// normalizeUrgencyLevel keeps a valid enum value; anything else is
// derived from the numeric urgency score.
func normalizeUrgencyLevel(v string, urgency float64) types.UrgencyLevel {
	level := types.UrgencyLevel(strings.ToUpper(strings.TrimSpace(v)))
	if level.IsValid() {
		return level
	}
	return types.UrgencyLevelFromScore(urgency)
}

func normalizeReportType(v string) types.ReportType {
	t := types.ReportType(strings.ToUpper(strings.TrimSpace(v)))
	if t.IsValid() {
		return t
	}
	return types.ReportTypeGeneral
}

func normalizeValidity(v string) types.ContextValidity {
	cv := types.ContextValidity(strings.ToUpper(strings.TrimSpace(v)))
	if cv.IsValid() {
		return cv
	}
	return types.ContextValid
}

// stringValue returns the field as a string, or "" when absent or of
// another type
func stringValue(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// numberInRange returns the field as a float64 clamped to [0, 1]
// membership: out-of-range, absent and wrongly-typed values all yield
// the fallback. Numeric strings are accepted since providers quote
// numbers now and then.
func numberInRange(fields map[string]any, key string, fallback float64) float64 {
	var v float64
	switch raw := fields[key].(type) {
	case float64:
		v = raw
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fallback
		}
		v = parsed
	default:
		return fallback
	}

	if v < 0 || v > 1 {
		return fallback
	}
	return v
}

// boolValue coerces the field to a strict boolean; anything that is
// not the JSON literal true counts as false
func boolValue(fields map[string]any, key string) bool {
	v, ok := fields[key].(bool)
	return ok && v
}
