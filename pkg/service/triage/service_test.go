package triage_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/service/triage"
)

// respondWith builds a mock provider that returns the given text
func respondWith(text string) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func failWith(err error) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, err
				},
			}, nil
		},
	}
}

const reportID = types.ReportID("rpt-test")

func TestClassify_CleanResponse(t *testing.T) {
	service := triage.New(respondWith(`{
		"category": "water",
		"urgency_score": 0.85,
		"impact_scope": "multi",
		"environmental_flag": true,
		"confidence_score": 0.9,
		"urgency_level": "HIGH",
		"report_type": "INFRASTRUCTURE",
		"welfare_flag": false,
		"requires_immediate_action": true,
		"spam_confidence": 0.05,
		"context_validity": "VALID",
		"reasoning": "burst pipe affects the whole floor"
	}`))

	c, err := service.Classify(context.Background(), reportID, "Burst pipe", "Water everywhere on floor 2")
	gt.NoError(t, err)
	gt.Equal(t, c.ReportID, reportID)
	gt.Equal(t, c.Category, model.CategoryWater)
	gt.Equal(t, c.UrgencyScore, 0.85)
	gt.Equal(t, c.ImpactScope, types.ImpactScopeMulti)
	gt.B(t, c.Environmental).True()
	gt.Equal(t, c.ConfidenceScore, 0.9)
	gt.Equal(t, c.UrgencyLevel, types.UrgencyLevelHigh)
	gt.Equal(t, c.ReportType, types.ReportTypeInfrastructure)
	gt.B(t, c.RequiresImmediate).True()
	gt.Equal(t, c.ContextValidity, types.ContextValid)
	gt.Equal(t, c.Reasoning, "burst pipe affects the whole floor")
}

func TestClassify_FencedResponseWithProse(t *testing.T) {
	service := triage.New(respondWith("Here is the classification you asked for:\n```json\n" +
		`{"category": "wifi", "urgency_score": 0.4, "confidence_score": 0.8}` +
		"\n```\nLet me know if you need anything else."))

	c, err := service.Classify(context.Background(), reportID, "No internet", "WiFi down in library")
	gt.NoError(t, err)
	gt.Equal(t, c.Category, model.CategoryWifi)
	gt.Equal(t, c.UrgencyScore, 0.4)
	gt.Equal(t, c.ConfidenceScore, 0.8)
}

func TestClassify_TrailingComma(t *testing.T) {
	service := triage.New(respondWith(`{"category": "electricity", "urgency_score": 0.7,}`))

	c, err := service.Classify(context.Background(), reportID, "Power cut", "No power in lab")
	gt.NoError(t, err)
	gt.Equal(t, c.Category, model.CategoryElectricity)
	gt.Equal(t, c.UrgencyScore, 0.7)
}

func TestClassify_TruncatedResponse(t *testing.T) {
	// Output cut off mid-field: recover what precedes the cut, default
	// the rest
	service := triage.New(respondWith(`{"category": "sanitation", "urgency_score": 0.9, "impact_sco`))

	c, err := service.Classify(context.Background(), reportID, "Overflowing bins", "Bins not collected for a week")
	gt.NoError(t, err)
	gt.Equal(t, c.Category, model.CategorySanitation)
	gt.Equal(t, c.UrgencyScore, 0.9)
	gt.Equal(t, c.ImpactScope, types.ImpactScopeSingle)
	gt.Equal(t, c.ConfidenceScore, 0.7)
	gt.Equal(t, c.UrgencyLevel, types.UrgencyLevelCritical)
	gt.Equal(t, c.ReportType, types.ReportTypeGeneral)
	gt.Equal(t, c.Reasoning, "no reasoning provided")
}

func TestClassify_TruncatedFencedResponse(t *testing.T) {
	// Fence opened but never closed
	service := triage.New(respondWith("```json\n" +
		`{"category": "safety", "urgency_score": 0.95, "welfare_flag": true`))

	c, err := service.Classify(context.Background(), reportID, "Broken lock", "Main gate lock broken")
	gt.NoError(t, err)
	gt.Equal(t, c.Category, model.CategorySafety)
	gt.Equal(t, c.UrgencyScore, 0.95)
	gt.B(t, c.Welfare).True()
}

func TestClassify_UnparseableResponse(t *testing.T) {
	service := triage.New(respondWith("I cannot classify this report, sorry."))

	_, err := service.Classify(context.Background(), reportID, "Something", "Something happened")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, triage.ErrTagUnparseable)).True()
	gt.B(t, goerr.HasTag(err, model.ErrTagAutomation)).True()
}

func TestClassify_ProviderFailure(t *testing.T) {
	service := triage.New(failWith(goerr.New("deadline exceeded")))

	_, err := service.Classify(context.Background(), reportID, "Something", "Something happened")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, triage.ErrTagProvider)).True()
	gt.B(t, goerr.HasTag(err, model.ErrTagAutomation)).True()
}

func TestClassify_EmptyResponse(t *testing.T) {
	service := triage.New(respondWith(""))

	_, err := service.Classify(context.Background(), reportID, "Something", "Something happened")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, triage.ErrTagProvider)).True()
}

func TestClassify_ValidatesInput(t *testing.T) {
	service := triage.New(respondWith(`{}`))

	_, err := service.Classify(context.Background(), reportID, "", "desc")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()

	_, err = service.Classify(context.Background(), reportID, "title", "")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
}

func TestClassify_KeywordFallbackCategory(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected types.CategoryID
	}{
		{"network maps to wifi", "campus network outage", model.CategoryWifi},
		{"ac token maps to electricity", "broken ac in room", model.CategoryElectricity},
		{"bathroom maps to sanitation", "dirty bathroom", model.CategorySanitation},
		{"exam maps to academics", "exam schedule clash", model.CategoryAcademics},
		{"theft maps to safety", "bike theft near gate", model.CategorySafety},
		{"ac does not fire inside words", "academic building issue", model.CategoryInfrastructure},
		{"unknown falls back to infrastructure", "miscellaneous problem", model.CategoryInfrastructure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := triage.New(respondWith(`{"category": "` + tc.raw + `", "urgency_score": 0.5}`))

			c, err := service.Classify(context.Background(), reportID, "title", "desc")
			gt.NoError(t, err)
			gt.Equal(t, c.Category, tc.expected)
		})
	}
}

func TestClassify_NumericNormalization(t *testing.T) {
	// Quoted numbers are accepted; out-of-range values fall back
	service := triage.New(respondWith(`{
		"category": "water",
		"urgency_score": "0.8",
		"confidence_score": 1.5,
		"spam_confidence": -0.2
	}`))

	c, err := service.Classify(context.Background(), reportID, "title", "desc")
	gt.NoError(t, err)
	gt.Equal(t, c.UrgencyScore, 0.8)
	gt.Equal(t, c.ConfidenceScore, 0.7)
	gt.Equal(t, c.SpamConfidence, 0.0)
}

func TestClassify_DefaultsForEmptyObject(t *testing.T) {
	service := triage.New(respondWith(`{}`))

	c, err := service.Classify(context.Background(), reportID, "title", "desc")
	gt.NoError(t, err)
	gt.Equal(t, c.Category, model.CategoryInfrastructure)
	gt.Equal(t, c.UrgencyScore, 0.5)
	gt.Equal(t, c.ImpactScope, types.ImpactScopeSingle)
	gt.Equal(t, c.ConfidenceScore, 0.7)
	gt.Equal(t, c.UrgencyLevel, types.UrgencyLevelMedium)
	gt.Equal(t, c.ReportType, types.ReportTypeGeneral)
	gt.B(t, c.Environmental).False()
	gt.Equal(t, c.SpamConfidence, 0.0)
	gt.Equal(t, c.ContextValidity, types.ContextValid)
}

func TestHealthCheck(t *testing.T) {
	healthy := triage.New(respondWith("OK"))
	gt.B(t, healthy.HealthCheck(context.Background())).True()

	down := triage.New(failWith(goerr.New("connection refused")))
	gt.B(t, down.HealthCheck(context.Background())).False()
}
