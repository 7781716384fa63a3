package triage

import (
	"bytes"
	"context"
	"embed"
	"text/template"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Error tags for categorization
var (
	ErrTagProvider    = goerr.NewTag("provider_failure")
	ErrTagUnparseable = goerr.NewTag("unparseable_response")
)

//go:embed templates/*.md
var templateFS embed.FS

// DefaultTimeout bounds one provider call. A timeout is treated the
// same as a parse failure: the caller substitutes the default
// classification and continues.
const DefaultTimeout = 10 * time.Second

// Service adapts the external text-classification provider into a
// bounded, typed result. It repairs fenced, prose-wrapped and
// truncated responses; every output field has an explicit fallback.
type Service struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
}

// Option is a functional option for configuring the Service
type Option func(*Service)

// WithTimeout overrides the provider call timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// New creates a new triage Service
func New(llmClient gollem.LLMClient, opts ...Option) *Service {
	s := &Service{
		llmClient: llmClient,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type promptData struct {
	Title       string
	Description string
	Categories  []types.CategoryID
}

// Classify sends the report text to the provider and normalizes the
// response into a Classification. It has no side effects beyond the
// remote call.
func (s *Service) Classify(ctx context.Context, reportID types.ReportID, title, description string) (*model.Classification, error) {
	if title == "" {
		return nil, goerr.New("title is required", goerr.T(model.ErrTagValidation))
	}
	if description == "" {
		return nil, goerr.New("description is required", goerr.T(model.ErrTagValidation))
	}

	prompt, err := s.renderPrompt(promptData{
		Title:       title,
		Description: description,
		Categories:  model.KnownCategories,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render classification prompt",
			goerr.T(model.ErrTagAutomation))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create provider session",
			goerr.T(model.ErrTagAutomation), goerr.T(ErrTagProvider))
	}

	response, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "classification call failed",
			goerr.T(model.ErrTagAutomation), goerr.T(ErrTagProvider))
	}

	if len(response.Texts) == 0 || response.Texts[0] == "" {
		return nil, goerr.New("empty response from provider",
			goerr.T(model.ErrTagAutomation), goerr.T(ErrTagProvider))
	}

	fields, err := extractFields(response.Texts[0])
	if err != nil {
		return nil, goerr.Wrap(err, "response is fully unparseable",
			goerr.V("response", response.Texts[0]),
			goerr.T(model.ErrTagAutomation), goerr.T(ErrTagUnparseable))
	}

	return normalize(reportID, fields), nil
}

// HealthCheck reports whether the provider answers a trivial prompt
func (s *Service) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return false
	}

	response, err := session.GenerateContent(ctx, gollem.Text("Reply with the single word OK."))
	if err != nil {
		return false
	}

	return len(response.Texts) > 0 && response.Texts[0] != ""
}

// renderPrompt renders the embedded classification prompt template
func (s *Service) renderPrompt(data promptData) (string, error) {
	content, err := templateFS.ReadFile("templates/classify.md")
	if err != nil {
		return "", goerr.Wrap(err, "failed to read classification template")
	}

	tmpl, err := template.New("classify").Parse(string(content))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse classification template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute classification template")
	}

	return buf.String(), nil
}

var _ interfaces.TriageClient = (*Service)(nil) // Compile-time interface check
