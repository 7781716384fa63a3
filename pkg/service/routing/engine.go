package routing

import (
	"context"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Decision is the result of one routing run
type Decision struct {
	AuthorityID   types.AuthorityID
	AuthorityName string
	Reason        string
	Confidence    types.RouteConfidence
}

// Engine assigns a responsible authority to a (category, location
// kind) pair from an immutable rule table. Rule precedence: category
// overrides beat the hostel rule, which beats the utility rule, which
// beats the default.
type Engine struct {
	config *model.RoutingConfig
	repo   interfaces.Repository
}

// New creates a routing engine. A nil config selects the built-in
// rule table.
func New(config *model.RoutingConfig, repo interfaces.Repository) *Engine {
	if config == nil {
		config = model.DefaultRoutingConfig()
	}
	return &Engine{
		config: config,
		repo:   repo,
	}
}

// Route resolves the responsible authority for a category and
// location kind. A rule that names an authority absent from the
// directory is a configuration fault and fails fatally; an issue is
// never silently left unrouted.
func (e *Engine) Route(ctx context.Context, category types.CategoryID, kind types.LocationKind) (*Decision, error) {
	name, reason, confidence := e.match(category, kind)

	authority, err := e.repo.GetAuthorityByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "routing rule names unknown authority",
			goerr.V("authority", name),
			goerr.V("category", category),
			goerr.V("locationKind", kind),
			goerr.T(model.ErrTagRouting))
	}

	return &Decision{
		AuthorityID:   authority.ID,
		AuthorityName: authority.Name,
		Reason:        reason,
		Confidence:    confidence,
	}, nil
}

// match evaluates the rule table in precedence order
func (e *Engine) match(category types.CategoryID, kind types.LocationKind) (name, reason string, confidence types.RouteConfidence) {
	if authority, ok := e.config.CategoryOverrides[category.String()]; ok {
		return authority, "category is always handled by " + authority, types.RouteConfidenceHigh
	}

	if e.config.MatchesHostelRule(category, kind) {
		return e.config.HostelAuthority, "hostel facility issues go to " + e.config.HostelAuthority, types.RouteConfidenceHigh
	}

	if e.config.MatchesUtilityRule(category) {
		return e.config.UtilityAuthority, "utility issues outside hostels go to " + e.config.UtilityAuthority, types.RouteConfidenceMedium
	}

	return e.config.DefaultAuthority, "no specific rule matched, using default authority", types.RouteConfidenceMedium
}
