package routing_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/repository"
	"github.com/campus-pulse/pulse/pkg/service/routing"
)

func seededRepo(t *testing.T) interfaces.Repository {
	t.Helper()
	repo := repository.NewMemory()

	authorities := []*model.Authority{
		{ID: "auth-security", Name: model.AuthoritySecurity},
		{ID: "auth-academic-affairs", Name: model.AuthorityAcademicAffair},
		{ID: "auth-admin-office", Name: model.AuthorityAdminOffice},
		{ID: "auth-provost", Name: model.AuthorityProvost},
	}
	for _, a := range authorities {
		gt.NoError(t, repo.PutAuthority(context.Background(), a))
	}
	return repo
}

func TestRoute_CategoryOverrideBeatsLocation(t *testing.T) {
	engine := routing.New(nil, seededRepo(t))

	// safety is overridden to Security at every location kind
	for _, kind := range []types.LocationKind{
		types.LocationKindHostel,
		types.LocationKindClassroom,
		types.LocationKindOutdoor,
	} {
		decision, err := engine.Route(context.Background(), model.CategorySafety, kind)
		gt.NoError(t, err)
		gt.Equal(t, decision.AuthorityName, model.AuthoritySecurity)
		gt.Equal(t, decision.Confidence, types.RouteConfidenceHigh)
	}
}

func TestRoute_HostelRule(t *testing.T) {
	engine := routing.New(nil, seededRepo(t))

	decision, err := engine.Route(context.Background(), model.CategoryWater, types.LocationKindHostel)
	gt.NoError(t, err)
	gt.Equal(t, decision.AuthorityName, model.AuthorityProvost)
	gt.Equal(t, decision.Confidence, types.RouteConfidenceHigh)
}

func TestRoute_UtilityRuleOutsideHostel(t *testing.T) {
	engine := routing.New(nil, seededRepo(t))

	decision, err := engine.Route(context.Background(), model.CategoryWater, types.LocationKindClassroom)
	gt.NoError(t, err)
	gt.Equal(t, decision.AuthorityName, model.AuthorityAdminOffice)
	gt.Equal(t, decision.Confidence, types.RouteConfidenceMedium)
}

func TestRoute_DefaultRule(t *testing.T) {
	engine := routing.New(nil, seededRepo(t))

	decision, err := engine.Route(context.Background(), model.CategoryFood, types.LocationKindLibrary)
	gt.NoError(t, err)
	gt.Equal(t, decision.AuthorityName, model.AuthorityAdminOffice)
	gt.Equal(t, decision.Confidence, types.RouteConfidenceMedium)
}

func TestRoute_UnknownAuthorityIsFatal(t *testing.T) {
	// Directory is missing the authority the rule table names
	repo := repository.NewMemory()
	engine := routing.New(nil, repo)

	_, err := engine.Route(context.Background(), model.CategorySafety, types.LocationKindHostel)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagRouting)).True()
}

func TestRoute_CustomRules(t *testing.T) {
	repo := seededRepo(t)
	config := &model.RoutingConfig{
		CategoryOverrides: map[string]string{
			model.CategoryFood.String(): model.AuthorityProvost,
		},
		DefaultAuthority: model.AuthorityAdminOffice,
	}
	engine := routing.New(config, repo)

	decision, err := engine.Route(context.Background(), model.CategoryFood, types.LocationKindClassroom)
	gt.NoError(t, err)
	gt.Equal(t, decision.AuthorityName, model.AuthorityProvost)

	fallback, err := engine.Route(context.Background(), model.CategoryWater, types.LocationKindHostel)
	gt.NoError(t, err)
	gt.Equal(t, fallback.AuthorityName, model.AuthorityAdminOffice)
}
