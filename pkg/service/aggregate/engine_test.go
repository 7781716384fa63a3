package aggregate_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/repository"
	"github.com/campus-pulse/pulse/pkg/service/aggregate"
)

func TestAggregate_SameOpenGroupForSamePair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	engine := aggregate.New(repo)

	first, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)
	gt.B(t, first.IsNew).True()

	second, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)
	gt.B(t, second.IsNew).False()
	gt.Equal(t, second.GroupID, first.GroupID)
}

func TestAggregate_DifferentPairsGetDifferentGroups(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	engine := aggregate.New(repo)

	water, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)
	electricity, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryElectricity, "hostel-a", "")
	gt.NoError(t, err)
	otherLocation, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-b", "")
	gt.NoError(t, err)

	gt.B(t, water.GroupID != electricity.GroupID).True()
	gt.B(t, water.GroupID != otherLocation.GroupID).True()
}

func TestAggregate_NewGroupAfterResolution(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	engine := aggregate.New(repo)

	first, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)

	gt.NoError(t, repo.UpdateGroupStatus(ctx, first.GroupID, types.GroupStatusResolved))

	second, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)
	gt.B(t, second.IsNew).True()
	gt.B(t, second.GroupID != first.GroupID).True()
}

func TestAggregate_InProgressGroupStillAcceptsReports(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	engine := aggregate.New(repo)

	first, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWifi, "library", "")
	gt.NoError(t, err)

	gt.NoError(t, repo.UpdateGroupStatus(ctx, first.GroupID, types.GroupStatusInProgress))

	second, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWifi, "library", "")
	gt.NoError(t, err)
	gt.B(t, second.IsNew).False()
	gt.Equal(t, second.GroupID, first.GroupID)
}

// racingRepo simulates a concurrent invocation winning the create race:
// the first lookup finds nothing, the first create conflicts, and the
// second lookup finds the winner's group.
type racingRepo struct {
	interfaces.Repository
	winner      *model.IssueGroup
	findCalls   int
	createCalls int
}

func (r *racingRepo) FindActiveGroup(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID) (*model.IssueGroup, error) {
	r.findCalls++
	if r.findCalls == 1 {
		return nil, goerr.Wrap(model.ErrGroupNotFound, "no active group for pair")
	}
	return r.winner, nil
}

func (r *racingRepo) CreateGroup(ctx context.Context, group *model.IssueGroup) error {
	r.createCalls++
	return goerr.Wrap(model.ErrOpenGroupExists, "pair is held by another group")
}

func TestAggregate_RetriesOnCreateConflict(t *testing.T) {
	ctx := context.Background()

	winner, err := model.NewIssueGroup(model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)

	repo := &racingRepo{Repository: repository.NewMemory(), winner: winner}
	engine := aggregate.New(repo)

	result, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.NoError(t, err)
	gt.B(t, result.IsNew).False()
	gt.Equal(t, result.GroupID, winner.ID)
	gt.Equal(t, repo.createCalls, 1)
	gt.Equal(t, repo.findCalls, 2)
}

// stuckRepo always loses the race
type stuckRepo struct {
	interfaces.Repository
}

func (r *stuckRepo) FindActiveGroup(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID) (*model.IssueGroup, error) {
	return nil, goerr.Wrap(model.ErrGroupNotFound, "no active group for pair")
}

func (r *stuckRepo) CreateGroup(ctx context.Context, group *model.IssueGroup) error {
	return goerr.Wrap(model.ErrOpenGroupExists, "pair is held by another group")
}

func TestAggregate_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	repo := &stuckRepo{Repository: repository.NewMemory()}
	engine := aggregate.New(repo, aggregate.WithMaxAttempts(3))

	_, err := engine.Aggregate(ctx, types.NewReportID(), model.CategoryWater, "hostel-a", "")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagConflict)).True()
}
