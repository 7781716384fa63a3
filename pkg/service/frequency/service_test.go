package frequency_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/repository"
	"github.com/campus-pulse/pulse/pkg/service/frequency"
)

func linkAt(t *testing.T, repo *repository.Memory, groupID types.GroupID, at time.Time) {
	t.Helper()
	link, err := model.NewReportLink(types.NewReportID(), groupID)
	gt.NoError(t, err)
	link.LinkedAt = at
	gt.NoError(t, repo.CreateLink(context.Background(), link))
}

func TestCountRecent_WindowBoundsAreInclusive(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	service := frequency.New(repo, 30*time.Minute)

	groupID := types.NewGroupID()
	asOf := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	linkAt(t, repo, groupID, asOf.Add(-30*time.Minute)) // exactly at the lower bound
	linkAt(t, repo, groupID, asOf)                      // exactly at the upper bound
	linkAt(t, repo, groupID, asOf.Add(-15*time.Minute)) // inside
	linkAt(t, repo, groupID, asOf.Add(-30*time.Minute-time.Second)) // just outside
	linkAt(t, repo, groupID, asOf.Add(time.Second))                 // in the future

	count, err := service.CountRecent(ctx, groupID, asOf)
	gt.NoError(t, err)
	gt.Equal(t, count, 3)
}

func TestCountRecent_EmptyGroup(t *testing.T) {
	repo := repository.NewMemory()
	service := frequency.New(repo, 30*time.Minute)

	count, err := service.CountRecent(context.Background(), types.NewGroupID(), time.Now())
	gt.NoError(t, err)
	gt.Equal(t, count, 0)
}

func TestCountRecent_IgnoresOtherGroups(t *testing.T) {
	repo := repository.NewMemory()
	service := frequency.New(repo, 30*time.Minute)

	groupID := types.NewGroupID()
	otherID := types.NewGroupID()
	asOf := time.Now()

	linkAt(t, repo, groupID, asOf.Add(-time.Minute))
	linkAt(t, repo, otherID, asOf.Add(-time.Minute))

	count, err := service.CountRecent(context.Background(), groupID, asOf)
	gt.NoError(t, err)
	gt.Equal(t, count, 1)
}

func TestSample_PersistsCountAndWindow(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	service := frequency.New(repo, 30*time.Minute)

	groupID := types.NewGroupID()
	asOf := time.Now()
	linkAt(t, repo, groupID, asOf.Add(-5*time.Minute))
	linkAt(t, repo, groupID, asOf.Add(-10*time.Minute))

	sample, err := service.Sample(ctx, groupID, asOf)
	gt.NoError(t, err)
	gt.Equal(t, sample.Count, 2)
	gt.Equal(t, sample.Window, 30*time.Minute)

	gt.NoError(t, repo.AddFrequencySample(ctx, sample))

	latest, err := repo.GetLatestFrequencySample(ctx, groupID)
	gt.NoError(t, err)
	gt.Equal(t, latest.Count, 2)
}

func TestNew_DefaultWindow(t *testing.T) {
	service := frequency.New(repository.NewMemory(), 0)
	gt.Equal(t, service.Window(), frequency.DefaultWindow)
}
