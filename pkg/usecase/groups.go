package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// GroupSummary is the list view of one issue group
type GroupSummary struct {
	Group         *model.IssueGroup
	AuthorityName string
	ReportCount   int
	Priority      *model.PrioritySnapshot
}

// GroupDetail is the full view of one issue group
type GroupDetail struct {
	GroupSummary
	Snapshots []*model.PrioritySnapshot
	Actions   []*model.AdminAction
	Histories []*model.StatusHistory
}

// ListGroups returns all issue groups with their current priority,
// ordered by descending priority score
func (u *UseCases) ListGroups(ctx context.Context) ([]*GroupSummary, error) {
	groups, err := u.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*GroupSummary, 0, len(groups))
	for _, group := range groups {
		summary, err := u.summarize(ctx, group)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return priorityScore(summaries[i]) > priorityScore(summaries[j])
	})

	return summaries, nil
}

// GetGroupDetail returns one group with its priority history and
// audit trail
func (u *UseCases) GetGroupDetail(ctx context.Context, groupID types.GroupID) (*GroupDetail, error) {
	group, err := u.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summary, err := u.summarize(ctx, group)
	if err != nil {
		return nil, err
	}

	snapshots, err := u.repo.ListPrioritySnapshots(ctx, groupID)
	if err != nil {
		return nil, err
	}
	actions, err := u.repo.ListAdminActions(ctx, groupID)
	if err != nil {
		return nil, err
	}
	histories, err := u.repo.ListStatusHistories(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupDetail{
		GroupSummary: *summary,
		Snapshots:    snapshots,
		Actions:      actions,
		Histories:    histories,
	}, nil
}

func (u *UseCases) summarize(ctx context.Context, group *model.IssueGroup) (*GroupSummary, error) {
	summary := &GroupSummary{Group: group}

	count, err := u.repo.CountLinksByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	summary.ReportCount = count

	if group.AuthorityID != "" {
		authority, err := u.repo.GetAuthority(ctx, group.AuthorityID)
		if err != nil && !errors.Is(err, model.ErrAuthorityNotFound) {
			return nil, err
		}
		if authority != nil {
			summary.AuthorityName = authority.Name
		}
	}

	snapshot, err := u.repo.GetLatestPrioritySnapshot(ctx, group.ID)
	if err != nil && !errors.Is(err, model.ErrSnapshotNotFound) {
		return nil, err
	}
	summary.Priority = snapshot

	return summary, nil
}

func priorityScore(s *GroupSummary) float64 {
	if s.Priority == nil {
		return -1
	}
	return s.Priority.TotalScore
}
