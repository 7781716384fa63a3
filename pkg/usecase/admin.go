package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// AssignAuthority reassigns the responsible authority of a group and
// records the action in the audit trail
func (u *UseCases) AssignAuthority(ctx context.Context, groupID types.GroupID, authorityID types.AuthorityID, actor string) error {
	authority, err := u.repo.GetAuthority(ctx, authorityID)
	if err != nil {
		return err
	}

	if _, err := u.repo.GetGroup(ctx, groupID); err != nil {
		return err
	}

	if err := u.repo.UpdateGroupAuthority(ctx, groupID, authorityID); err != nil {
		return err
	}

	if err := u.audit(ctx, groupID, model.AdminActionAssignAuthority, actor,
		fmt.Sprintf("assigned to %s", authority.Name)); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Authority reassigned",
		"groupID", groupID,
		"authority", authority.Name,
		"actor", actor,
	)
	return nil
}

// ChangeStatus transitions a group's status and records the
// transition. Reopening a resolved group goes through Reopen so that
// the pair uniqueness check applies.
func (u *UseCases) ChangeStatus(ctx context.Context, groupID types.GroupID, status types.GroupStatus, actor, note string) error {
	if !status.IsValid() {
		return goerr.New("invalid status", goerr.T(model.ErrTagValidation), goerr.V("status", status))
	}

	group, err := u.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status == status {
		return nil
	}
	if group.Status == types.GroupStatusResolved && status.AcceptsReports() {
		return u.Reopen(ctx, groupID, actor)
	}

	if err := u.repo.UpdateGroupStatus(ctx, groupID, status); err != nil {
		return err
	}

	if err := u.recordStatusChange(ctx, groupID, status, actor, note); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Group status changed",
		"groupID", groupID,
		"from", group.Status,
		"to", status,
		"actor", actor,
	)
	return nil
}

// Reopen transitions a resolved group back to open. The group becomes
// the active group of its (category, location) pair again; the
// transition fails with model.ErrOpenGroupExists if a newer group has
// claimed the pair since resolution.
func (u *UseCases) Reopen(ctx context.Context, groupID types.GroupID, actor string) error {
	group, err := u.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status != types.GroupStatusResolved {
		return goerr.New("only resolved groups can be reopened",
			goerr.T(model.ErrTagValidation),
			goerr.V("groupID", groupID),
			goerr.V("status", group.Status))
	}

	if err := u.repo.UpdateGroupStatus(ctx, groupID, types.GroupStatusOpen); err != nil {
		return err
	}

	if err := u.recordStatusChange(ctx, groupID, types.GroupStatusOpen, actor, "reopened"); err != nil {
		return err
	}
	if err := u.audit(ctx, groupID, model.AdminActionReopen, actor, ""); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Group reopened", "groupID", groupID, "actor", actor)
	return nil
}

// OverridePriority appends an administrator-authored priority snapshot.
// The override becomes the current priority until the next computed
// snapshot replaces it.
func (u *UseCases) OverridePriority(ctx context.Context, groupID types.GroupID, score float64, reason, actor string) (*model.PrioritySnapshot, error) {
	if _, err := u.repo.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	snapshot, err := model.NewManualPrioritySnapshot(groupID, score, reason, actor)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid priority override", goerr.T(model.ErrTagValidation))
	}

	if err := u.repo.AddPrioritySnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := u.audit(ctx, groupID, model.AdminActionOverridePriority, actor,
		fmt.Sprintf("score set to %.2f: %s", score, reason)); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Priority overridden",
		"groupID", groupID,
		"score", score,
		"actor", actor,
	)
	return snapshot, nil
}

func (u *UseCases) audit(ctx context.Context, groupID types.GroupID, kind model.AdminActionKind, actor, detail string) error {
	action, err := model.NewAdminAction(groupID, kind, actor, detail)
	if err != nil {
		return err
	}
	return u.repo.AddAdminAction(ctx, action)
}

func (u *UseCases) recordStatusChange(ctx context.Context, groupID types.GroupID, status types.GroupStatus, actor, note string) error {
	history := &model.StatusHistory{
		GroupID:   groupID,
		Status:    status,
		ChangedBy: actor,
		ChangedAt: time.Now(),
		Note:      note,
	}
	if err := u.repo.AddStatusHistory(ctx, history); err != nil {
		return err
	}
	return u.audit(ctx, groupID, model.AdminActionChangeStatus, actor,
		fmt.Sprintf("status set to %s", status))
}
