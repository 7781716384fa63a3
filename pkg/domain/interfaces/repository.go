package interfaces

import (
	"context"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// Repository defines the persistence contract of the triage core.
// All cross-invocation state lives behind this interface; pipeline
// invocations share no in-process mutable state.
type Repository interface {
	// Report operations
	PutReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, id types.ReportID) (*model.Report, error)

	// Classification operations. Upsert is keyed by report ID so a
	// re-triage replaces the previous record.
	UpsertClassification(ctx context.Context, c *model.Classification) error
	GetClassification(ctx context.Context, reportID types.ReportID) (*model.Classification, error)

	// Issue group operations. CreateGroup is insert-if-absent over the
	// (category, location) pair filtered to non-resolved groups: it
	// returns model.ErrOpenGroupExists when another active group holds
	// the pair. This is the only synchronization point of the system.
	CreateGroup(ctx context.Context, group *model.IssueGroup) error
	GetGroup(ctx context.Context, id types.GroupID) (*model.IssueGroup, error)
	FindActiveGroup(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID) (*model.IssueGroup, error)
	ListGroups(ctx context.Context) ([]*model.IssueGroup, error)
	UpdateGroupStatus(ctx context.Context, id types.GroupID, status types.GroupStatus) error
	UpdateGroupAuthority(ctx context.Context, id types.GroupID, authorityID types.AuthorityID) error

	// Link operations
	CreateLink(ctx context.Context, link *model.ReportLink) error
	CountLinksByGroup(ctx context.Context, groupID types.GroupID) (int, error)
	CountLinksInWindow(ctx context.Context, groupID types.GroupID, from, to time.Time) (int, error)

	// Frequency sample operations
	AddFrequencySample(ctx context.Context, sample *model.FrequencySample) error
	GetLatestFrequencySample(ctx context.Context, groupID types.GroupID) (*model.FrequencySample, error)

	// Priority snapshot operations (append-only history)
	AddPrioritySnapshot(ctx context.Context, snapshot *model.PrioritySnapshot) error
	GetLatestPrioritySnapshot(ctx context.Context, groupID types.GroupID) (*model.PrioritySnapshot, error)
	ListPrioritySnapshots(ctx context.Context, groupID types.GroupID) ([]*model.PrioritySnapshot, error)

	// Authority directory (read-mostly)
	PutAuthority(ctx context.Context, authority *model.Authority) error
	GetAuthority(ctx context.Context, id types.AuthorityID) (*model.Authority, error)
	GetAuthorityByName(ctx context.Context, name string) (*model.Authority, error)
	ListAuthorities(ctx context.Context) ([]*model.Authority, error)

	// Location directory
	PutLocation(ctx context.Context, location *model.Location) error
	GetLocation(ctx context.Context, id types.LocationID) (*model.Location, error)

	// Admin audit trail
	AddAdminAction(ctx context.Context, action *model.AdminAction) error
	ListAdminActions(ctx context.Context, groupID types.GroupID) ([]*model.AdminAction, error)
	AddStatusHistory(ctx context.Context, history *model.StatusHistory) error
	ListStatusHistories(ctx context.Context, groupID types.GroupID) ([]*model.StatusHistory, error)

	// Close closes the repository connection
	Close() error
}
