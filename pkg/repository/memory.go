package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Memory implements Repository with in-memory storage. It enforces
// the same at-most-one-active-group-per-pair guarantee as the
// Firestore repository, so the aggregation engine behaves identically
// against both.
type Memory struct {
	mu              sync.RWMutex
	reports         map[types.ReportID]*model.Report
	classifications map[types.ReportID]*model.Classification
	groups          map[types.GroupID]*model.IssueGroup
	activePairs     map[string]types.GroupID
	links           map[types.GroupID][]*model.ReportLink
	linkedReports   map[types.ReportID]types.LinkID
	samples         map[types.GroupID][]*model.FrequencySample
	snapshots       map[types.GroupID][]*model.PrioritySnapshot
	authorities     map[types.AuthorityID]*model.Authority
	locations       map[types.LocationID]*model.Location
	actions         map[types.GroupID][]*model.AdminAction
	histories       map[types.GroupID][]*model.StatusHistory
}

// NewMemory creates a new memory repository
func NewMemory() *Memory {
	return &Memory{
		reports:         make(map[types.ReportID]*model.Report),
		classifications: make(map[types.ReportID]*model.Classification),
		groups:          make(map[types.GroupID]*model.IssueGroup),
		activePairs:     make(map[string]types.GroupID),
		links:           make(map[types.GroupID][]*model.ReportLink),
		linkedReports:   make(map[types.ReportID]types.LinkID),
		samples:         make(map[types.GroupID][]*model.FrequencySample),
		snapshots:       make(map[types.GroupID][]*model.PrioritySnapshot),
		authorities:     make(map[types.AuthorityID]*model.Authority),
		locations:       make(map[types.LocationID]*model.Location),
		actions:         make(map[types.GroupID][]*model.AdminAction),
		histories:       make(map[types.GroupID][]*model.StatusHistory),
	}
}

func pairKey(categoryID types.CategoryID, locationID types.LocationID) string {
	return categoryID.String() + "|" + locationID.String()
}

// PutReport saves a report
func (m *Memory) PutReport(ctx context.Context, report *model.Report) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if report.ID == "" {
		return goerr.New("report ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reportCopy := *report
	m.reports[report.ID] = &reportCopy
	return nil
}

// GetReport retrieves a report by ID
func (m *Memory) GetReport(ctx context.Context, id types.ReportID) (*model.Report, error) {
	if id == "" {
		return nil, goerr.New("report ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	report, exists := m.reports[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrReportNotFound, "failed to get report", goerr.V("reportID", id))
	}

	reportCopy := *report
	return &reportCopy, nil
}

// UpsertClassification stores a classification keyed by report ID,
// replacing any previous record for the same report
func (m *Memory) UpsertClassification(ctx context.Context, c *model.Classification) error {
	if c == nil {
		return goerr.New("classification is nil")
	}
	if c.ReportID == "" {
		return goerr.New("report ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	classificationCopy := *c
	m.classifications[c.ReportID] = &classificationCopy
	return nil
}

// GetClassification retrieves the classification of a report
func (m *Memory) GetClassification(ctx context.Context, reportID types.ReportID) (*model.Classification, error) {
	if reportID == "" {
		return nil, goerr.New("report ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.classifications[reportID]
	if !exists {
		return nil, goerr.Wrap(model.ErrClassificationNotFound, "failed to get classification", goerr.V("reportID", reportID))
	}

	classificationCopy := *c
	return &classificationCopy, nil
}

// CreateGroup inserts a group if no active group holds its pair.
// Returns model.ErrOpenGroupExists on conflict so the aggregation
// engine can re-query and link to the winner.
func (m *Memory) CreateGroup(ctx context.Context, group *model.IssueGroup) error {
	if group == nil {
		return goerr.New("group is nil")
	}
	if group.ID == "" {
		return goerr.New("group ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(group.CategoryID, group.LocationID)
	if holder, occupied := m.activePairs[key]; occupied {
		return goerr.Wrap(model.ErrOpenGroupExists, "pair is held by another group",
			goerr.V("pair", key),
			goerr.V("holder", holder))
	}

	groupCopy := *group
	m.groups[group.ID] = &groupCopy
	if group.Status.AcceptsReports() {
		m.activePairs[key] = group.ID
	}
	return nil
}

// GetGroup retrieves a group by ID
func (m *Memory) GetGroup(ctx context.Context, id types.GroupID) (*model.IssueGroup, error) {
	if id == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrGroupNotFound, "failed to get group", goerr.V("groupID", id))
	}

	groupCopy := *group
	return &groupCopy, nil
}

// FindActiveGroup looks up the non-resolved group holding the pair
func (m *Memory) FindActiveGroup(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID) (*model.IssueGroup, error) {
	if categoryID == "" {
		return nil, goerr.New("category ID is empty")
	}
	if locationID == "" {
		return nil, goerr.New("location ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	groupID, exists := m.activePairs[pairKey(categoryID, locationID)]
	if !exists {
		return nil, goerr.Wrap(model.ErrGroupNotFound, "no active group for pair",
			goerr.V("category", categoryID),
			goerr.V("location", locationID))
	}

	group := m.groups[groupID]
	groupCopy := *group
	return &groupCopy, nil
}

// ListGroups retrieves all groups, newest first
func (m *Memory) ListGroups(ctx context.Context) ([]*model.IssueGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := make([]*model.IssueGroup, 0, len(m.groups))
	for _, group := range m.groups {
		groupCopy := *group
		groups = append(groups, &groupCopy)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	return groups, nil
}

// UpdateGroupStatus updates a group's status, maintaining the active
// pair index. Reopening fails with model.ErrOpenGroupExists when a
// different group has since claimed the pair.
func (m *Memory) UpdateGroupStatus(ctx context.Context, id types.GroupID, status types.GroupStatus) error {
	if id == "" {
		return goerr.New("group ID is empty")
	}
	if !status.IsValid() {
		return goerr.New("invalid status", goerr.V("status", status))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	group, exists := m.groups[id]
	if !exists {
		return goerr.Wrap(model.ErrGroupNotFound, "failed to update group status", goerr.V("groupID", id))
	}

	key := pairKey(group.CategoryID, group.LocationID)
	wasActive := group.Status.AcceptsReports()
	willBeActive := status.AcceptsReports()

	if !wasActive && willBeActive {
		if holder, occupied := m.activePairs[key]; occupied && holder != id {
			return goerr.Wrap(model.ErrOpenGroupExists, "pair has been claimed by another group",
				goerr.V("pair", key),
				goerr.V("holder", holder))
		}
		m.activePairs[key] = id
	}
	if wasActive && !willBeActive {
		delete(m.activePairs, key)
	}

	group.Status = status
	group.UpdatedAt = time.Now()
	return nil
}

// UpdateGroupAuthority reassigns the responsible authority of a group
func (m *Memory) UpdateGroupAuthority(ctx context.Context, id types.GroupID, authorityID types.AuthorityID) error {
	if id == "" {
		return goerr.New("group ID is empty")
	}
	if authorityID == "" {
		return goerr.New("authority ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	group, exists := m.groups[id]
	if !exists {
		return goerr.Wrap(model.ErrGroupNotFound, "failed to update group authority", goerr.V("groupID", id))
	}

	group.AuthorityID = authorityID
	group.UpdatedAt = time.Now()
	return nil
}

// CreateLink records a report's membership in a group. A report holds
// exactly one link for its lifetime.
func (m *Memory) CreateLink(ctx context.Context, link *model.ReportLink) error {
	if link == nil {
		return goerr.New("link is nil")
	}
	if link.ID == "" {
		return goerr.New("link ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, linked := m.linkedReports[link.ReportID]; linked {
		return goerr.New("report is already linked",
			goerr.V("reportID", link.ReportID),
			goerr.V("linkID", existing))
	}

	linkCopy := *link
	m.links[link.GroupID] = append(m.links[link.GroupID], &linkCopy)
	m.linkedReports[link.ReportID] = link.ID
	return nil
}

// CountLinksByGroup returns the total number of reports linked to a group
func (m *Memory) CountLinksByGroup(ctx context.Context, groupID types.GroupID) (int, error) {
	if groupID == "" {
		return 0, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.links[groupID]), nil
}

// CountLinksInWindow counts links with linked-at in [from, to],
// inclusive on both ends
func (m *Memory) CountLinksInWindow(ctx context.Context, groupID types.GroupID, from, to time.Time) (int, error) {
	if groupID == "" {
		return 0, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, link := range m.links[groupID] {
		if !link.LinkedAt.Before(from) && !link.LinkedAt.After(to) {
			count++
		}
	}
	return count, nil
}

// AddFrequencySample appends a frequency sample
func (m *Memory) AddFrequencySample(ctx context.Context, sample *model.FrequencySample) error {
	if sample == nil {
		return goerr.New("sample is nil")
	}
	if sample.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sampleCopy := *sample
	m.samples[sample.GroupID] = append(m.samples[sample.GroupID], &sampleCopy)
	return nil
}

// GetLatestFrequencySample returns the most recently computed sample
func (m *Memory) GetLatestFrequencySample(ctx context.Context, groupID types.GroupID) (*model.FrequencySample, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := m.samples[groupID]
	if len(samples) == 0 {
		return nil, goerr.Wrap(model.ErrSampleNotFound, "no frequency sample for group", goerr.V("groupID", groupID))
	}

	latest := samples[0]
	for _, sample := range samples[1:] {
		if sample.ComputedAt.After(latest.ComputedAt) {
			latest = sample
		}
	}

	sampleCopy := *latest
	return &sampleCopy, nil
}

// AddPrioritySnapshot appends a priority snapshot to the group history
func (m *Memory) AddPrioritySnapshot(ctx context.Context, snapshot *model.PrioritySnapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}
	if snapshot.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshotCopy := *snapshot
	if snapshot.Components != nil {
		components := *snapshot.Components
		snapshotCopy.Components = &components
	}
	m.snapshots[snapshot.GroupID] = append(m.snapshots[snapshot.GroupID], &snapshotCopy)
	return nil
}

// GetLatestPrioritySnapshot returns the current priority of a group
func (m *Memory) GetLatestPrioritySnapshot(ctx context.Context, groupID types.GroupID) (*model.PrioritySnapshot, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := m.snapshots[groupID]
	if len(snapshots) == 0 {
		return nil, goerr.Wrap(model.ErrSnapshotNotFound, "no priority snapshot for group", goerr.V("groupID", groupID))
	}

	latest := snapshots[0]
	for _, snapshot := range snapshots[1:] {
		if snapshot.ComputedAt.After(latest.ComputedAt) {
			latest = snapshot
		}
	}

	return copySnapshot(latest), nil
}

// ListPrioritySnapshots returns the full priority history of a group,
// oldest first
func (m *Memory) ListPrioritySnapshots(ctx context.Context, groupID types.GroupID) ([]*model.PrioritySnapshot, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]*model.PrioritySnapshot, 0, len(m.snapshots[groupID]))
	for _, snapshot := range m.snapshots[groupID] {
		snapshots = append(snapshots, copySnapshot(snapshot))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ComputedAt.Before(snapshots[j].ComputedAt)
	})

	return snapshots, nil
}

func copySnapshot(snapshot *model.PrioritySnapshot) *model.PrioritySnapshot {
	snapshotCopy := *snapshot
	if snapshot.Components != nil {
		components := *snapshot.Components
		snapshotCopy.Components = &components
	}
	return &snapshotCopy
}

// PutAuthority saves an authority record
func (m *Memory) PutAuthority(ctx context.Context, authority *model.Authority) error {
	if authority == nil {
		return goerr.New("authority is nil")
	}
	if err := authority.Validate(); err != nil {
		return goerr.Wrap(err, "invalid authority")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	authorityCopy := *authority
	m.authorities[authority.ID] = &authorityCopy
	return nil
}

// GetAuthority retrieves an authority by ID
func (m *Memory) GetAuthority(ctx context.Context, id types.AuthorityID) (*model.Authority, error) {
	if id == "" {
		return nil, goerr.New("authority ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	authority, exists := m.authorities[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrAuthorityNotFound, "failed to get authority", goerr.V("authorityID", id))
	}

	authorityCopy := *authority
	return &authorityCopy, nil
}

// GetAuthorityByName retrieves an authority by its display name
func (m *Memory) GetAuthorityByName(ctx context.Context, name string) (*model.Authority, error) {
	if name == "" {
		return nil, goerr.New("authority name is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, authority := range m.authorities {
		if authority.Name == name {
			authorityCopy := *authority
			return &authorityCopy, nil
		}
	}

	return nil, goerr.Wrap(model.ErrAuthorityNotFound, "no authority with name", goerr.V("name", name))
}

// ListAuthorities retrieves all authority records
func (m *Memory) ListAuthorities(ctx context.Context) ([]*model.Authority, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	authorities := make([]*model.Authority, 0, len(m.authorities))
	for _, authority := range m.authorities {
		authorityCopy := *authority
		authorities = append(authorities, &authorityCopy)
	}

	sort.Slice(authorities, func(i, j int) bool {
		return authorities[i].Name < authorities[j].Name
	})

	return authorities, nil
}

// PutLocation saves a location record
func (m *Memory) PutLocation(ctx context.Context, location *model.Location) error {
	if location == nil {
		return goerr.New("location is nil")
	}
	if err := location.Validate(); err != nil {
		return goerr.Wrap(err, "invalid location")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	locationCopy := *location
	m.locations[location.ID] = &locationCopy
	return nil
}

// GetLocation retrieves a location by ID
func (m *Memory) GetLocation(ctx context.Context, id types.LocationID) (*model.Location, error) {
	if id == "" {
		return nil, goerr.New("location ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	location, exists := m.locations[id]
	if !exists {
		return nil, goerr.New("location not found", goerr.V("locationID", id))
	}

	locationCopy := *location
	return &locationCopy, nil
}

// AddAdminAction appends an admin action to the audit trail
func (m *Memory) AddAdminAction(ctx context.Context, action *model.AdminAction) error {
	if action == nil {
		return goerr.New("action is nil")
	}
	if action.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	actionCopy := *action
	m.actions[action.GroupID] = append(m.actions[action.GroupID], &actionCopy)
	return nil
}

// ListAdminActions retrieves the audit trail for a group, oldest first
func (m *Memory) ListAdminActions(ctx context.Context, groupID types.GroupID) ([]*model.AdminAction, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]*model.AdminAction, 0, len(m.actions[groupID]))
	for _, action := range m.actions[groupID] {
		actionCopy := *action
		actions = append(actions, &actionCopy)
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})

	return actions, nil
}

// AddStatusHistory appends a status transition record
func (m *Memory) AddStatusHistory(ctx context.Context, history *model.StatusHistory) error {
	if history == nil {
		return goerr.New("status history is nil")
	}
	if err := history.Validate(); err != nil {
		return goerr.Wrap(err, "invalid status history")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	historyCopy := *history
	m.histories[history.GroupID] = append(m.histories[history.GroupID], &historyCopy)
	return nil
}

// ListStatusHistories retrieves status transitions for a group, oldest first
func (m *Memory) ListStatusHistories(ctx context.Context, groupID types.GroupID) ([]*model.StatusHistory, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	histories := make([]*model.StatusHistory, 0, len(m.histories[groupID]))
	for _, history := range m.histories[groupID] {
		historyCopy := *history
		histories = append(histories, &historyCopy)
	}

	sort.Slice(histories, func(i, j int) bool {
		return histories[i].ChangedAt.Before(histories[j].ChangedAt)
	})

	return histories, nil
}

// Close does nothing for the memory repository
func (m *Memory) Close() error {
	return nil
}

var _ interfaces.Repository = (*Memory)(nil) // Compile-time interface check
