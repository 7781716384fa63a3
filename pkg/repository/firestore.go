package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	reportsCollection         = "reports"
	classificationsCollection = "classifications"
	groupsCollection          = "issue_groups"
	activePairsCollection     = "active_pairs"
	linksCollection           = "report_links"
	samplesCollection         = "frequency_samples"
	snapshotsCollection       = "priority_snapshots"
	authoritiesCollection     = "authorities"
	locationsCollection       = "locations"
	actionsCollection         = "admin_actions"
	historiesCollection       = "status_histories"

	// Field names
	fieldGroupID = "GroupID"
	fieldName    = "Name"
)

// pairDoc is the uniqueness anchor for the aggregation race: one
// document per (category, location) pair, present while a non-resolved
// group holds the pair. Creating a group and claiming the pair happen
// in one transaction, which gives the insert-if-absent semantics the
// aggregation engine relies on.
type pairDoc struct {
	GroupID string
}

// Firestore implements Repository with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on credential problems; an empty collection is fine
	_, err = client.Collection(groupsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{client: client}, nil
}

// PutReport saves a report to Firestore
func (f *Firestore) PutReport(ctx context.Context, report *model.Report) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if report.ID == "" {
		return goerr.New("report ID is empty")
	}

	_, err := f.client.Collection(reportsCollection).Doc(report.ID.String()).Set(ctx, report)
	if err != nil {
		return goerr.Wrap(err, "failed to save report", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetReport retrieves a report by ID
func (f *Firestore) GetReport(ctx context.Context, id types.ReportID) (*model.Report, error) {
	if id == "" {
		return nil, goerr.New("report ID is empty")
	}

	doc, err := f.client.Collection(reportsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrReportNotFound, "failed to get report", goerr.V("reportID", id))
		}
		return nil, goerr.Wrap(err, "failed to get report from firestore", goerr.T(model.ErrTagPersistence))
	}

	var report model.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, goerr.Wrap(err, "failed to decode report")
	}
	return &report, nil
}

// UpsertClassification stores a classification keyed by report ID
func (f *Firestore) UpsertClassification(ctx context.Context, c *model.Classification) error {
	if c == nil {
		return goerr.New("classification is nil")
	}
	if c.ReportID == "" {
		return goerr.New("report ID is empty")
	}

	_, err := f.client.Collection(classificationsCollection).Doc(c.ReportID.String()).Set(ctx, c)
	if err != nil {
		return goerr.Wrap(err, "failed to save classification", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetClassification retrieves the classification of a report
func (f *Firestore) GetClassification(ctx context.Context, reportID types.ReportID) (*model.Classification, error) {
	if reportID == "" {
		return nil, goerr.New("report ID is empty")
	}

	doc, err := f.client.Collection(classificationsCollection).Doc(reportID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrClassificationNotFound, "failed to get classification", goerr.V("reportID", reportID))
		}
		return nil, goerr.Wrap(err, "failed to get classification from firestore", goerr.T(model.ErrTagPersistence))
	}

	var c model.Classification
	if err := doc.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode classification")
	}
	return &c, nil
}

// CreateGroup inserts a group and claims its pair document in one
// transaction. If another active group already holds the pair the
// transaction aborts with model.ErrOpenGroupExists.
func (f *Firestore) CreateGroup(ctx context.Context, group *model.IssueGroup) error {
	if group == nil {
		return goerr.New("group is nil")
	}
	if group.ID == "" {
		return goerr.New("group ID is empty")
	}

	pairRef := f.client.Collection(activePairsCollection).Doc(pairKey(group.CategoryID, group.LocationID))
	groupRef := f.client.Collection(groupsCollection).Doc(group.ID.String())

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Get(pairRef)
		if err == nil {
			var holder pairDoc
			if err := existing.DataTo(&holder); err != nil {
				return goerr.Wrap(err, "failed to decode pair document")
			}
			return goerr.Wrap(model.ErrOpenGroupExists, "pair is held by another group",
				goerr.V("holder", holder.GroupID))
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read pair document")
		}

		if err := tx.Set(groupRef, group); err != nil {
			return goerr.Wrap(err, "failed to save group")
		}
		if group.Status.AcceptsReports() {
			return tx.Set(pairRef, pairDoc{GroupID: group.ID.String()})
		}
		return nil
	})
	if err != nil {
		if isOpenGroupConflict(err) {
			return err
		}
		return goerr.Wrap(err, "failed to create group", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

func isOpenGroupConflict(err error) bool {
	return goerr.HasTag(err, model.ErrTagConflict)
}

// GetGroup retrieves a group by ID
func (f *Firestore) GetGroup(ctx context.Context, id types.GroupID) (*model.IssueGroup, error) {
	if id == "" {
		return nil, goerr.New("group ID is empty")
	}

	doc, err := f.client.Collection(groupsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrGroupNotFound, "failed to get group", goerr.V("groupID", id))
		}
		return nil, goerr.Wrap(err, "failed to get group from firestore", goerr.T(model.ErrTagPersistence))
	}

	var group model.IssueGroup
	if err := doc.DataTo(&group); err != nil {
		return nil, goerr.Wrap(err, "failed to decode group")
	}
	return &group, nil
}

// FindActiveGroup resolves the non-resolved group holding the pair via
// its pair document
func (f *Firestore) FindActiveGroup(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID) (*model.IssueGroup, error) {
	if categoryID == "" {
		return nil, goerr.New("category ID is empty")
	}
	if locationID == "" {
		return nil, goerr.New("location ID is empty")
	}

	doc, err := f.client.Collection(activePairsCollection).Doc(pairKey(categoryID, locationID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrGroupNotFound, "no active group for pair",
				goerr.V("category", categoryID),
				goerr.V("location", locationID))
		}
		return nil, goerr.Wrap(err, "failed to read pair document", goerr.T(model.ErrTagPersistence))
	}

	var holder pairDoc
	if err := doc.DataTo(&holder); err != nil {
		return nil, goerr.Wrap(err, "failed to decode pair document")
	}

	return f.GetGroup(ctx, types.GroupID(holder.GroupID))
}

// ListGroups retrieves all groups, newest first
func (f *Firestore) ListGroups(ctx context.Context) ([]*model.IssueGroup, error) {
	iter := f.client.Collection(groupsCollection).Documents(ctx)
	defer iter.Stop()

	var groups []*model.IssueGroup
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate groups", goerr.T(model.ErrTagPersistence))
		}

		var group model.IssueGroup
		if err := doc.DataTo(&group); err != nil {
			return nil, goerr.Wrap(err, "failed to decode group")
		}
		groups = append(groups, &group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	return groups, nil
}

// UpdateGroupStatus updates a group's status and maintains its pair
// document transactionally. Reopening a resolved group fails with
// model.ErrOpenGroupExists when another group has claimed the pair.
func (f *Firestore) UpdateGroupStatus(ctx context.Context, id types.GroupID, groupStatus types.GroupStatus) error {
	if id == "" {
		return goerr.New("group ID is empty")
	}
	if !groupStatus.IsValid() {
		return goerr.New("invalid status", goerr.V("status", groupStatus))
	}

	groupRef := f.client.Collection(groupsCollection).Doc(id.String())

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(groupRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrGroupNotFound, "failed to update group status", goerr.V("groupID", id))
			}
			return goerr.Wrap(err, "failed to read group")
		}

		var group model.IssueGroup
		if err := doc.DataTo(&group); err != nil {
			return goerr.Wrap(err, "failed to decode group")
		}

		pairRef := f.client.Collection(activePairsCollection).Doc(pairKey(group.CategoryID, group.LocationID))
		wasActive := group.Status.AcceptsReports()
		willBeActive := groupStatus.AcceptsReports()

		if !wasActive && willBeActive {
			existing, err := tx.Get(pairRef)
			if err == nil {
				var holder pairDoc
				if decodeErr := existing.DataTo(&holder); decodeErr != nil {
					return goerr.Wrap(decodeErr, "failed to decode pair document")
				}
				if holder.GroupID != id.String() {
					return goerr.Wrap(model.ErrOpenGroupExists, "pair has been claimed by another group",
						goerr.V("holder", holder.GroupID))
				}
			} else if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to read pair document")
			}
			if err := tx.Set(pairRef, pairDoc{GroupID: id.String()}); err != nil {
				return goerr.Wrap(err, "failed to claim pair")
			}
		}
		if wasActive && !willBeActive {
			if err := tx.Delete(pairRef); err != nil {
				return goerr.Wrap(err, "failed to release pair")
			}
		}

		return tx.Update(groupRef, []firestore.Update{
			{Path: "Status", Value: groupStatus.String()},
			{Path: "UpdatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if isOpenGroupConflict(err) || goerr.HasTag(err, model.ErrTagValidation) {
			return err
		}
		return goerr.Wrap(err, "failed to update group status", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// UpdateGroupAuthority reassigns the responsible authority of a group
func (f *Firestore) UpdateGroupAuthority(ctx context.Context, id types.GroupID, authorityID types.AuthorityID) error {
	if id == "" {
		return goerr.New("group ID is empty")
	}
	if authorityID == "" {
		return goerr.New("authority ID is empty")
	}

	_, err := f.client.Collection(groupsCollection).Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "AuthorityID", Value: authorityID.String()},
		{Path: "UpdatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrGroupNotFound, "failed to update group authority", goerr.V("groupID", id))
		}
		return goerr.Wrap(err, "failed to update group authority", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// CreateLink records a report's membership in a group
func (f *Firestore) CreateLink(ctx context.Context, link *model.ReportLink) error {
	if link == nil {
		return goerr.New("link is nil")
	}
	if link.ID == "" {
		return goerr.New("link ID is empty")
	}

	// Document ID is the report ID so a report can never hold two links
	_, err := f.client.Collection(linksCollection).Doc(link.ReportID.String()).Create(ctx, link)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.New("report is already linked", goerr.V("reportID", link.ReportID))
		}
		return goerr.Wrap(err, "failed to save link", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// listLinks fetches all links of a group. The query filters on
// equality only so no composite index is required; time filtering
// happens in memory.
func (f *Firestore) listLinks(ctx context.Context, groupID types.GroupID) ([]*model.ReportLink, error) {
	iter := f.client.Collection(linksCollection).
		Where(fieldGroupID, "==", groupID.String()).
		Documents(ctx)
	defer iter.Stop()

	var links []*model.ReportLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate links", goerr.T(model.ErrTagPersistence))
		}

		var link model.ReportLink
		if err := doc.DataTo(&link); err != nil {
			return nil, goerr.Wrap(err, "failed to decode link")
		}
		links = append(links, &link)
	}
	return links, nil
}

// CountLinksByGroup returns the total number of reports linked to a group
func (f *Firestore) CountLinksByGroup(ctx context.Context, groupID types.GroupID) (int, error) {
	if groupID == "" {
		return 0, goerr.New("group ID is empty")
	}

	links, err := f.listLinks(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return len(links), nil
}

// CountLinksInWindow counts links with linked-at in [from, to],
// inclusive on both ends
func (f *Firestore) CountLinksInWindow(ctx context.Context, groupID types.GroupID, from, to time.Time) (int, error) {
	if groupID == "" {
		return 0, goerr.New("group ID is empty")
	}

	links, err := f.listLinks(ctx, groupID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, link := range links {
		if !link.LinkedAt.Before(from) && !link.LinkedAt.After(to) {
			count++
		}
	}
	return count, nil
}

// AddFrequencySample appends a frequency sample
func (f *Firestore) AddFrequencySample(ctx context.Context, sample *model.FrequencySample) error {
	if sample == nil {
		return goerr.New("sample is nil")
	}
	if sample.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	_, err := f.client.Collection(samplesCollection).Doc(sample.ID.String()).Set(ctx, sample)
	if err != nil {
		return goerr.Wrap(err, "failed to save frequency sample", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetLatestFrequencySample returns the most recently computed sample
func (f *Firestore) GetLatestFrequencySample(ctx context.Context, groupID types.GroupID) (*model.FrequencySample, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	iter := f.client.Collection(samplesCollection).
		Where(fieldGroupID, "==", groupID.String()).
		Documents(ctx)
	defer iter.Stop()

	var latest *model.FrequencySample
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate samples", goerr.T(model.ErrTagPersistence))
		}

		var sample model.FrequencySample
		if err := doc.DataTo(&sample); err != nil {
			return nil, goerr.Wrap(err, "failed to decode sample")
		}
		if latest == nil || sample.ComputedAt.After(latest.ComputedAt) {
			s := sample
			latest = &s
		}
	}

	if latest == nil {
		return nil, goerr.Wrap(model.ErrSampleNotFound, "no frequency sample for group", goerr.V("groupID", groupID))
	}
	return latest, nil
}

// AddPrioritySnapshot appends a priority snapshot
func (f *Firestore) AddPrioritySnapshot(ctx context.Context, snapshot *model.PrioritySnapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}
	if snapshot.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	_, err := f.client.Collection(snapshotsCollection).Doc(snapshot.ID.String()).Set(ctx, snapshot)
	if err != nil {
		return goerr.Wrap(err, "failed to save priority snapshot", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetLatestPrioritySnapshot returns the current priority of a group
func (f *Firestore) GetLatestPrioritySnapshot(ctx context.Context, groupID types.GroupID) (*model.PrioritySnapshot, error) {
	snapshots, err := f.ListPrioritySnapshots(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, goerr.Wrap(model.ErrSnapshotNotFound, "no priority snapshot for group", goerr.V("groupID", groupID))
	}
	return snapshots[len(snapshots)-1], nil
}

// ListPrioritySnapshots returns the priority history of a group,
// oldest first
func (f *Firestore) ListPrioritySnapshots(ctx context.Context, groupID types.GroupID) ([]*model.PrioritySnapshot, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	iter := f.client.Collection(snapshotsCollection).
		Where(fieldGroupID, "==", groupID.String()).
		Documents(ctx)
	defer iter.Stop()

	var snapshots []*model.PrioritySnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate snapshots", goerr.T(model.ErrTagPersistence))
		}

		var snapshot model.PrioritySnapshot
		if err := doc.DataTo(&snapshot); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snapshot")
		}
		snapshots = append(snapshots, &snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ComputedAt.Before(snapshots[j].ComputedAt)
	})

	return snapshots, nil
}

// PutAuthority saves an authority record
func (f *Firestore) PutAuthority(ctx context.Context, authority *model.Authority) error {
	if authority == nil {
		return goerr.New("authority is nil")
	}
	if err := authority.Validate(); err != nil {
		return goerr.Wrap(err, "invalid authority")
	}

	_, err := f.client.Collection(authoritiesCollection).Doc(authority.ID.String()).Set(ctx, authority)
	if err != nil {
		return goerr.Wrap(err, "failed to save authority", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetAuthority retrieves an authority by ID
func (f *Firestore) GetAuthority(ctx context.Context, id types.AuthorityID) (*model.Authority, error) {
	if id == "" {
		return nil, goerr.New("authority ID is empty")
	}

	doc, err := f.client.Collection(authoritiesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrAuthorityNotFound, "failed to get authority", goerr.V("authorityID", id))
		}
		return nil, goerr.Wrap(err, "failed to get authority from firestore", goerr.T(model.ErrTagPersistence))
	}

	var authority model.Authority
	if err := doc.DataTo(&authority); err != nil {
		return nil, goerr.Wrap(err, "failed to decode authority")
	}
	return &authority, nil
}

// GetAuthorityByName retrieves an authority by its display name
func (f *Firestore) GetAuthorityByName(ctx context.Context, name string) (*model.Authority, error) {
	if name == "" {
		return nil, goerr.New("authority name is empty")
	}

	iter := f.client.Collection(authoritiesCollection).
		Where(fieldName, "==", name).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrAuthorityNotFound, "no authority with name", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query authority by name", goerr.T(model.ErrTagPersistence))
	}

	var authority model.Authority
	if err := doc.DataTo(&authority); err != nil {
		return nil, goerr.Wrap(err, "failed to decode authority")
	}
	return &authority, nil
}

// ListAuthorities retrieves all authority records
func (f *Firestore) ListAuthorities(ctx context.Context) ([]*model.Authority, error) {
	iter := f.client.Collection(authoritiesCollection).Documents(ctx)
	defer iter.Stop()

	var authorities []*model.Authority
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate authorities", goerr.T(model.ErrTagPersistence))
		}

		var authority model.Authority
		if err := doc.DataTo(&authority); err != nil {
			return nil, goerr.Wrap(err, "failed to decode authority")
		}
		authorities = append(authorities, &authority)
	}

	sort.Slice(authorities, func(i, j int) bool {
		return authorities[i].Name < authorities[j].Name
	})

	return authorities, nil
}

// PutLocation saves a location record
func (f *Firestore) PutLocation(ctx context.Context, location *model.Location) error {
	if location == nil {
		return goerr.New("location is nil")
	}
	if err := location.Validate(); err != nil {
		return goerr.Wrap(err, "invalid location")
	}

	_, err := f.client.Collection(locationsCollection).Doc(location.ID.String()).Set(ctx, location)
	if err != nil {
		return goerr.Wrap(err, "failed to save location", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// GetLocation retrieves a location by ID
func (f *Firestore) GetLocation(ctx context.Context, id types.LocationID) (*model.Location, error) {
	if id == "" {
		return nil, goerr.New("location ID is empty")
	}

	doc, err := f.client.Collection(locationsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("location not found", goerr.V("locationID", id))
		}
		return nil, goerr.Wrap(err, "failed to get location from firestore", goerr.T(model.ErrTagPersistence))
	}

	var location model.Location
	if err := doc.DataTo(&location); err != nil {
		return nil, goerr.Wrap(err, "failed to decode location")
	}
	return &location, nil
}

// AddAdminAction appends an admin action to the audit trail
func (f *Firestore) AddAdminAction(ctx context.Context, action *model.AdminAction) error {
	if action == nil {
		return goerr.New("action is nil")
	}
	if action.GroupID == "" {
		return goerr.New("group ID is empty")
	}

	_, err := f.client.Collection(actionsCollection).Doc(action.ID.String()).Set(ctx, action)
	if err != nil {
		return goerr.Wrap(err, "failed to save admin action", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// ListAdminActions retrieves the audit trail for a group, oldest first
func (f *Firestore) ListAdminActions(ctx context.Context, groupID types.GroupID) ([]*model.AdminAction, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	iter := f.client.Collection(actionsCollection).
		Where(fieldGroupID, "==", groupID.String()).
		Documents(ctx)
	defer iter.Stop()

	var actions []*model.AdminAction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate admin actions", goerr.T(model.ErrTagPersistence))
		}

		var action model.AdminAction
		if err := doc.DataTo(&action); err != nil {
			return nil, goerr.Wrap(err, "failed to decode admin action")
		}
		actions = append(actions, &action)
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})

	return actions, nil
}

// AddStatusHistory appends a status transition record
func (f *Firestore) AddStatusHistory(ctx context.Context, history *model.StatusHistory) error {
	if history == nil {
		return goerr.New("status history is nil")
	}
	if err := history.Validate(); err != nil {
		return goerr.Wrap(err, "invalid status history")
	}

	ref := f.client.Collection(historiesCollection).NewDoc()
	_, err := ref.Set(ctx, history)
	if err != nil {
		return goerr.Wrap(err, "failed to save status history", goerr.T(model.ErrTagPersistence))
	}
	return nil
}

// ListStatusHistories retrieves status transitions for a group, oldest first
func (f *Firestore) ListStatusHistories(ctx context.Context, groupID types.GroupID) ([]*model.StatusHistory, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is empty")
	}

	iter := f.client.Collection(historiesCollection).
		Where(fieldGroupID, "==", groupID.String()).
		Documents(ctx)
	defer iter.Stop()

	var histories []*model.StatusHistory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate status histories", goerr.T(model.ErrTagPersistence))
		}

		var history model.StatusHistory
		if err := doc.DataTo(&history); err != nil {
			return nil, goerr.Wrap(err, "failed to decode status history")
		}
		histories = append(histories, &history)
	}

	sort.Slice(histories, func(i, j int) bool {
		return histories[i].ChangedAt.Before(histories[j].ChangedAt)
	})

	return histories, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

var _ interfaces.Repository = (*Firestore)(nil) // Compile-time interface check
