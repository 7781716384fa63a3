package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// IssueGroup is the deduplicated, trackable unit that one or more raw
// reports are merged into. At most one non-resolved group exists per
// (category, location) pair at any instant; the repository enforces
// this with an insert-if-absent guarantee.
type IssueGroup struct {
	ID          types.GroupID
	CategoryID  types.CategoryID
	LocationID  types.LocationID
	AuthorityID types.AuthorityID
	Status      types.GroupStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewIssueGroup creates a new open IssueGroup for a (category, location) pair
func NewIssueGroup(categoryID types.CategoryID, locationID types.LocationID, authorityID types.AuthorityID) (*IssueGroup, error) {
	if categoryID == "" {
		return nil, goerr.New("category ID is required")
	}
	if locationID == "" {
		return nil, goerr.New("location ID is required")
	}

	now := time.Now()
	return &IssueGroup{
		ID:          types.NewGroupID(),
		CategoryID:  categoryID,
		LocationID:  locationID,
		AuthorityID: authorityID,
		Status:      types.GroupStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ReportLink records the membership of one report in one issue group.
// Exactly one link exists per report for its whole lifetime.
type ReportLink struct {
	ID       types.LinkID
	ReportID types.ReportID
	GroupID  types.GroupID
	LinkedAt time.Time
}

// NewReportLink creates a link from a report to its group
func NewReportLink(reportID types.ReportID, groupID types.GroupID) (*ReportLink, error) {
	if reportID == "" {
		return nil, goerr.New("report ID is required")
	}
	if groupID == "" {
		return nil, goerr.New("group ID is required")
	}

	return &ReportLink{
		ID:       types.NewLinkID(),
		ReportID: reportID,
		GroupID:  groupID,
		LinkedAt: time.Now(),
	}, nil
}
