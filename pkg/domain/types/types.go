package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ReportID represents a raw report identifier
type ReportID string

// String returns the string representation
func (id ReportID) String() string {
	return string(id)
}

// NewReportID creates a new ReportID
func NewReportID() ReportID {
	return ReportID(fmt.Sprintf("rpt-%s", uuid.New().String()))
}

// GroupID represents an issue group identifier
type GroupID string

// String returns the string representation
func (id GroupID) String() string {
	return string(id)
}

// NewGroupID creates a new GroupID
func NewGroupID() GroupID {
	return GroupID(fmt.Sprintf("grp-%s", uuid.New().String()))
}

// LinkID represents a report-to-group link identifier
type LinkID string

// String returns the string representation
func (id LinkID) String() string {
	return string(id)
}

// NewLinkID creates a new LinkID
func NewLinkID() LinkID {
	return LinkID(fmt.Sprintf("lnk-%s", uuid.New().String()))
}

// SnapshotID represents a priority snapshot identifier
type SnapshotID string

// String returns the string representation
func (id SnapshotID) String() string {
	return string(id)
}

// NewSnapshotID creates a new SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID(fmt.Sprintf("snp-%s", uuid.New().String()))
}

// SampleID represents a frequency sample identifier
type SampleID string

// String returns the string representation
func (id SampleID) String() string {
	return string(id)
}

// NewSampleID creates a new SampleID
func NewSampleID() SampleID {
	return SampleID(fmt.Sprintf("frq-%s", uuid.New().String()))
}

// SubmissionID identifies one pipeline invocation and its event stream
type SubmissionID string

// String returns the string representation
func (id SubmissionID) String() string {
	return string(id)
}

// NewSubmissionID creates a new SubmissionID
func NewSubmissionID() SubmissionID {
	return SubmissionID(fmt.Sprintf("sub-%s", uuid.New().String()))
}

// ActionID represents an admin action identifier
type ActionID string

// String returns the string representation
func (id ActionID) String() string {
	return string(id)
}

// NewActionID creates a new ActionID
func NewActionID() ActionID {
	return ActionID(fmt.Sprintf("act-%s", uuid.New().String()))
}

// AuthorityID represents a responsible authority identifier
type AuthorityID string

// String returns the string representation
func (id AuthorityID) String() string {
	return string(id)
}

// CategoryID represents a report category identifier
type CategoryID string

// String returns the string representation
func (id CategoryID) String() string {
	return string(id)
}

// LocationID represents a campus location identifier
type LocationID string

// String returns the string representation
func (id LocationID) String() string {
	return string(id)
}

// SubmitterID represents an anonymized submitter reference
type SubmitterID string

// String returns the string representation
func (id SubmitterID) String() string {
	return string(id)
}

// LocationKind classifies a location for routing purposes
type LocationKind string

const (
	LocationKindHostel    LocationKind = "hostel"
	LocationKindClassroom LocationKind = "classroom"
	LocationKindLab       LocationKind = "lab"
	LocationKindLibrary   LocationKind = "library"
	LocationKindOffice    LocationKind = "office"
	LocationKindOutdoor   LocationKind = "outdoor"
)

// String returns the string representation
func (k LocationKind) String() string {
	return string(k)
}
