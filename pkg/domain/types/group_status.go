package types

// GroupStatus represents the lifecycle status of an issue group
type GroupStatus string

const (
	GroupStatusOpen       GroupStatus = "open"
	GroupStatusInProgress GroupStatus = "in_progress"
	GroupStatusResolved   GroupStatus = "resolved"
)

// String returns the string representation of the status
func (s GroupStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s GroupStatus) IsValid() bool {
	switch s {
	case GroupStatusOpen, GroupStatusInProgress, GroupStatusResolved:
		return true
	default:
		return false
	}
}

// AcceptsReports reports whether new links may target a group in this status.
// Resolved groups never receive new reports; a fresh report for the same
// category and location spawns a new group instead.
func (s GroupStatus) AcceptsReports() bool {
	return s == GroupStatusOpen || s == GroupStatusInProgress
}
