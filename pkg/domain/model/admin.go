package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AdminActionKind names one admin command applied to a group
type AdminActionKind string

const (
	AdminActionAssignAuthority  AdminActionKind = "assign_authority"
	AdminActionChangeStatus     AdminActionKind = "change_status"
	AdminActionOverridePriority AdminActionKind = "override_priority"
	AdminActionReopen           AdminActionKind = "reopen"
)

// AdminAction records one administrator command against a group.
// Append-only audit trail.
type AdminAction struct {
	ID        types.ActionID
	GroupID   types.GroupID
	Kind      AdminActionKind
	Actor     string
	Detail    string
	CreatedAt time.Time
}

// NewAdminAction creates a new admin action record
func NewAdminAction(groupID types.GroupID, kind AdminActionKind, actor, detail string) (*AdminAction, error) {
	if groupID == "" {
		return nil, goerr.New("group ID is required")
	}
	if actor == "" {
		return nil, goerr.New("actor is required")
	}

	return &AdminAction{
		ID:        types.NewActionID(),
		GroupID:   groupID,
		Kind:      kind,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: time.Now(),
	}, nil
}

// StatusHistory records one status transition of an issue group
type StatusHistory struct {
	GroupID   types.GroupID
	Status    types.GroupStatus
	ChangedBy string
	ChangedAt time.Time
	Note      string
}

// Validate validates the status history entry
func (h *StatusHistory) Validate() error {
	if h.GroupID == "" {
		return goerr.New("group ID is required")
	}
	if !h.Status.IsValid() {
		return goerr.New("invalid status", goerr.V("status", h.Status))
	}
	return nil
}
