package aggregate

import (
	"context"
	"errors"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxAttempts bounds the find-or-create retry loop
const DefaultMaxAttempts = 3

// Result reports where a report landed
type Result struct {
	GroupID types.GroupID
	IsNew   bool
}

// Engine merges reports of the same (category, location) pair into a
// single tracked issue group while a matching group is still open.
// The find-or-create step is the only shared-mutation hot spot of the
// pipeline: uniqueness is guaranteed at the store layer and conflicts
// are resolved by re-querying, not by in-process locking, since
// invocations may run on separate processes.
type Engine struct {
	repo        interfaces.Repository
	maxAttempts int
}

// Option is a functional option for configuring the Engine
type Option func(*Engine)

// WithMaxAttempts overrides the retry budget
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// New creates an aggregation engine
func New(repo interfaces.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:        repo,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate finds or creates the active group for the pair and links
// the report to it. Exactly one link is written per report. A
// resolved group is never a target: a fresh report for its pair
// spawns a brand-new open group.
func (e *Engine) Aggregate(ctx context.Context, reportID types.ReportID, categoryID types.CategoryID, locationID types.LocationID, defaultAuthority types.AuthorityID) (*Result, error) {
	group, isNew, err := e.findOrCreate(ctx, categoryID, locationID, defaultAuthority)
	if err != nil {
		return nil, err
	}

	link, err := model.NewReportLink(reportID, group.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build report link")
	}
	if err := e.repo.CreateLink(ctx, link); err != nil {
		return nil, goerr.Wrap(err, "failed to link report to group",
			goerr.V("reportID", reportID),
			goerr.V("groupID", group.ID),
			goerr.T(model.ErrTagPersistence))
	}

	return &Result{
		GroupID: group.ID,
		IsNew:   isNew,
	}, nil
}

// findOrCreate resolves the active group for a pair with a bounded
// optimistic-retry loop around the store's insert-if-absent guarantee
func (e *Engine) findOrCreate(ctx context.Context, categoryID types.CategoryID, locationID types.LocationID, defaultAuthority types.AuthorityID) (*model.IssueGroup, bool, error) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		existing, err := e.repo.FindActiveGroup(ctx, categoryID, locationID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, model.ErrGroupNotFound) {
			return nil, false, goerr.Wrap(err, "failed to query active group",
				goerr.V("category", categoryID),
				goerr.V("location", locationID),
				goerr.T(model.ErrTagPersistence))
		}

		group, err := model.NewIssueGroup(categoryID, locationID, defaultAuthority)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to build issue group")
		}

		err = e.repo.CreateGroup(ctx, group)
		if err == nil {
			return group, true, nil
		}
		if errors.Is(err, model.ErrOpenGroupExists) {
			// Lost the race to a concurrent invocation; the next
			// iteration picks up the winner's group.
			ctxlog.From(ctx).Debug("aggregation create conflict, retrying",
				"category", categoryID,
				"location", locationID,
				"attempt", attempt+1,
			)
			continue
		}
		return nil, false, goerr.Wrap(err, "failed to create issue group",
			goerr.V("category", categoryID),
			goerr.V("location", locationID),
			goerr.T(model.ErrTagPersistence))
	}

	return nil, false, goerr.New("aggregation retry budget exhausted",
		goerr.V("category", categoryID),
		goerr.V("location", locationID),
		goerr.V("attempts", e.maxAttempts),
		goerr.T(model.ErrTagConflict))
}
