package frequency

import (
	"context"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultWindow is the trailing interval used to measure reporting
// velocity for a group
const DefaultWindow = 30 * time.Minute

// Service counts reports linked to a group within a trailing time
// window. Samples are recomputed synchronously whenever a report is
// processed; the most recent sample wins for scoring.
type Service struct {
	repo   interfaces.Repository
	window time.Duration
}

// New creates a frequency service. A non-positive window selects the
// default 30 minutes.
func New(repo interfaces.Repository, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		repo:   repo,
		window: window,
	}
}

// CountRecent counts links to the group with linked-at in
// [asOf-window, asOf], inclusive on both ends
func (s *Service) CountRecent(ctx context.Context, groupID types.GroupID, asOf time.Time) (int, error) {
	count, err := s.repo.CountLinksInWindow(ctx, groupID, asOf.Add(-s.window), asOf)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count recent links",
			goerr.V("groupID", groupID),
			goerr.T(model.ErrTagPersistence))
	}
	return count, nil
}

// Sample computes and materializes a frequency sample for the group
func (s *Service) Sample(ctx context.Context, groupID types.GroupID, asOf time.Time) (*model.FrequencySample, error) {
	count, err := s.CountRecent(ctx, groupID, asOf)
	if err != nil {
		return nil, err
	}

	sample, err := model.NewFrequencySample(groupID, count, s.window, asOf)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build frequency sample")
	}
	return sample, nil
}

// Window exposes the configured trailing interval
func (s *Service) Window() time.Duration {
	return s.window
}
