package interfaces

import (
	"context"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// TriageClient converts free-text reports into typed classifications
// via the external provider. Implementations must return a fully
// normalized Classification or an automation-tagged error; they never
// partially fill a record.
type TriageClient interface {
	Classify(ctx context.Context, reportID types.ReportID, title, description string) (*model.Classification, error)

	// HealthCheck reports whether the provider is currently reachable
	HealthCheck(ctx context.Context) bool
}
