package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for the pipeline error taxonomy. Automation and conflict
// errors are recoverable inside the pipeline; the rest abort it.
var (
	ErrTagValidation  = goerr.NewTag("validation")
	ErrTagAutomation  = goerr.NewTag("automation")
	ErrTagConflict    = goerr.NewTag("aggregation_conflict")
	ErrTagRouting     = goerr.NewTag("routing")
	ErrTagPersistence = goerr.NewTag("persistence")
)

// Sentinel errors for domain operations
var (
	ErrReportNotFound         = goerr.New("report not found")
	ErrClassificationNotFound = goerr.New("classification not found")
	ErrGroupNotFound          = goerr.New("issue group not found")
	ErrAuthorityNotFound      = goerr.New("authority not found")
	ErrSnapshotNotFound       = goerr.New("priority snapshot not found")
	ErrSampleNotFound         = goerr.New("frequency sample not found")

	// ErrOpenGroupExists signals the store-level uniqueness guarantee:
	// an open group for the same (category, location) pair already exists.
	ErrOpenGroupExists = goerr.New("open issue group already exists for pair", goerr.T(ErrTagConflict))
)
