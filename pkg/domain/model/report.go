package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Report represents one raw submission from an end user. A report is
// immutable once created; only its classification metadata may be
// replaced by a re-triage.
type Report struct {
	ID          types.ReportID
	Title       string
	Description string
	CategoryID  types.CategoryID
	LocationID  types.LocationID
	SubmitterID types.SubmitterID
	CreatedAt   time.Time
}

// NewReport creates a new Report instance
func NewReport(title, description string, categoryID types.CategoryID, locationID types.LocationID, submitterID types.SubmitterID) (*Report, error) {
	if title == "" {
		return nil, goerr.New("report title is required", goerr.T(ErrTagValidation))
	}
	if description == "" {
		return nil, goerr.New("report description is required", goerr.T(ErrTagValidation))
	}
	if locationID == "" {
		return nil, goerr.New("location ID is required", goerr.T(ErrTagValidation))
	}

	return &Report{
		ID:          types.NewReportID(),
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		LocationID:  locationID,
		SubmitterID: submitterID,
		CreatedAt:   time.Now(),
	}, nil
}
