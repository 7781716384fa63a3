package model

import (
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// ProgressEvent is one entry of the finite, ordered event stream a
// pipeline invocation produces. The stream terminates at a complete or
// error stage and is not restartable; a new submission produces a new
// stream.
type ProgressEvent struct {
	SubmissionID types.SubmissionID
	Stage        types.Stage
	Progress     int
	Message      string
	Data         map[string]any
	EmittedAt    time.Time
}

// NewProgressEvent creates an event for the given stage with its
// canonical progress value
func NewProgressEvent(submissionID types.SubmissionID, stage types.Stage, message string) ProgressEvent {
	return ProgressEvent{
		SubmissionID: submissionID,
		Stage:        stage,
		Progress:     stage.Progress(),
		Message:      message,
		EmittedAt:    time.Now(),
	}
}

// WithData attaches structured payload to the event
func (e ProgressEvent) WithData(data map[string]any) ProgressEvent {
	e.Data = data
	return e
}
