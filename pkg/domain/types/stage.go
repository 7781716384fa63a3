package types

// Stage names one step of the triage pipeline as reported on the
// progress event stream. Stages are emitted in a fixed order and the
// stream always terminates with StageComplete or StageError.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageTriaging    Stage = "triaging"
	StageAggregating Stage = "aggregating"
	StageScoring     Stage = "scoring"
	StageRouting     Stage = "routing"
	StagePersisting  Stage = "persisting"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// String returns the string representation
func (s Stage) String() string {
	return string(s)
}

// Terminal reports whether the stage ends the event stream
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// Progress returns the 0-100 progress value associated with the stage
func (s Stage) Progress() int {
	switch s {
	case StageValidating:
		return 5
	case StageTriaging:
		return 25
	case StageAggregating:
		return 45
	case StageScoring:
		return 65
	case StageRouting:
		return 80
	case StagePersisting:
		return 90
	case StageComplete, StageError:
		return 100
	default:
		return 0
	}
}
