package usecase

import (
	"context"
	"time"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/service/scoring"
	"github.com/campus-pulse/pulse/pkg/utils/apperr"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// SubmitInput is the raw submission payload
type SubmitInput struct {
	Title       string
	Description string
	CategoryID  types.CategoryID
	LocationID  types.LocationID
	SubmitterID types.SubmitterID
}

// Submission identifies an accepted report and its progress stream
type Submission struct {
	SubmissionID types.SubmissionID
	ReportID     types.ReportID
	Report       *model.Report
}

// Submit validates a raw submission and registers its progress
// stream. Validation failures surface synchronously; everything after
// acceptance happens in Process and is reported on the event stream.
func (u *UseCases) Submit(ctx context.Context, input SubmitInput) (*Submission, error) {
	report, err := model.NewReport(input.Title, input.Description, input.CategoryID, input.LocationID, input.SubmitterID)
	if err != nil {
		return nil, err
	}

	if _, err := u.repo.GetLocation(ctx, report.LocationID); err != nil {
		return nil, goerr.Wrap(err, "unknown location",
			goerr.T(model.ErrTagValidation),
			goerr.V("locationID", report.LocationID))
	}

	submissionID := types.NewSubmissionID()
	u.hub.Open(submissionID)

	return &Submission{
		SubmissionID: submissionID,
		ReportID:     report.ID,
		Report:       report,
	}, nil
}

// Process runs the triage pipeline for one accepted report. Stages are
// reported on the submission's event stream in fixed order. A triage
// failure degrades to the neutral default classification and the run
// continues; any other failure terminates the stream with an error
// event. The run never restarts: a failed submission must be
// resubmitted as a new one.
func (u *UseCases) Process(ctx context.Context, submissionID types.SubmissionID, report *model.Report) error {
	logger := ctxlog.From(ctx).With("submissionID", submissionID, "reportID", report.ID)
	ctx = ctxlog.With(ctx, logger)

	u.emit(ctx, submissionID, types.StageValidating, "report accepted", nil)

	location, err := u.repo.GetLocation(ctx, report.LocationID)
	if err != nil {
		return u.fail(ctx, submissionID, goerr.Wrap(err, "unknown location",
			goerr.T(model.ErrTagValidation)))
	}

	if err := u.repo.PutReport(ctx, report); err != nil {
		return u.fail(ctx, submissionID, err)
	}

	u.emit(ctx, submissionID, types.StageTriaging, "classifying report", nil)

	classification, degraded := u.classify(ctx, report)
	if err := u.repo.UpsertClassification(ctx, classification); err != nil {
		return u.fail(ctx, submissionID, err)
	}

	if classification.Welfare || classification.RequiresImmediate {
		logger.Warn("Report flagged for immediate attention",
			"welfare", classification.Welfare,
			"requiresImmediate", classification.RequiresImmediate,
		)
	}

	// Spam and test traffic is acknowledged, stored for audit, and
	// dropped before aggregation. Welfare-flagged reports are never
	// dropped regardless of spam confidence.
	if u.discardable(classification) {
		u.emit(ctx, submissionID, types.StageComplete, "report acknowledged", map[string]any{
			"report_id": report.ID.String(),
			"discarded": true,
			"reason":    string(classification.ReportType),
		})
		logger.Info("Report discarded before aggregation",
			"reportType", classification.ReportType,
			"spamConfidence", classification.SpamConfidence,
		)
		return nil
	}

	u.emit(ctx, submissionID, types.StageAggregating, "merging into issue group", nil)

	aggResult, err := u.agg.Aggregate(ctx, report.ID, classification.Category, report.LocationID, "")
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}

	u.emit(ctx, submissionID, types.StageScoring, "computing priority", nil)

	now := time.Now()
	reportCount, err := u.repo.CountLinksByGroup(ctx, aggResult.GroupID)
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}
	recentCount, err := u.freq.CountRecent(ctx, aggResult.GroupID, now)
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}

	breakdown := u.scorer.Score(scoring.Input{
		UrgencyScore:    classification.UrgencyScore,
		ImpactScope:     classification.ImpactScope,
		ReportCount:     reportCount,
		RecentCount:     recentCount,
		Environmental:   classification.Environmental,
		ConfidenceScore: classification.ConfidenceScore,
	})

	u.emit(ctx, submissionID, types.StageRouting, "resolving responsible authority", nil)

	authorityName, err := u.route(ctx, aggResult.GroupID, aggResult.IsNew, classification.Category, location.Kind)
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}

	u.emit(ctx, submissionID, types.StagePersisting, "saving results", nil)

	sample, err := model.NewFrequencySample(aggResult.GroupID, recentCount, u.freq.Window(), now)
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}
	if err := u.repo.AddFrequencySample(ctx, sample); err != nil {
		return u.fail(ctx, submissionID, err)
	}

	snapshot, err := model.NewPrioritySnapshot(aggResult.GroupID, breakdown.Components, breakdown.RawScore, breakdown.Confidence, breakdown.TotalScore)
	if err != nil {
		return u.fail(ctx, submissionID, err)
	}
	if err := u.repo.AddPrioritySnapshot(ctx, snapshot); err != nil {
		return u.fail(ctx, submissionID, err)
	}

	u.emit(ctx, submissionID, types.StageComplete, "triage complete", map[string]any{
		"report_id":    report.ID.String(),
		"group_id":     aggResult.GroupID.String(),
		"new_group":    aggResult.IsNew,
		"category":     classification.Category.String(),
		"total_score":  breakdown.TotalScore,
		"authority":    authorityName,
		"degraded":     degraded,
		"report_count": reportCount,
	})

	logger.Info("Triage pipeline complete",
		"groupID", aggResult.GroupID,
		"newGroup", aggResult.IsNew,
		"totalScore", breakdown.TotalScore,
		"authority", authorityName,
	)

	return nil
}

// classify runs the triage call. Provider or parse failures never
// abort the pipeline: the report falls back to the neutral default
// classification with zero confidence.
func (u *UseCases) classify(ctx context.Context, report *model.Report) (*model.Classification, bool) {
	classification, err := u.triage.Classify(ctx, report.ID, report.Title, report.Description)
	if err != nil {
		ctxlog.From(ctx).Warn("Triage failed, continuing with default classification",
			"error", err,
		)
		return model.DefaultClassification(report.ID), true
	}
	return classification, false
}

func (u *UseCases) discardable(c *model.Classification) bool {
	if c.Welfare {
		return false
	}
	return c.IsSpam(u.config.spamThreshold) || c.ReportType == types.ReportTypeTest
}

// route assigns an authority to a freshly created group. An existing
// group keeps the authority it already has; admin reassignment is the
// only way to change it afterwards.
func (u *UseCases) route(ctx context.Context, groupID types.GroupID, isNew bool, category types.CategoryID, kind types.LocationKind) (string, error) {
	if !isNew {
		group, err := u.repo.GetGroup(ctx, groupID)
		if err != nil {
			return "", err
		}
		if group.AuthorityID != "" {
			authority, err := u.repo.GetAuthority(ctx, group.AuthorityID)
			if err != nil {
				return "", err
			}
			return authority.Name, nil
		}
		// Group predates routing (e.g. its creating run aborted after
		// aggregation); fall through and route it now.
	}

	decision, err := u.router.Route(ctx, category, kind)
	if err != nil {
		return "", err
	}
	if err := u.repo.UpdateGroupAuthority(ctx, groupID, decision.AuthorityID); err != nil {
		return "", err
	}

	ctxlog.From(ctx).Debug("Routed issue group",
		"groupID", groupID,
		"authority", decision.AuthorityName,
		"reason", decision.Reason,
		"confidence", decision.Confidence,
	)

	return decision.AuthorityName, nil
}

// Retriage re-runs classification for an existing report and replaces
// its stored classification. Unlike the pipeline, a triage failure
// here surfaces as an error; the caller asked for a fresh judgement,
// not a fallback. Group membership and past snapshots are untouched.
func (u *UseCases) Retriage(ctx context.Context, reportID types.ReportID) (*model.Classification, error) {
	report, err := u.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	classification, err := u.triage.Classify(ctx, report.ID, report.Title, report.Description)
	if err != nil {
		return nil, goerr.Wrap(err, "re-triage failed", goerr.T(model.ErrTagAutomation))
	}

	if err := u.repo.UpsertClassification(ctx, classification); err != nil {
		return nil, err
	}

	return classification, nil
}

func (u *UseCases) emit(ctx context.Context, submissionID types.SubmissionID, stage types.Stage, message string, data map[string]any) {
	event := model.NewProgressEvent(submissionID, stage, message)
	if data != nil {
		event = event.WithData(data)
	}
	u.hub.Publish(ctx, event)
}

// fail terminates the event stream with an error event and logs the
// cause
func (u *UseCases) fail(ctx context.Context, submissionID types.SubmissionID, err error) error {
	apperr.Handle(ctx, err)
	u.emit(ctx, submissionID, types.StageError, err.Error(), nil)
	return err
}
