package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/repository"
	"github.com/campus-pulse/pulse/pkg/usecase"
)

// fakeTriage returns a canned classification, or fails when err is set
type fakeTriage struct {
	classification *model.Classification
	err            error
}

func (f *fakeTriage) Classify(ctx context.Context, reportID types.ReportID, title, description string) (*model.Classification, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *f.classification
	c.ReportID = reportID
	return &c, nil
}

func (f *fakeTriage) HealthCheck(ctx context.Context) bool {
	return f.err == nil
}

func cleanClassification() *model.Classification {
	return &model.Classification{
		Category:        model.CategoryWater,
		UrgencyScore:    0.8,
		ImpactScope:     types.ImpactScopeSingle,
		ConfidenceScore: 0.9,
		UrgencyLevel:    types.UrgencyLevelHigh,
		ReportType:      types.ReportTypeInfrastructure,
		ContextValidity: types.ContextValid,
		Reasoning:       "burst pipe reported with specific location",
	}
}

func hostelLocation() *model.Location {
	return &model.Location{ID: "hostel-a", Name: "Hostel A", Kind: types.LocationKindHostel}
}

func setup(t *testing.T, triage *fakeTriage) *usecase.UseCases {
	t.Helper()
	uc := usecase.New(repository.NewMemory(), triage)
	gt.NoError(t, uc.SeedDirectory(context.Background(), []*model.Location{hostelLocation()}))
	return uc
}

func submitAndProcess(t *testing.T, uc *usecase.UseCases, input usecase.SubmitInput) *usecase.Submission {
	t.Helper()
	ctx := context.Background()
	sub, err := uc.Submit(ctx, input)
	gt.NoError(t, err)
	gt.NoError(t, uc.Process(ctx, sub.SubmissionID, sub.Report))
	return sub
}

func stages(events []model.ProgressEvent) []types.Stage {
	out := make([]types.Stage, 0, len(events))
	for _, e := range events {
		out = append(out, e.Stage)
	}
	return out
}

func TestProcess_FullPipeline(t *testing.T) {
	ctx := context.Background()
	uc := setup(t, &fakeTriage{classification: cleanClassification()})

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Burst pipe",
		Description: "Water everywhere on the second floor",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, ok := uc.Hub().Events(sub.SubmissionID)
	gt.B(t, ok).True()
	gt.Equal(t, stages(events), []types.Stage{
		types.StageValidating,
		types.StageTriaging,
		types.StageAggregating,
		types.StageScoring,
		types.StageRouting,
		types.StagePersisting,
		types.StageComplete,
	})
	gt.B(t, uc.Hub().Done(sub.SubmissionID)).True()

	final := events[len(events)-1]
	gt.Equal(t, final.Progress, 100)
	gt.Equal(t, final.Data["degraded"], false)
	gt.Equal(t, final.Data["new_group"], true)
	gt.Equal(t, final.Data["total_score"], 38.25)
	gt.Equal(t, final.Data["authority"], model.AuthorityProvost)

	repo := uc.Repository()

	classification, err := repo.GetClassification(ctx, sub.ReportID)
	gt.NoError(t, err)
	gt.Equal(t, classification.Category, model.CategoryWater)

	group, err := repo.FindActiveGroup(ctx, model.CategoryWater, "hostel-a")
	gt.NoError(t, err)
	gt.B(t, group.AuthorityID != "").True()

	count, err := repo.CountLinksByGroup(ctx, group.ID)
	gt.NoError(t, err)
	gt.Equal(t, count, 1)

	snapshot, err := repo.GetLatestPrioritySnapshot(ctx, group.ID)
	gt.NoError(t, err)
	gt.Equal(t, snapshot.TotalScore, 38.25)

	sample, err := repo.GetLatestFrequencySample(ctx, group.ID)
	gt.NoError(t, err)
	gt.Equal(t, sample.Count, 1)
}

func TestProcess_SecondReportJoinsGroup(t *testing.T) {
	uc := setup(t, &fakeTriage{classification: cleanClassification()})

	input := usecase.SubmitInput{
		Title:       "Burst pipe",
		Description: "Water everywhere on the second floor",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	}
	first := submitAndProcess(t, uc, input)

	input.SubmitterID = "stu-2"
	second := submitAndProcess(t, uc, input)

	events, ok := uc.Hub().Events(second.SubmissionID)
	gt.B(t, ok).True()
	final := events[len(events)-1]
	gt.Equal(t, final.Stage, types.StageComplete)
	gt.Equal(t, final.Data["new_group"], false)
	gt.Equal(t, final.Data["report_count"], 2)

	firstEvents, _ := uc.Hub().Events(first.SubmissionID)
	gt.Equal(t, firstEvents[len(firstEvents)-1].Data["group_id"], final.Data["group_id"])
}

func TestProcess_TriageFailureDegrades(t *testing.T) {
	ctx := context.Background()
	uc := setup(t, &fakeTriage{err: goerr.New("provider unavailable")})

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Something broken",
		Description: "Not sure what exactly, but it is broken",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, _ := uc.Hub().Events(sub.SubmissionID)
	final := events[len(events)-1]
	gt.Equal(t, final.Stage, types.StageComplete)
	gt.Equal(t, final.Data["degraded"], true)
	gt.Equal(t, final.Data["total_score"], 0.0)

	classification, err := uc.Repository().GetClassification(ctx, sub.ReportID)
	gt.NoError(t, err)
	gt.Equal(t, classification.Category, model.CategoryInfrastructure)
	gt.Equal(t, classification.ConfidenceScore, 0.0)
}

func TestProcess_SpamDiscardedBeforeAggregation(t *testing.T) {
	ctx := context.Background()
	classification := cleanClassification()
	classification.SpamConfidence = 0.95
	uc := setup(t, &fakeTriage{classification: classification})

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Win a free phone",
		Description: "Click this link to claim your prize now",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, _ := uc.Hub().Events(sub.SubmissionID)
	gt.Equal(t, stages(events), []types.Stage{
		types.StageValidating,
		types.StageTriaging,
		types.StageComplete,
	})
	gt.Equal(t, events[len(events)-1].Data["discarded"], true)

	// Stored for audit, never aggregated
	_, err := uc.Repository().GetReport(ctx, sub.ReportID)
	gt.NoError(t, err)
	_, err = uc.Repository().FindActiveGroup(ctx, model.CategoryWater, "hostel-a")
	gt.Error(t, err)
}

func TestProcess_TestReportDiscarded(t *testing.T) {
	classification := cleanClassification()
	classification.ReportType = types.ReportTypeTest
	uc := setup(t, &fakeTriage{classification: classification})

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "test test test",
		Description: "just checking whether this form works",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, _ := uc.Hub().Events(sub.SubmissionID)
	final := events[len(events)-1]
	gt.Equal(t, final.Stage, types.StageComplete)
	gt.Equal(t, final.Data["discarded"], true)
	gt.Equal(t, final.Data["reason"], any(string(types.ReportTypeTest)))
}

func TestProcess_WelfareOverridesSpamGate(t *testing.T) {
	ctx := context.Background()
	classification := cleanClassification()
	classification.SpamConfidence = 0.95
	classification.Welfare = true
	uc := setup(t, &fakeTriage{classification: classification})

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "My roommate needs help",
		Description: "They have not left the room or eaten in days",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, _ := uc.Hub().Events(sub.SubmissionID)
	final := events[len(events)-1]
	gt.Equal(t, final.Stage, types.StageComplete)
	gt.B(t, final.Data["discarded"] == nil).True()

	_, err := uc.Repository().FindActiveGroup(ctx, model.CategoryWater, "hostel-a")
	gt.NoError(t, err)
}

func TestProcess_CustomSpamThreshold(t *testing.T) {
	classification := cleanClassification()
	classification.SpamConfidence = 0.6

	uc := usecase.New(repository.NewMemory(), &fakeTriage{classification: classification},
		usecase.WithSpamThreshold(0.5))
	gt.NoError(t, uc.SeedDirectory(context.Background(), []*model.Location{hostelLocation()}))

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Suspicious but maybe genuine",
		Description: "Half advertisement, half complaint about the tap",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	events, _ := uc.Hub().Events(sub.SubmissionID)
	gt.Equal(t, events[len(events)-1].Data["discarded"], true)
}

func TestProcess_RoutingFailureTerminatesStream(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	gt.NoError(t, repo.PutLocation(ctx, hostelLocation()))

	// The rule table names an authority nobody seeded
	uc := usecase.New(repo, &fakeTriage{classification: cleanClassification()},
		usecase.WithRoutingRules(&model.RoutingConfig{DefaultAuthority: "Facilities Desk"}))

	sub, err := uc.Submit(ctx, usecase.SubmitInput{
		Title:       "Burst pipe",
		Description: "Water everywhere on the second floor",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})
	gt.NoError(t, err)

	err = uc.Process(ctx, sub.SubmissionID, sub.Report)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagRouting)).True()

	events, _ := uc.Hub().Events(sub.SubmissionID)
	gt.Equal(t, events[len(events)-1].Stage, types.StageError)
	gt.B(t, uc.Hub().Done(sub.SubmissionID)).True()
}

func TestSubmit_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	uc := setup(t, &fakeTriage{classification: cleanClassification()})

	_, err := uc.Submit(ctx, usecase.SubmitInput{
		Title:       "",
		Description: "No title at all",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})
	gt.Error(t, err)

	_, err = uc.Submit(ctx, usecase.SubmitInput{
		Title:       "Valid title",
		Description: "But the location does not exist",
		LocationID:  "atlantis",
		SubmitterID: "stu-1",
	})
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
}

func TestRetriage_ReplacesClassification(t *testing.T) {
	ctx := context.Background()
	triage := &fakeTriage{classification: cleanClassification()}
	uc := setup(t, triage)

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Burst pipe",
		Description: "Water everywhere on the second floor",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	revised := cleanClassification()
	revised.Category = model.CategorySanitation
	revised.UrgencyScore = 0.3
	triage.classification = revised

	got, err := uc.Retriage(ctx, sub.ReportID)
	gt.NoError(t, err)
	gt.Equal(t, got.Category, model.CategorySanitation)

	stored, err := uc.Repository().GetClassification(ctx, sub.ReportID)
	gt.NoError(t, err)
	gt.Equal(t, stored.Category, model.CategorySanitation)
	gt.Equal(t, stored.UrgencyScore, 0.3)
}

func TestRetriage_SurfacesProviderFailure(t *testing.T) {
	ctx := context.Background()
	triage := &fakeTriage{classification: cleanClassification()}
	uc := setup(t, triage)

	sub := submitAndProcess(t, uc, usecase.SubmitInput{
		Title:       "Burst pipe",
		Description: "Water everywhere on the second floor",
		LocationID:  "hostel-a",
		SubmitterID: "stu-1",
	})

	triage.err = goerr.New("provider unavailable")

	_, err := uc.Retriage(ctx, sub.ReportID)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, model.ErrTagAutomation)).True()
}

func TestRetriage_UnknownReport(t *testing.T) {
	uc := setup(t, &fakeTriage{classification: cleanClassification()})

	_, err := uc.Retriage(context.Background(), types.NewReportID())
	gt.Error(t, err)
}
