package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/campus-pulse/pulse/pkg/usecase"
	"github.com/campus-pulse/pulse/pkg/utils/async"
)

// submitReportRequest is the submission payload
type submitReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id,omitempty"`
	LocationID  string `json:"location_id"`
	SubmitterID string `json:"submitter_id,omitempty"`
}

// handleSubmitReport accepts a report and starts the pipeline.
// Validation runs synchronously; the pipeline runs in the background
// and reports on the submission's event stream.
func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
		return
	}

	submission, err := s.uc.Submit(r.Context(), usecase.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  types.CategoryID(req.CategoryID),
		LocationID:  types.LocationID(req.LocationID),
		SubmitterID: types.SubmitterID(req.SubmitterID),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	async.Dispatch(r.Context(), func(ctx context.Context) error {
		return s.uc.Process(ctx, submission.SubmissionID, submission.Report)
	})

	writeJSON(r.Context(), w, http.StatusAccepted, map[string]string{
		"submission_id": submission.SubmissionID.String(),
		"report_id":     submission.ReportID.String(),
	})
}

// handleSubmissionEvents serves a submission's progress stream. With
// an Accept header of text/event-stream the handler streams events
// live over SSE until the stream terminates; otherwise it returns the
// event history as a JSON snapshot.
func (s *Server) handleSubmissionEvents(w http.ResponseWriter, r *http.Request) {
	submissionID := types.SubmissionID(chi.URLParam(r, "submissionID"))

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.streamEvents(w, r, submissionID)
		return
	}

	events, ok := s.uc.Hub().Events(submissionID)
	if !ok {
		writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "unknown submission"})
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"submission_id": submissionID.String(),
		"done":          s.uc.Hub().Done(submissionID),
		"events":        renderEvents(events),
	})
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, submissionID types.SubmissionID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel, err := s.uc.Hub().Subscribe(submissionID)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "unknown submission"})
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(renderEvent(event))
			if err != nil {
				ctxlog.From(r.Context()).Error("Failed to encode progress event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Stage, payload)
			flusher.Flush()
		}
	}
}

func renderEvents(events []model.ProgressEvent) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, event := range events {
		out = append(out, renderEvent(event))
	}
	return out
}

func renderEvent(event model.ProgressEvent) map[string]any {
	body := map[string]any{
		"stage":      event.Stage.String(),
		"progress":   event.Progress,
		"message":    event.Message,
		"emitted_at": event.EmittedAt.Format(time.RFC3339Nano),
	}
	if event.Data != nil {
		body["data"] = event.Data
	}
	return body
}

// handleListGroups returns all issue groups ordered by priority
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.uc.ListGroups(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, renderSummary(summary))
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"groups": out})
}

// handleGetGroup returns one group with its history
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := types.GroupID(chi.URLParam(r, "groupID"))

	detail, err := s.uc.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	body := renderSummary(&detail.GroupSummary)
	body["priority_history"] = renderSnapshots(detail.Snapshots)
	body["admin_actions"] = renderActions(detail.Actions)
	body["status_history"] = renderHistories(detail.Histories)
	writeJSON(r.Context(), w, http.StatusOK, body)
}

func renderSummary(summary *usecase.GroupSummary) map[string]any {
	group := summary.Group
	body := map[string]any{
		"id":           group.ID.String(),
		"category_id":  group.CategoryID.String(),
		"location_id":  group.LocationID.String(),
		"status":       group.Status.String(),
		"authority":    summary.AuthorityName,
		"report_count": summary.ReportCount,
		"created_at":   group.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   group.UpdatedAt.Format(time.RFC3339Nano),
	}
	if summary.Priority != nil {
		body["priority"] = renderSnapshot(summary.Priority)
	}
	return body
}

func renderSnapshots(snapshots []*model.PrioritySnapshot) []map[string]any {
	out := make([]map[string]any, 0, len(snapshots))
	for _, snapshot := range snapshots {
		out = append(out, renderSnapshot(snapshot))
	}
	return out
}

func renderSnapshot(snapshot *model.PrioritySnapshot) map[string]any {
	body := map[string]any{
		"total_score": snapshot.TotalScore,
		"manual":      snapshot.IsManual(),
		"computed_at": snapshot.ComputedAt.Format(time.RFC3339Nano),
	}
	if snapshot.Components != nil {
		body["components"] = map[string]float64{
			"urgency":       snapshot.Components.Urgency,
			"impact":        snapshot.Components.Impact,
			"frequency":     snapshot.Components.Frequency,
			"environmental": snapshot.Components.Environmental,
		}
		body["confidence"] = snapshot.Confidence
	}
	if snapshot.OverriddenBy != "" {
		body["overridden_by"] = snapshot.OverriddenBy
		body["reason"] = snapshot.Reason
	}
	return body
}

func renderActions(actions []*model.AdminAction) []map[string]any {
	out := make([]map[string]any, 0, len(actions))
	for _, action := range actions {
		out = append(out, map[string]any{
			"kind":       string(action.Kind),
			"actor":      action.Actor,
			"detail":     action.Detail,
			"created_at": action.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return out
}

func renderHistories(histories []*model.StatusHistory) []map[string]any {
	out := make([]map[string]any, 0, len(histories))
	for _, history := range histories {
		out = append(out, map[string]any{
			"status":     history.Status.String(),
			"changed_by": history.ChangedBy,
			"changed_at": history.ChangedAt.Format(time.RFC3339Nano),
			"note":       history.Note,
		})
	}
	return out
}

// handleListAuthorities returns the authority directory
func (s *Server) handleListAuthorities(w http.ResponseWriter, r *http.Request) {
	authorities, err := s.uc.Repository().ListAuthorities(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]map[string]string, 0, len(authorities))
	for _, authority := range authorities {
		out = append(out, map[string]string{
			"id":          authority.ID.String(),
			"name":        authority.Name,
			"description": authority.Description,
		})
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"authorities": out})
}
