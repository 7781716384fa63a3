package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
)

// actorHeader names the administrator performing an admin request.
// Authentication proper sits in front of this service.
const actorHeader = "X-Admin-Actor"

func actor(r *http.Request) (string, error) {
	name := r.Header.Get(actorHeader)
	if name == "" {
		return "", goerr.New("missing "+actorHeader+" header", goerr.T(model.ErrTagValidation))
	}
	return name, nil
}

type assignAuthorityRequest struct {
	AuthorityID string `json:"authority_id"`
}

// handleAssignAuthority reassigns the responsible authority of a group
func (s *Server) handleAssignAuthority(w http.ResponseWriter, r *http.Request) {
	actorName, err := actor(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	var req assignAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
		return
	}

	groupID := types.GroupID(chi.URLParam(r, "groupID"))
	if err := s.uc.AssignAuthority(r.Context(), groupID, types.AuthorityID(req.AuthorityID), actorName); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type changeStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// handleChangeStatus transitions a group's status
func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	actorName, err := actor(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
		return
	}

	groupID := types.GroupID(chi.URLParam(r, "groupID"))
	if err := s.uc.ChangeStatus(r.Context(), groupID, types.GroupStatus(req.Status), actorName, req.Note); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type overridePriorityRequest struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// handleOverridePriority appends a manual priority snapshot
func (s *Server) handleOverridePriority(w http.ResponseWriter, r *http.Request) {
	actorName, err := actor(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	var req overridePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
		return
	}

	groupID := types.GroupID(chi.URLParam(r, "groupID"))
	snapshot, err := s.uc.OverridePriority(r.Context(), groupID, req.Score, req.Reason, actorName)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, renderSnapshot(snapshot))
}

// handleReopen transitions a resolved group back to open
func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	actorName, err := actor(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	groupID := types.GroupID(chi.URLParam(r, "groupID"))
	if err := s.uc.Reopen(r.Context(), groupID, actorName); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRetriage replaces a report's classification with a fresh
// triage run
func (s *Server) handleRetriage(w http.ResponseWriter, r *http.Request) {
	if _, err := actor(r); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	reportID := types.ReportID(chi.URLParam(r, "reportID"))
	classification, err := s.uc.Retriage(r.Context(), reportID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"report_id":        classification.ReportID.String(),
		"category":         classification.Category.String(),
		"urgency_score":    classification.UrgencyScore,
		"urgency_level":    classification.UrgencyLevel.String(),
		"impact_scope":     classification.ImpactScope.String(),
		"environmental":    classification.Environmental,
		"confidence_score": classification.ConfidenceScore,
		"report_type":      classification.ReportType.String(),
		"reasoning":        classification.Reasoning,
	})
}
