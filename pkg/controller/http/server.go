package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-pulse/pulse/pkg/domain/interfaces"
	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/usecase"
)

// Server is the HTTP front of the triage pipeline
type Server struct {
	*http.Server
	router chi.Router
	uc     *usecase.UseCases
	triage interfaces.TriageClient
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, uc *usecase.UseCases, triageClient interfaces.TriageClient) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
		uc:     uc,
		triage: triageClient,
	}

	router.Get("/health", s.handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Post("/reports", s.handleSubmitReport)
		r.Post("/reports/{reportID}/retriage", s.handleRetriage)

		r.Get("/submissions/{submissionID}/events", s.handleSubmissionEvents)

		r.Get("/groups", s.handleListGroups)
		r.Get("/groups/{groupID}", s.handleGetGroup)
		r.Put("/groups/{groupID}/authority", s.handleAssignAuthority)
		r.Put("/groups/{groupID}/status", s.handleChangeStatus)
		r.Post("/groups/{groupID}/priority-override", s.handleOverridePriority)
		r.Post("/groups/{groupID}/reopen", s.handleReopen)

		r.Get("/authorities", s.handleListAuthorities)
	})

	return s
}

// handleHealth reports process liveness and triage provider
// reachability. The service stays healthy when the provider is down
// since the pipeline degrades instead of failing.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	triageOK := false
	if s.triage != nil {
		triageOK = s.triage.HealthCheck(r.Context())
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "pulse",
		"triage":  triageOK,
	})
}

// writeJSON writes a JSON response body
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}

// writeError maps an error to its HTTP status via the domain error
// taxonomy and writes a JSON error body
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		status = http.StatusBadRequest
	case goerr.HasTag(err, model.ErrTagConflict):
		status = http.StatusConflict
	case isNotFound(err):
		status = http.StatusNotFound
	case goerr.HasTag(err, model.ErrTagAutomation):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		ctxlog.From(ctx).Error("Request failed", "error", err)
	}

	var message string
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	} else {
		message = err.Error()
	}

	writeJSON(ctx, w, status, map[string]string{"error": message})
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrReportNotFound) ||
		errors.Is(err, model.ErrGroupNotFound) ||
		errors.Is(err, model.ErrAuthorityNotFound) ||
		errors.Is(err, model.ErrClassificationNotFound)
}
