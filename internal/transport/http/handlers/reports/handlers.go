package reportshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/reports"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

// ModeSource reports which leave mutation path is active.
type ModeSource interface {
	Mode() string
}

type Handler struct {
	Service *reports.Service
	Leave   ModeSource
}

func NewHandler(service *reports.Service, leave ModeSource) *Handler {
	return &Handler{Service: service, Leave: leave}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR)).Get("/leave-summary", h.handleLeaveSummary)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/job-runs", h.handleListJobRuns)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/job-runs/{runID}", h.handleGetJobRun)
	})
}

func (h *Handler) handleLeaveSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.LeaveSummary(r.Context())
	if err != nil {
		slog.Error("leave summary failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to build leave summary", requestID)
		return
	}
	api.Success(w, map[string]any{
		"summary":   summary,
		"leaveMode": h.Leave.Mode(),
	}, requestID)
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	filter := reports.JobRunFilter{
		JobType: strings.TrimSpace(q.Get("jobType")),
		Status:  strings.TrimSpace(q.Get("status")),
	}
	v.Enum("status", filter.Status, []string{"running", "completed", "failed"}, "must be one of running, completed, failed")
	from := parseTimestamp(v, "startedFrom", q.Get("startedFrom"))
	to := parseTimestamp(v, "startedTo", q.Get("startedTo"))
	if from != nil && to != nil && to.Before(*from) {
		v.Add("startedTo", "must not be before startedFrom")
	}
	if v.Reject(w, requestID) {
		return
	}
	filter.StartedFrom, filter.StartedTo = from, to

	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.JobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("job run list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list job runs", requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, requestID)
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	run, err := h.Service.JobRun(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, reports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", requestID)
		return
	}
	if err != nil {
		slog.Error("job run lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load job run", requestID)
		return
	}
	api.Success(w, run, requestID)
}

// parseTimestamp accepts RFC 3339 or a bare date.
func parseTimestamp(v *shared.Validator, field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := shared.ParseDate(raw)
	if err != nil {
		v.Add(field, "must be RFC 3339 or YYYY-MM-DD")
		return nil
	}
	return &t
}
