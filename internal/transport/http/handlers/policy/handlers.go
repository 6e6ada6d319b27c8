package policyhandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/policy"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

// Provider is the live policy snapshot holder.
type Provider interface {
	Current() policy.Set
	Reload(ctx context.Context) (policy.Set, error)
}

// ReloadRecorder counts reload outcomes.
type ReloadRecorder interface {
	RecordPolicyReload(err error)
}

type Handler struct {
	Provider Provider
	Metrics  ReloadRecorder
}

func NewHandler(provider Provider, metrics ReloadRecorder) *Handler {
	return &Handler{Provider: provider, Metrics: metrics}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/policy", func(r chi.Router) {
		r.With(middleware.RequireRole()).Get("/resolve", h.handleResolve)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/current", h.handleCurrent)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/reload", h.handleReload)
	})
}

type resolution struct {
	Date                string             `json:"date"`
	ThresholdHours      float64            `json:"thresholdHours"`
	WorkDayType         policy.WorkDayType `json:"workDayType"`
	FlexibleWindow      *policy.Window     `json:"flexibleWindow,omitempty"`
	StandardWeeklyHours float64            `json:"standardWeeklyHours"`
	Source              string             `json:"source"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	raw := r.URL.Query().Get("date")
	date := time.Now()
	if raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
			return
		}
		date = parsed
	}

	set := h.Provider.Current()
	out := resolution{
		Date:                date.Format(time.DateOnly),
		ThresholdHours:      set.Threshold(date),
		WorkDayType:         set.DayType(date),
		StandardWeeklyHours: set.StandardWeeklyHours(date),
		Source:              set.Source,
	}
	if window, ok := policy.FlexibleWindowFor(date, set.Windows); ok {
		out.FlexibleWindow = &window
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Provider.Current(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	set, err := h.Provider.Reload(r.Context())
	if h.Metrics != nil {
		h.Metrics.RecordPolicyReload(err)
	}
	if err != nil {
		slog.Warn("policy reload failed", "err", err)
		api.Fail(w, http.StatusServiceUnavailable, "policy_reload_failed", "policy store unreachable; previous snapshot kept", requestID)
		return
	}
	api.Success(w, map[string]any{"source": set.Source, "loadedAt": set.LoadedAt, "windows": len(set.Windows)}, requestID)
}
