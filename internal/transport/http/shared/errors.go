package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hrportal/internal/domain/leave"
	"hrportal/internal/domain/worktime"
	"hrportal/internal/transport/http/api"
)

// FailLeave maps the leave error taxonomy onto HTTP statuses. The message of
// a classified error is safe to show to the caller.
func FailLeave(w http.ResponseWriter, err error, requestID string) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, leave.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, leave.ErrInsufficientBalance):
		status, code = http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, leave.ErrUninitializedBalance):
		status, code = http.StatusUnprocessableEntity, "uninitialized_balance"
	case errors.Is(err, leave.ErrInvalidBalance):
		status, code = http.StatusUnprocessableEntity, "invalid_balance"
	case errors.Is(err, leave.ErrAlreadyProcessed):
		status, code = http.StatusConflict, "already_processed"
	case errors.Is(err, leave.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, leave.ErrTransientBackend):
		status, code = http.StatusServiceUnavailable, "backend_unavailable"
	}

	if status == http.StatusInternalServerError {
		slog.Error("leave operation failed", "err", err, "requestId", requestID)
		api.Fail(w, status, code, "leave operation failed", requestID)
		return
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	api.Fail(w, status, code, err.Error(), requestID)
}

// FailWorkTime reports malformed clock input as a field level validation failure.
func FailWorkTime(w http.ResponseWriter, err error, requestID string) {
	var verr *worktime.ValidationError
	if errors.As(err, &verr) {
		FailValidation(w, requestID, []ValidationIssue{{Field: verr.Field, Reason: verr.Error()}})
		return
	}
	if errors.Is(err, worktime.ErrInvalidTime) || errors.Is(err, worktime.ErrInvalidPeriod) {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
		return
	}
	slog.Error("work time computation failed", "err", err, "requestId", requestID)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "work time computation failed", requestID)
}
