package leavehandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/leave"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Service     *leave.Manager
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *leave.Manager, auditSvc *audit.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireRole()).Get("/balances", h.handleListBalances)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/balances/grant", h.handleGrant)
		r.With(middleware.RequireRole()).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireRole()).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequireRole()).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR)).Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR)).Post("/requests/{requestID}/reject", h.handleRejectRequest)
		r.With(middleware.RequireRole()).Post("/requests/{requestID}/cancel", h.handleCancelRequest)
	})
}

// targetUser resolves the userId query parameter. Employees only ever see
// themselves; managers and HR may name anyone.
func targetUser(r *http.Request, user auth.UserContext) (string, bool) {
	requested := strings.TrimSpace(r.URL.Query().Get("userId"))
	if requested == "" || requested == user.UserID {
		return user.UserID, true
	}
	return requested, user.CanManage()
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	userID, allowed := targetUser(r, user)
	if !allowed || (userID != user.UserID && !user.HasRole(auth.RoleHR)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}

	balances, err := h.Service.Balances(r.Context(), userID)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}
	api.Success(w, balances, requestID)
}

type grantRequest struct {
	UserID   string  `json:"userId"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload grantRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "is required")
	v.Required("category", payload.Category, "is required")
	v.Enum("category", payload.Category, categoryNames(), "must be one of annual, sick, substitute, compensatory")
	if payload.Amount == 0 {
		v.Add("amount", "must not be zero")
	}
	if v.Reject(w, requestID) {
		return
	}

	category, _ := leave.ParseCategory(payload.Category)
	balance, err := h.Service.Grant(r.Context(), strings.TrimSpace(payload.UserID), category, payload.Amount)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}

	h.audit(r, user, audit.ActionLeaveGrant, audit.EntityLeaveBalance, balance.UserID+":"+string(balance.Category), payload, balance)
	api.Success(w, balance, requestID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	userID, allowed := targetUser(r, user)
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v := shared.NewValidator()
	v.Enum("status", status, []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled}, "unknown status")
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	requests, total, err := h.Service.ListRequests(r.Context(), userID, status, page.Limit, page.Offset)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, requests, requestID)
}

type createRequest struct {
	Category  string  `json:"category"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	StartHalf bool    `json:"startHalf"`
	EndHalf   bool    `json:"endHalf"`
	Days      float64 `json:"days"`
	Reason    string  `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusRequestEntityTooLarge, "invalid_payload", "request body too large", requestID)
		return
	}

	key := strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))
	hash := middleware.RequestHash(raw)
	if key != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, r.URL.Path, key, hash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			var replay leave.Request
			if err := json.Unmarshal(stored, &replay); err == nil {
				api.Created(w, replay, requestID)
				return
			}
		}
	}

	var payload createRequest
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("category", payload.Category, "is required")
	v.Enum("category", payload.Category, categoryNames(), "must be one of annual, sick, substitute, compensatory")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if payload.Days < 0 {
		v.Add("days", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	category, _ := leave.ParseCategory(payload.Category)
	created, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		UserID:    user.UserID,
		Category:  category,
		StartDate: start,
		EndDate:   end,
		StartHalf: payload.StartHalf,
		EndHalf:   payload.EndHalf,
		Days:      payload.Days,
		Reason:    payload.Reason,
	})
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}

	if key != "" {
		if response, err := json.Marshal(created); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, r.URL.Path, key, hash, response); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	h.audit(r, user, audit.ActionLeaveSubmit, audit.EntityLeaveRequest, created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}
	if req.UserID != user.UserID && !user.CanManage() {
		// do not reveal that the request exists
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
		return
	}
	api.Success(w, req, requestID)
}

type decisionRequest struct {
	Note string `json:"note"`
}

func decodeDecision(r *http.Request) (decisionRequest, error) {
	var payload decisionRequest
	if err := shared.DecodeJSON(r, &payload); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		return payload, err
	}
	return payload, nil
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.OpApprove)
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.OpReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op string) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	payload, err := decodeDecision(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	id := chi.URLParam(r, "requestID")
	existing, err := h.Service.Get(r.Context(), id)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}
	if existing.UserID == user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot decide own leave request", requestID)
		return
	}

	var t leave.Transition
	action := audit.ActionLeaveApprove
	if op == leave.OpApprove {
		t, err = h.Service.Approve(r.Context(), id, user.UserID, payload.Note)
	} else {
		action = audit.ActionLeaveReject
		t, err = h.Service.Reject(r.Context(), id, user.UserID, payload.Note)
	}
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}

	h.audit(r, user, action, audit.EntityLeaveRequest, id, map[string]string{"status": t.From}, t)
	api.Success(w, t, requestID)
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id := chi.URLParam(r, "requestID")
	existing, err := h.Service.Get(r.Context(), id)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}
	if existing.UserID != user.UserID && !user.HasRole(auth.RoleHR) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}

	t, err := h.Service.Cancel(r.Context(), id, user.UserID)
	if err != nil {
		shared.FailLeave(w, err, requestID)
		return
	}

	h.audit(r, user, audit.ActionLeaveCancel, audit.EntityLeaveRequest, id, map[string]string{"status": t.From}, t)
	api.Success(w, t, requestID)
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func categoryNames() []string {
	out := make([]string, 0, len(leave.Categories))
	for _, c := range leave.Categories {
		out = append(out, string(c))
	}
	return out
}
