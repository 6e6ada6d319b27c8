package worktimehandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/leave"
	"hrportal/internal/domain/payroll"
	"hrportal/internal/domain/policy"
	"hrportal/internal/domain/worktime"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

const maxRecordsPerRequest = 62

// PolicySource hands out the policy snapshot in effect.
type PolicySource interface {
	Current() policy.Set
}

// AccrualCrediter credits leave hours earned by one computed work day.
type AccrualCrediter interface {
	CreditWorkAccrual(ctx context.Context, userID string, b worktime.Breakdown, accrual policy.LeaveAccrual) (leave.AccrualResult, error)
}

type Handler struct {
	Policies PolicySource
	Leave    AccrualCrediter
	Audit    *audit.Service
}

func NewHandler(policies PolicySource, crediter AccrualCrediter, auditSvc *audit.Service) *Handler {
	return &Handler{Policies: policies, Leave: crediter, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/worktime", func(r chi.Router) {
		r.With(middleware.RequireRole()).Post("/compute", h.handleCompute)
		r.With(middleware.RequireRole()).Post("/break-minutes", h.handleBreakMinutes)
		r.With(middleware.RequireRole()).Post("/dinner-check", h.handleDinnerCheck)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR)).Post("/period", h.handlePeriod)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/accruals", h.handleAccruals)
	})
}

type recordPayload struct {
	Date         string `json:"date"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	HadDinner    bool   `json:"hadDinner"`
	LunchMinutes *int   `json:"lunchMinutes,omitempty"`
}

func (p recordPayload) record(v *shared.Validator, field string) worktime.AttendanceRecord {
	date, _ := v.Date(field+"date", p.Date)
	return worktime.AttendanceRecord{Date: date, CheckIn: p.CheckIn, CheckOut: p.CheckOut, HadDinner: p.HadDinner}
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload recordPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	rec := payload.record(v, "")
	if payload.LunchMinutes != nil && *payload.LunchMinutes < 0 {
		v.Add("lunchMinutes", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	set := h.Policies.Current()
	var (
		out worktime.Breakdown
		err error
	)
	if payload.LunchMinutes != nil {
		out, err = worktime.Compute(rec.Date, rec.CheckIn, rec.CheckOut, *payload.LunchMinutes, set)
	} else {
		out, err = worktime.ComputeRecord(rec, set)
	}
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}
	api.Success(w, out, requestID)
}

type shiftPayload struct {
	CheckIn             string `json:"checkIn"`
	CheckOut            string `json:"checkOut"`
	HadDinner           bool   `json:"hadDinner"`
	CurrentDinnerStatus string `json:"currentDinnerStatus"`
}

func (h *Handler) handleBreakMinutes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload shiftPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	p := h.Policies.Current().OvertimeNight
	minutes, err := worktime.BreakMinutesWithPolicy(payload.CheckIn, payload.CheckOut, payload.HadDinner, p)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}
	autoDinner, err := worktime.AutoDetectDinnerFlagWithPolicy(payload.CheckIn, payload.CheckOut, p)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"breakMinutes": minutes, "autoDinner": autoDinner}, requestID)
}

func (h *Handler) handleDinnerCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload shiftPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	check, err := worktime.DetectMissingDinnerWithPolicy(payload.CheckIn, payload.CheckOut, payload.CurrentDinnerStatus, payload.HadDinner, h.Policies.Current().OvertimeNight)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}
	api.Success(w, check, requestID)
}

type periodPayload struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Records      []recordPayload `json:"records"`
	HourlyRate   float64         `json:"hourlyRate"`
	OvertimeRate float64         `json:"overtimeRate"`
	NightRate    float64         `json:"nightRate"`
	// BaseSalary and Deductions only apply when HourlyRate is set.
	BaseSalary float64             `json:"baseSalary"`
	Deductions []payroll.InputLine `json:"deductions"`
}

type periodResult struct {
	Summary worktime.PeriodSummary `json:"summary"`
	Days    []worktime.Breakdown   `json:"days"`
	Pay     *payroll.Statement     `json:"pay,omitempty"`
}

func (h *Handler) handlePeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload periodPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	start, _ := v.Date("start", payload.Start)
	end, _ := v.Date("end", payload.End)
	v.DateOrder("start", start, "end", end)
	if len(payload.Records) > maxRecordsPerRequest {
		v.Add("records", "too many records")
	}
	records := make([]worktime.AttendanceRecord, 0, len(payload.Records))
	for i, p := range payload.Records {
		records = append(records, p.record(v, "records["+strconv.Itoa(i)+"]."))
	}
	if payload.HourlyRate < 0 {
		v.Add("hourlyRate", "must not be negative")
	}
	if payload.BaseSalary < 0 {
		v.Add("baseSalary", "must not be negative")
	}
	for i, d := range payload.Deductions {
		field := "deductions[" + strconv.Itoa(i) + "]"
		if d.Type != payroll.ElementTypeDeduction {
			v.Add(field+".type", "must be deduction")
		}
		if d.Amount < 0 {
			v.Add(field+".amount", "must not be negative")
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	set := h.Policies.Current()
	days, err := computeAll(records, set)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}
	summary, err := worktime.SummarizePeriod(start, end, days, set)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}

	out := periodResult{Summary: summary, Days: days}
	if payload.HourlyRate > 0 {
		rates := payroll.Rates{
			HourlyRate:   payload.HourlyRate,
			OvertimeRate: orDefault(payload.OvertimeRate, set.OvertimeNight.OvertimeRate),
			NightRate:    orDefault(payload.NightRate, set.OvertimeNight.NightRate),
		}
		pay, err := payroll.PeriodPay(summary, rates, payload.BaseSalary, payload.Deductions)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
			return
		}
		out.Pay = &pay
	}
	api.Success(w, out, requestID)
}

type accrualPayload struct {
	UserID  string          `json:"userId"`
	Records []recordPayload `json:"records"`
}

func (h *Handler) handleAccruals(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload accrualPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "is required")
	if len(payload.Records) == 0 {
		v.Add("records", "at least one record is required")
	}
	if len(payload.Records) > maxRecordsPerRequest {
		v.Add("records", "too many records")
	}
	records := make([]worktime.AttendanceRecord, 0, len(payload.Records))
	for i, p := range payload.Records {
		records = append(records, p.record(v, "records["+strconv.Itoa(i)+"]."))
	}
	if v.Reject(w, requestID) {
		return
	}

	set := h.Policies.Current()
	days, err := computeAll(records, set)
	if err != nil {
		shared.FailWorkTime(w, err, requestID)
		return
	}

	results := make([]leave.AccrualResult, 0, len(days))
	for _, day := range days {
		res, err := h.Leave.CreditWorkAccrual(r.Context(), strings.TrimSpace(payload.UserID), day, set.Accrual)
		if err != nil {
			shared.FailLeave(w, err, requestID)
			return
		}
		results = append(results, res)
		if res.Credit.Hours > 0 && !res.Duplicate {
			h.audit(r, user.UserID, payload.UserID+":"+string(res.Credit.Category), res.Credit)
		}
	}
	api.Success(w, results, requestID)
}

func (h *Handler) audit(r *http.Request, actorID, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, audit.ActionAccrual, audit.EntityLeaveBalance, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit leave.accrual failed", "err", err)
	}
}

func computeAll(records []worktime.AttendanceRecord, set policy.Set) ([]worktime.Breakdown, error) {
	days := make([]worktime.Breakdown, 0, len(records))
	for _, rec := range records {
		b, err := worktime.ComputeRecord(rec, set)
		if err != nil {
			return nil, err
		}
		days = append(days, b)
	}
	return days, nil
}

func orDefault(value, fallback float64) float64 {
	if value > 0 {
		return value
	}
	return fallback
}
