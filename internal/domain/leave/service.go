package leave

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrportal/internal/domain/policy"
	"hrportal/internal/domain/worktime"
)

// MutationRecorder counts mutations per store mode.
type MutationRecorder interface {
	RecordLeaveMutation(mode, operation string, err error)
}

// Manager is the entry point for leave lifecycle events. It validates input,
// delegates the balance mutation to the selected TransactionalStore and then
// fires side effects for committed transitions.
type Manager struct {
	Store   TransactionalStore
	Effects *Effects
	Metrics MutationRecorder
	Now     func() time.Time
}

func NewManager(store TransactionalStore, effects *Effects, metrics MutationRecorder) *Manager {
	return &Manager{Store: store, Effects: effects, Metrics: metrics, Now: time.Now}
}

func (m *Manager) Mode() string {
	return m.Store.Mode()
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

func (m *Manager) record(op string, err error) {
	if m.Metrics != nil {
		m.Metrics.RecordLeaveMutation(m.Store.Mode(), op, err)
	}
}

// Submit validates and persists a pending request. Balances are checked but never changed.
func (m *Manager) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	r, err := NewRequest(in, uuid.NewString(), m.now())
	if err != nil {
		return Request{}, err
	}
	r, err = m.Store.Submit(ctx, r)
	m.record(OpSubmit, err)
	if err != nil {
		return Request{}, err
	}
	m.Effects.Submitted(ctx, r)
	return r, nil
}

func (m *Manager) Approve(ctx context.Context, requestID, approverID, note string) (Transition, error) {
	d, err := m.decision(requestID, approverID, note)
	if err != nil {
		return Transition{}, err
	}
	t, err := m.Store.Approve(ctx, d)
	m.record(OpApprove, err)
	if err != nil {
		return Transition{}, err
	}
	m.Effects.Approved(ctx, t)
	return t, nil
}

func (m *Manager) Reject(ctx context.Context, requestID, approverID, note string) (Transition, error) {
	d, err := m.decision(requestID, approverID, note)
	if err != nil {
		return Transition{}, err
	}
	t, err := m.Store.Reject(ctx, d)
	m.record(OpReject, err)
	if err != nil {
		return Transition{}, err
	}
	m.Effects.Rejected(ctx, t)
	return t, nil
}

func (m *Manager) Cancel(ctx context.Context, requestID, actorID string) (Transition, error) {
	d, err := m.decision(requestID, actorID, "")
	if err != nil {
		return Transition{}, err
	}
	t, err := m.Store.Cancel(ctx, d)
	m.record(OpCancel, err)
	if err != nil {
		return Transition{}, err
	}
	m.Effects.Cancelled(ctx, t)
	return t, nil
}

func (m *Manager) Grant(ctx context.Context, userID string, category Category, amount float64) (Balance, error) {
	b, err := m.Store.Grant(ctx, userID, category, amount)
	m.record(OpGrant, err)
	return b, err
}

// CreditWorkAccrual credits the substitute or compensatory hours earned by
// one computed work day. Weekday breakdowns credit nothing. The credit is
// recorded once per user and date; repeats report Duplicate.
func (m *Manager) CreditWorkAccrual(ctx context.Context, userID string, b worktime.Breakdown, accrual policy.LeaveAccrual) (AccrualResult, error) {
	c := AccrualCredit{UserID: userID, WorkDate: b.Date}
	switch {
	case b.SubstituteHours > 0:
		c.Category, c.Hours = CategorySubstitute, b.SubstituteHours
	case b.CompensatoryHours > 0:
		c.Category, c.Hours = CategoryCompensatory, b.CompensatoryHours
	default:
		return AccrualResult{Credit: c}, nil
	}
	res, err := m.Store.CreditAccrual(ctx, c, accrual.MaxBalanceHours)
	m.record(OpAccrual, err)
	if err != nil {
		return AccrualResult{}, err
	}
	m.Effects.Credited(ctx, res)
	return res, nil
}

func (m *Manager) Get(ctx context.Context, requestID string) (Request, error) {
	if strings.TrimSpace(requestID) == "" {
		return Request{}, newError(ErrValidation, "request id is required")
	}
	return m.Store.GetRequest(ctx, requestID)
}

func (m *Manager) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error) {
	return m.Store.ListRequests(ctx, userID, status, limit, offset)
}

func (m *Manager) Balances(ctx context.Context, userID string) ([]Balance, error) {
	return m.Store.ListBalances(ctx, userID)
}

func (m *Manager) decision(requestID, actorID, note string) (Decision, error) {
	if strings.TrimSpace(requestID) == "" {
		return Decision{}, newError(ErrValidation, "request id is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return Decision{}, newError(ErrValidation, "actor is required")
	}
	return Decision{RequestID: requestID, ActorID: actorID, Note: strings.TrimSpace(note), At: m.now()}, nil
}
