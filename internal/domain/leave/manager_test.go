package leave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/calendar"
	"hrportal/internal/domain/leave"
	"hrportal/internal/domain/policy"
	"hrportal/internal/domain/worktime"
	"hrportal/internal/platform/sqlite"
)

type recordingCalendar struct {
	mu     sync.Mutex
	events []calendar.Event
	err    error
}

func (c *recordingCalendar) Handoff(ctx context.Context, e calendar.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, ntype string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.types = append(n.types, ntype)
	return n.err
}

type recordingMetrics struct {
	ops []string
}

func (m *recordingMetrics) RecordLeaveMutation(mode, operation string, err error) {
	m.ops = append(m.ops, mode+"."+operation)
}

type fixture struct {
	store    *sqlite.Store
	manager  *leave.Manager
	calendar *recordingCalendar
	notifier *recordingNotifier
	metrics  *recordingMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cal := &recordingCalendar{}
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}
	txStore := leave.NewTransactionalStore(leave.FallbackCapability("sqlite"), nil, store)
	manager := leave.NewManager(txStore, &leave.Effects{Calendar: cal, Notifier: notifier}, metrics)
	manager.Now = func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) }
	return fixture{store: store, manager: manager, calendar: cal, notifier: notifier, metrics: metrics}
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func balanceOf(t *testing.T, f fixture, category leave.Category) leave.Balance {
	t.Helper()
	balances, err := f.manager.Balances(context.Background(), "u1")
	require.NoError(t, err)
	for _, b := range balances {
		if b.Category == category {
			return b
		}
	}
	t.Fatalf("no %s balance", category)
	return leave.Balance{}
}

func TestCompensatoryRequestExceedsHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategoryCompensatory, 10)
	require.NoError(t, err)

	_, err = f.manager.Submit(ctx, leave.SubmitInput{
		UserID:    "u1",
		Category:  leave.CategoryCompensatory,
		StartDate: day(7),
		EndDate:   day(8),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrInsufficientBalance))

	var leaveErr *leave.Error
	require.True(t, errors.As(err, &leaveErr))
	assert.Contains(t, leaveErr.Message, "16.00 hours")

	requests, total, err := f.manager.ListRequests(ctx, "u1", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, requests)
}

func TestAnnualApproveThenCancelRestoresUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategoryAnnual, 15)
	require.NoError(t, err)
	_, err = f.store.DB().Exec("UPDATE leave_balances SET used = 3 WHERE user_id = 'u1' AND category = 'annual'")
	require.NoError(t, err)

	req, err := f.manager.Submit(ctx, leave.SubmitInput{UserID: "u1", Category: leave.CategoryAnnual, StartDate: day(7), EndDate: day(7)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, balanceOf(t, f, leave.CategoryAnnual).Used)

	approved, err := f.manager.Approve(ctx, req.ID, "mgr-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Request.Status)
	assert.Equal(t, 4.0, balanceOf(t, f, leave.CategoryAnnual).Used)

	cancelled, err := f.manager.Cancel(ctx, req.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, cancelled.From)
	assert.Equal(t, 3.0, balanceOf(t, f, leave.CategoryAnnual).Used)

	stored, err := f.manager.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, stored.Status)
	require.NotNil(t, stored.DecidedAt)
}

func TestHourRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategorySubstitute, 20)
	require.NoError(t, err)

	req, err := f.manager.Submit(ctx, leave.SubmitInput{
		UserID: "u1", Category: leave.CategorySubstitute, StartDate: day(7), EndDate: day(8), EndHalf: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, req.Days)

	_, err = f.manager.Approve(ctx, req.ID, "mgr-1", "")
	require.NoError(t, err)
	assert.Equal(t, 8.0, *balanceOf(t, f, leave.CategorySubstitute).AvailableHours)

	_, err = f.manager.Cancel(ctx, req.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, *balanceOf(t, f, leave.CategorySubstitute).AvailableHours)
}

func TestStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategorySick, 5)
	require.NoError(t, err)

	submit := func() leave.Request {
		r, err := f.manager.Submit(ctx, leave.SubmitInput{UserID: "u1", Category: leave.CategorySick, StartDate: day(9), EndDate: day(9)})
		require.NoError(t, err)
		return r
	}

	rejected := submit()
	_, err = f.manager.Reject(ctx, rejected.ID, "mgr-1", "busy week")
	require.NoError(t, err)
	_, err = f.manager.Approve(ctx, rejected.ID, "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
	_, err = f.manager.Cancel(ctx, rejected.ID, "u1")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	approved := submit()
	_, err = f.manager.Approve(ctx, approved.ID, "mgr-1", "")
	require.NoError(t, err)
	_, err = f.manager.Approve(ctx, approved.ID, "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
	_, err = f.manager.Reject(ctx, approved.ID, "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	withdrawn := submit()
	_, err = f.manager.Cancel(ctx, withdrawn.ID, "u1")
	require.NoError(t, err)
	_, err = f.manager.Cancel(ctx, withdrawn.ID, "u1")
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	assert.Equal(t, 1.0, balanceOf(t, f, leave.CategorySick).Used)

	_, err = f.manager.Approve(ctx, "missing", "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrNotFound)
	_, err = f.manager.Approve(ctx, approved.ID, "", "")
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestUninitializedAndInvalidHourBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := leave.SubmitInput{UserID: "u1", Category: leave.CategoryCompensatory, StartDate: day(7), EndDate: day(7)}

	_, err := f.manager.Submit(ctx, in)
	assert.ErrorIs(t, err, leave.ErrUninitializedBalance)

	_, err = f.store.DB().Exec(`INSERT INTO leave_balances (user_id, category, granted, used, available_hours, updated_at)
		VALUES ('u1', 'compensatory', 0, 0, 'twelve', '2025-04-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = f.manager.Submit(ctx, in)
	assert.ErrorIs(t, err, leave.ErrInvalidBalance)

	b := balanceOf(t, f, leave.CategoryCompensatory)
	payload, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"invalid":true`)
}

func TestCancelKeepsCorruptHourPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategoryCompensatory, 16)
	require.NoError(t, err)
	req, err := f.manager.Submit(ctx, leave.SubmitInput{UserID: "u1", Category: leave.CategoryCompensatory, StartDate: day(7), EndDate: day(7)})
	require.NoError(t, err)
	_, err = f.manager.Approve(ctx, req.ID, "mgr-1", "")
	require.NoError(t, err)

	_, err = f.store.DB().Exec("UPDATE leave_balances SET available_hours = 'garbage' WHERE user_id = 'u1' AND category = 'compensatory'")
	require.NoError(t, err)

	_, err = f.manager.Cancel(ctx, req.ID, "u1")
	assert.ErrorIs(t, err, leave.ErrInvalidBalance)

	got, err := f.manager.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	payload, err := balanceOf(t, f, leave.CategoryCompensatory).MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"invalid":true`)
}

func TestSideEffectsFollowTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.manager.Grant(ctx, "u1", leave.CategoryAnnual, 10)
	require.NoError(t, err)

	req, err := f.manager.Submit(ctx, leave.SubmitInput{UserID: "u1", Category: leave.CategoryAnnual, StartDate: day(7), EndDate: day(8)})
	require.NoError(t, err)
	_, err = f.manager.Approve(ctx, req.ID, "mgr-1", "")
	require.NoError(t, err)
	_, err = f.manager.Cancel(ctx, req.ID, "u1")
	require.NoError(t, err)

	require.Len(t, f.calendar.events, 2)
	assert.Equal(t, calendar.ActionCreate, f.calendar.events[0].Action)
	assert.Equal(t, req.ID, f.calendar.events[0].SourceID)
	assert.Equal(t, 2.0, f.calendar.events[0].Amount)
	assert.Equal(t, calendar.ActionRemove, f.calendar.events[1].Action)
	assert.Equal(t, []string{"leave_submitted", "leave_approved", "leave_cancelled"}, f.notifier.types)
	assert.Equal(t, []string{"fallback.grant", "fallback.submit", "fallback.approve", "fallback.cancel"}, f.metrics.ops)
}

func TestSideEffectFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.calendar.err = errors.New("calendar unavailable")
	f.notifier.err = errors.New("smtp down")
	_, err := f.manager.Grant(ctx, "u1", leave.CategoryAnnual, 10)
	require.NoError(t, err)

	req, err := f.manager.Submit(ctx, leave.SubmitInput{UserID: "u1", Category: leave.CategoryAnnual, StartDate: day(7), EndDate: day(7)})
	require.NoError(t, err)
	tr, err := f.manager.Approve(ctx, req.ID, "mgr-1", "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, tr.Request.Status)
	assert.Equal(t, 1.0, balanceOf(t, f, leave.CategoryAnnual).Used)
}

func TestCreditWorkAccrualFromSaturdayShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	set := policy.Defaults()

	saturday := day(5)
	breakdown, err := worktime.ComputeRecord(worktime.AttendanceRecord{Date: saturday, CheckIn: "09:00", CheckOut: "18:00"}, set)
	require.NoError(t, err)
	require.Equal(t, 8.0, breakdown.SubstituteHours)

	res, err := f.manager.CreditWorkAccrual(ctx, "u1", breakdown, set.Accrual)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, leave.CategorySubstitute, res.Credit.Category)
	assert.Equal(t, 8.0, *balanceOf(t, f, leave.CategorySubstitute).AvailableHours)

	res, err = f.manager.CreditWorkAccrual(ctx, "u1", breakdown, set.Accrual)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 8.0, *balanceOf(t, f, leave.CategorySubstitute).AvailableHours)
	assert.Equal(t, []string{"accrual_credited"}, f.notifier.types)

	weekday, err := worktime.ComputeRecord(worktime.AttendanceRecord{Date: day(7), CheckIn: "09:00", CheckOut: "18:00"}, set)
	require.NoError(t, err)
	res, err = f.manager.CreditWorkAccrual(ctx, "u1", weekday, set.Accrual)
	require.NoError(t, err)
	assert.Nil(t, res.Balance)
}
