package leave

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryRepo struct {
	balances map[string]Balance
	requests map[string]Request
	credits  map[string]bool
	// beforeStatusUpdate runs once, between the reads and the first write of a mutation.
	beforeStatusUpdate func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{balances: map[string]Balance{}, requests: map[string]Request{}, credits: map[string]bool{}}
}

func balanceKey(userID string, category Category) string {
	return userID + "/" + string(category)
}

func (m *memoryRepo) GetBalance(ctx context.Context, userID string, category Category) (Balance, error) {
	b, ok := m.balances[balanceKey(userID, category)]
	if !ok {
		return Balance{}, newError(ErrNotFound, "no balance")
	}
	return b, nil
}

func (m *memoryRepo) SaveBalance(ctx context.Context, b Balance) error {
	m.balances[balanceKey(b.UserID, b.Category)] = b
	return nil
}

func (m *memoryRepo) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	var out []Balance
	for _, b := range m.balances {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryRepo) CreateRequest(ctx context.Context, r Request) error {
	m.requests[r.ID] = r
	return nil
}

func (m *memoryRepo) GetRequest(ctx context.Context, id string) (Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return Request{}, newError(ErrNotFound, "no request")
	}
	return r, nil
}

func (m *memoryRepo) UpdateRequestStatus(ctx context.Context, r Request, from string) error {
	if hook := m.beforeStatusUpdate; hook != nil {
		m.beforeStatusUpdate = nil
		hook()
	}
	if m.requests[r.ID].Status != from {
		return newError(ErrAlreadyProcessed, "changed")
	}
	m.requests[r.ID] = r
	return nil
}

func (m *memoryRepo) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error) {
	var out []Request
	for _, r := range m.requests {
		if r.UserID == userID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) InsertAccrualCredit(ctx context.Context, c AccrualCredit) (bool, error) {
	key := c.UserID + c.WorkDate.Format("2006-01-02") + string(c.Category)
	if m.credits[key] {
		return false, nil
	}
	m.credits[key] = true
	return true, nil
}

func pendingRequest(id string, category Category, days float64) Request {
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	return Request{ID: id, UserID: "u1", Category: category, StartDate: day, EndDate: day, Days: days, Status: StatusPending}
}

func decision(id string) Decision {
	return Decision{RequestID: id, ActorID: "mgr", At: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)}
}

func TestSubmitDoesNotMutateBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategoryAnnual)] = Balance{UserID: "u1", Category: CategoryAnnual, Granted: 15, Used: 3}

	if _, err := submit(context.Background(), repo, pendingRequest("r1", CategoryAnnual, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.balances[balanceKey("u1", CategoryAnnual)].Used; got != 3 {
		t.Fatalf("expected used to stay 3, got %v", got)
	}
	if repo.requests["r1"].Status != StatusPending {
		t.Fatalf("expected pending request, got %s", repo.requests["r1"].Status)
	}
}

func TestSubmitMissingDayBalanceIsInsufficient(t *testing.T) {
	repo := newMemoryRepo()
	_, err := submit(context.Background(), repo, pendingRequest("r1", CategorySick, 1))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if len(repo.requests) != 0 {
		t.Fatal("rejected submission must not be persisted")
	}
}

func TestApproveRecordsDecision(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategorySubstitute)] = Balance{UserID: "u1", Category: CategorySubstitute, AvailableHours: hours(20)}
	repo.requests["r1"] = pendingRequest("r1", CategorySubstitute, 1)

	d := decision("r1")
	d.Note = "enjoy"
	tr, err := approve(context.Background(), repo, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.From != StatusPending || tr.Amount != 8 || tr.Unit != UnitHours {
		t.Fatalf("unexpected transition %+v", tr)
	}
	stored := repo.requests["r1"]
	if stored.Status != StatusApproved || stored.ApproverID != "mgr" || stored.DecisionNote != "enjoy" || stored.DecidedAt == nil {
		t.Fatalf("unexpected stored request %+v", stored)
	}
	if got := *repo.balances[balanceKey("u1", CategorySubstitute)].AvailableHours; got != 12 {
		t.Fatalf("expected 12 hours left, got %v", got)
	}
}

func TestApproveRevalidatesBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategoryAnnual)] = Balance{UserID: "u1", Category: CategoryAnnual, Granted: 1, Used: 1}
	repo.requests["r1"] = pendingRequest("r1", CategoryAnnual, 1)

	if _, err := approve(context.Background(), repo, decision("r1")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if repo.requests["r1"].Status != StatusPending {
		t.Fatal("failed approval must leave the request pending")
	}
}

func TestCancelPendingLeavesBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategoryAnnual)] = Balance{UserID: "u1", Category: CategoryAnnual, Granted: 15, Used: 3}
	repo.requests["r1"] = pendingRequest("r1", CategoryAnnual, 1)

	tr, err := cancel(context.Background(), repo, decision("r1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Balance != nil || tr.Amount != 0 {
		t.Fatalf("expected no balance change, got %+v", tr)
	}
	if repo.balances[balanceKey("u1", CategoryAnnual)].Used != 3 {
		t.Fatal("expected balance untouched")
	}
}

func TestRejectApprovedIsAlreadyProcessed(t *testing.T) {
	repo := newMemoryRepo()
	r := pendingRequest("r1", CategoryAnnual, 1)
	r.Status = StatusApproved
	repo.requests["r1"] = r

	if _, err := reject(context.Background(), repo, decision("r1")); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestMissingRequestIsNotFound(t *testing.T) {
	if _, err := approve(context.Background(), newMemoryRepo(), decision("nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFallbackStatusCheckStopsDoubleApproval(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategoryAnnual)] = Balance{UserID: "u1", Category: CategoryAnnual, Granted: 15, Used: 0}
	repo.requests["r1"] = pendingRequest("r1", CategoryAnnual, 2)
	store := NewFallbackStore(repo)

	// a second approver finishes while the first is between its reads and writes
	repo.beforeStatusUpdate = func() {
		if _, err := approve(context.Background(), repo, decision("r1")); err != nil {
			t.Fatalf("inner approval failed: %v", err)
		}
	}
	_, err := store.Approve(context.Background(), decision("r1"))
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if got := repo.balances[balanceKey("u1", CategoryAnnual)].Used; got != 2 {
		t.Fatalf("expected a single deduction, got used %v", got)
	}
}

func TestFallbackStaleReadOverdraws(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances[balanceKey("u1", CategoryAnnual)] = Balance{UserID: "u1", Category: CategoryAnnual, Granted: 2, Used: 0}
	repo.requests["r1"] = pendingRequest("r1", CategoryAnnual, 2)
	repo.requests["r2"] = pendingRequest("r2", CategoryAnnual, 2)
	store := NewFallbackStore(repo)

	repo.beforeStatusUpdate = func() {
		if _, err := approve(context.Background(), repo, decision("r2")); err != nil {
			t.Fatalf("inner approval failed: %v", err)
		}
	}
	if _, err := store.Approve(context.Background(), decision("r1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// both approvals passed the check against remaining=2; the later write wins
	if repo.requests["r1"].Status != StatusApproved || repo.requests["r2"].Status != StatusApproved {
		t.Fatal("expected both requests approved")
	}
	if got := repo.balances[balanceKey("u1", CategoryAnnual)].Used; got != 2 {
		t.Fatalf("expected lost update to leave used at 2, got %v", got)
	}
	if store.Mode() != ModeFallback {
		t.Fatalf("expected fallback mode, got %s", store.Mode())
	}
}

func TestCreditAccrualIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	c := AccrualCredit{UserID: "u1", WorkDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Category: CategorySubstitute, Hours: 9.5}

	res, err := creditAccrual(context.Background(), repo, c, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duplicate || *res.Balance.AvailableHours != 9.5 {
		t.Fatalf("unexpected first credit %+v", res)
	}

	res, err = creditAccrual(context.Background(), repo, c, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Duplicate {
		t.Fatal("expected duplicate credit")
	}
	if got := *repo.balances[balanceKey("u1", CategorySubstitute)].AvailableHours; got != 9.5 {
		t.Fatalf("expected 9.5 hours after duplicate, got %v", got)
	}
}

func TestCreditAccrualRejectsDayCategory(t *testing.T) {
	c := AccrualCredit{UserID: "u1", WorkDate: time.Now(), Category: CategoryAnnual, Hours: 8}
	if _, err := creditAccrual(context.Background(), newMemoryRepo(), c, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGrantInitializesHourPool(t *testing.T) {
	repo := newMemoryRepo()
	b, err := grantBalance(context.Background(), repo, "u1", CategoryCompensatory, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvailableHours == nil || *b.AvailableHours != 10 {
		t.Fatalf("expected 10 hours, got %+v", b)
	}
	if _, err := grantBalance(context.Background(), repo, "u1", CategoryCompensatory, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
