package leave

import (
	"context"
	"log/slog"
)

// FallbackStore applies mutations as separate reads and writes with no row
// locks. Two concurrent approvals against one balance can both pass the
// sufficiency check and over-decrement it; the status compare-and-set only
// keeps a single request from being processed twice. Use it only when
// AtomicStore is unavailable.
type FallbackStore struct {
	Repo BalanceRepository
}

func NewFallbackStore(repo BalanceRepository) *FallbackStore {
	return &FallbackStore{Repo: repo}
}

func (s *FallbackStore) Mode() string {
	return ModeFallback
}

func (s *FallbackStore) warn(op string, args ...any) {
	slog.Warn("leave mutation without row locks", append([]any{"operation", op}, args...)...)
}

func (s *FallbackStore) Submit(ctx context.Context, r Request) (Request, error) {
	return submit(ctx, s.Repo, r)
}

func (s *FallbackStore) Approve(ctx context.Context, d Decision) (Transition, error) {
	s.warn(OpApprove, "requestId", d.RequestID)
	return approve(ctx, s.Repo, d)
}

func (s *FallbackStore) Reject(ctx context.Context, d Decision) (Transition, error) {
	return reject(ctx, s.Repo, d)
}

func (s *FallbackStore) Cancel(ctx context.Context, d Decision) (Transition, error) {
	s.warn(OpCancel, "requestId", d.RequestID)
	return cancel(ctx, s.Repo, d)
}

func (s *FallbackStore) Grant(ctx context.Context, userID string, category Category, amount float64) (Balance, error) {
	s.warn(OpGrant, "userId", userID, "category", category)
	return grantBalance(ctx, s.Repo, userID, category, amount)
}

func (s *FallbackStore) CreditAccrual(ctx context.Context, c AccrualCredit, capHours float64) (AccrualResult, error) {
	s.warn(OpAccrual, "userId", c.UserID, "category", c.Category)
	return creditAccrual(ctx, s.Repo, c, capHours)
}

func (s *FallbackStore) GetRequest(ctx context.Context, id string) (Request, error) {
	return s.Repo.GetRequest(ctx, id)
}

func (s *FallbackStore) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error) {
	return s.Repo.ListRequests(ctx, userID, status, limit, offset)
}

func (s *FallbackStore) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	return s.Repo.ListBalances(ctx, userID)
}
