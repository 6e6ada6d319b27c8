package leave

import (
	"context"
	"log/slog"

	"hrportal/internal/platform/querier"
)

// AtomicStore runs every mutation in one Postgres transaction, locking the
// request row and then the balance row, so a balance row has at most one
// writer at a time.
type AtomicStore struct {
	DB querier.Querier
}

func NewAtomicStore(db querier.Querier) *AtomicStore {
	return &AtomicStore{DB: db}
}

func (s *AtomicStore) Mode() string {
	return ModeAtomic
}

func (s *AtomicStore) inTx(ctx context.Context, fn func(repo *Store) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	if err := fn(&Store{DB: tx, lockRows: true}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("leave transaction rollback failed", "err", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func (s *AtomicStore) Submit(ctx context.Context, r Request) (Request, error) {
	var out Request
	err := s.inTx(ctx, func(repo *Store) error {
		var err error
		out, err = submit(ctx, repo, r)
		return err
	})
	return out, err
}

func (s *AtomicStore) Approve(ctx context.Context, d Decision) (Transition, error) {
	return s.transition(ctx, d, approve)
}

func (s *AtomicStore) Reject(ctx context.Context, d Decision) (Transition, error) {
	return s.transition(ctx, d, reject)
}

func (s *AtomicStore) Cancel(ctx context.Context, d Decision) (Transition, error) {
	return s.transition(ctx, d, cancel)
}

func (s *AtomicStore) transition(ctx context.Context, d Decision, fn func(context.Context, BalanceRepository, Decision) (Transition, error)) (Transition, error) {
	var out Transition
	err := s.inTx(ctx, func(repo *Store) error {
		var err error
		out, err = fn(ctx, repo, d)
		return err
	})
	return out, err
}

func (s *AtomicStore) Grant(ctx context.Context, userID string, category Category, amount float64) (Balance, error) {
	var out Balance
	err := s.inTx(ctx, func(repo *Store) error {
		var err error
		out, err = grantBalance(ctx, repo, userID, category, amount)
		return err
	})
	return out, err
}

func (s *AtomicStore) CreditAccrual(ctx context.Context, c AccrualCredit, capHours float64) (AccrualResult, error) {
	var out AccrualResult
	err := s.inTx(ctx, func(repo *Store) error {
		var err error
		out, err = creditAccrual(ctx, repo, c, capHours)
		return err
	})
	return out, err
}

func (s *AtomicStore) GetRequest(ctx context.Context, id string) (Request, error) {
	return NewStore(s.DB).GetRequest(ctx, id)
}

func (s *AtomicStore) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error) {
	return NewStore(s.DB).ListRequests(ctx, userID, status, limit, offset)
}

func (s *AtomicStore) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	return NewStore(s.DB).ListBalances(ctx, userID)
}
