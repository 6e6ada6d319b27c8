package leave

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"hrportal/internal/platform/querier"
)

// Capability records, once at startup, whether the backend can run locked
// read-modify-write transactions.
type Capability struct {
	AtomicMutationSupported bool   `json:"atomicMutationSupported"`
	Reason                  string `json:"reason,omitempty"`
}

// atomicUnavailable is the complete set of backend errors that mean the
// atomic path cannot run. Any other probe failure is a startup error.
var atomicUnavailable = map[string]string{
	"25006": "read-only transaction",
	"0A000": "row locking not supported",
	"42501": "insufficient privilege to lock leave_balances",
}

func FallbackCapability(reason string) Capability {
	return Capability{AtomicMutationSupported: false, Reason: reason}
}

// ProbeCapability checks for a writable primary and tries a row lock on
// leave_balances inside a transaction that is always rolled back.
func ProbeCapability(ctx context.Context, db querier.Querier) (Capability, error) {
	var inRecovery bool
	if err := db.QueryRow(ctx, "SELECT pg_is_in_recovery()").Scan(&inRecovery); err != nil {
		return Capability{}, err
	}
	if inRecovery {
		return FallbackCapability("database is in recovery"), nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return Capability{}, err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("leave capability probe rollback failed", "err", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, "SELECT 1 FROM leave_balances LIMIT 1 FOR UPDATE"); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if reason, ok := atomicUnavailable[pgErr.Code]; ok {
				return FallbackCapability(reason), nil
			}
		}
		return Capability{}, err
	}
	return Capability{AtomicMutationSupported: true}, nil
}

// NewTransactionalStore picks the implementation for c. db may be nil when
// the backend has no transactional support at all.
func NewTransactionalStore(c Capability, db querier.Querier, repo BalanceRepository) TransactionalStore {
	if c.AtomicMutationSupported && db != nil {
		return NewAtomicStore(db)
	}
	slog.Warn("leave balance mutations running in fallback mode; concurrent approvals can over-decrement balances", "reason", c.Reason)
	return NewFallbackStore(repo)
}
