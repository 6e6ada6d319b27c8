package leave

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrportal/internal/platform/querier"
)

// Store is the Postgres BalanceRepository. A Store bound to a transaction
// with lockRows set reads balance and request rows FOR UPDATE.
type Store struct {
	DB       querier.Querier
	lockRows bool
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) forUpdate(query string) string {
	if s.lockRows {
		return query + " FOR UPDATE"
	}
	return query
}

var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P01": true, // admin_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
}

// classify maps backend failures onto the leave error taxonomy. Errors it
// does not recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return WrapError(ErrNotFound, err, "not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(ErrTransientBackend, err, "backend timed out")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientCodes[pgErr.Code] || strings.HasPrefix(pgErr.Code, "08") {
			return WrapError(ErrTransientBackend, err, "backend temporarily unavailable")
		}
		if pgErr.Code == "23514" {
			return WrapError(ErrInsufficientBalance, err, "balance would become negative")
		}
		return err
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return WrapError(ErrTransientBackend, err, "backend temporarily unavailable")
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return WrapError(ErrTransientBackend, err, "backend unreachable")
	}
	return err
}
