package leave

import "context"

// BalanceRepository is the row-level persistence used by the mutation
// sequences. Postgres and SQLite both implement it; Store additionally runs
// it inside one locked transaction for AtomicStore.
type BalanceRepository interface {
	GetBalance(ctx context.Context, userID string, category Category) (Balance, error)
	SaveBalance(ctx context.Context, b Balance) error
	ListBalances(ctx context.Context, userID string) ([]Balance, error)
	CreateRequest(ctx context.Context, r Request) error
	GetRequest(ctx context.Context, id string) (Request, error)
	// UpdateRequestStatus moves r to its new status only if the stored status
	// still equals from. It returns ErrAlreadyProcessed otherwise.
	UpdateRequestStatus(ctx context.Context, r Request, from string) error
	ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error)
	// InsertAccrualCredit returns false when the credit was already recorded.
	InsertAccrualCredit(ctx context.Context, c AccrualCredit) (bool, error)
}

// TransactionalStore applies leave lifecycle events to requests and balances.
type TransactionalStore interface {
	Mode() string
	Submit(ctx context.Context, r Request) (Request, error)
	Approve(ctx context.Context, d Decision) (Transition, error)
	Reject(ctx context.Context, d Decision) (Transition, error)
	Cancel(ctx context.Context, d Decision) (Transition, error)
	Grant(ctx context.Context, userID string, category Category, amount float64) (Balance, error)
	CreditAccrual(ctx context.Context, c AccrualCredit, capHours float64) (AccrualResult, error)
	GetRequest(ctx context.Context, id string) (Request, error)
	ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error)
	ListBalances(ctx context.Context, userID string) ([]Balance, error)
}
