package leave

import (
	"context"
	"errors"
)

// The functions below are the read-check-write sequences shared by both
// stores. AtomicStore runs them against a repository bound to a single
// transaction whose reads take row locks; FallbackStore runs them directly.

func submit(ctx context.Context, repo BalanceRepository, r Request) (Request, error) {
	b, err := balanceFor(ctx, repo, r.UserID, r.Category)
	if err != nil {
		return Request{}, err
	}
	if err := checkSufficient(b, r); err != nil {
		return Request{}, err
	}
	if err := repo.CreateRequest(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func approve(ctx context.Context, repo BalanceRepository, d Decision) (Transition, error) {
	r, err := repo.GetRequest(ctx, d.RequestID)
	if err != nil {
		return Transition{}, err
	}
	from := r.Status
	if err := checkTransition(from, StatusApproved); err != nil {
		return Transition{}, err
	}
	b, err := balanceFor(ctx, repo, r.UserID, r.Category)
	if err != nil {
		return Transition{}, err
	}
	if err := checkSufficient(b, r); err != nil {
		return Transition{}, err
	}

	r = decide(r, StatusApproved, d)
	if err := repo.UpdateRequestStatus(ctx, r, from); err != nil {
		return Transition{}, err
	}
	b = consume(b, r)
	if err := repo.SaveBalance(ctx, b); err != nil {
		return Transition{}, err
	}
	return Transition{Request: r, From: from, Balance: &b, Amount: r.Category.Amount(r.Days), Unit: r.Category.Unit()}, nil
}

func reject(ctx context.Context, repo BalanceRepository, d Decision) (Transition, error) {
	r, err := repo.GetRequest(ctx, d.RequestID)
	if err != nil {
		return Transition{}, err
	}
	from := r.Status
	if err := checkTransition(from, StatusRejected); err != nil {
		return Transition{}, err
	}
	r = decide(r, StatusRejected, d)
	if err := repo.UpdateRequestStatus(ctx, r, from); err != nil {
		return Transition{}, err
	}
	return Transition{Request: r, From: from, Unit: r.Category.Unit()}, nil
}

func cancel(ctx context.Context, repo BalanceRepository, d Decision) (Transition, error) {
	r, err := repo.GetRequest(ctx, d.RequestID)
	if err != nil {
		return Transition{}, err
	}
	from := r.Status
	if err := checkTransition(from, StatusCancelled); err != nil {
		return Transition{}, err
	}

	var b Balance
	if from == StatusApproved {
		b, err = balanceFor(ctx, repo, r.UserID, r.Category)
		if err != nil {
			return Transition{}, err
		}
		if b, err = restore(b, r); err != nil {
			return Transition{}, err
		}
	}

	r = decide(r, StatusCancelled, d)
	if err := repo.UpdateRequestStatus(ctx, r, from); err != nil {
		return Transition{}, err
	}
	t := Transition{Request: r, From: from, Unit: r.Category.Unit()}
	if from != StatusApproved {
		return t, nil
	}
	if err := repo.SaveBalance(ctx, b); err != nil {
		return Transition{}, err
	}
	t.Balance = &b
	t.Amount = r.Category.Amount(r.Days)
	return t, nil
}

func grantBalance(ctx context.Context, repo BalanceRepository, userID string, category Category, amount float64) (Balance, error) {
	if err := validateGrant(userID, category, amount); err != nil {
		return Balance{}, err
	}
	if err := reserveBalance(ctx, repo, userID, category); err != nil {
		return Balance{}, err
	}
	b, err := balanceFor(ctx, repo, userID, category)
	if err != nil {
		return Balance{}, err
	}
	b, err = grant(b, amount)
	if err != nil {
		return Balance{}, err
	}
	if err := repo.SaveBalance(ctx, b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func creditAccrual(ctx context.Context, repo BalanceRepository, c AccrualCredit, capHours float64) (AccrualResult, error) {
	if !c.Category.IsHours() {
		return AccrualResult{}, newError(ErrValidation, "accrual credits apply to hour categories only")
	}
	if err := validateGrant(c.UserID, c.Category, c.Hours); err != nil {
		return AccrualResult{}, err
	}
	c.WorkDate = dateOnly(c.WorkDate)

	if err := reserveBalance(ctx, repo, c.UserID, c.Category); err != nil {
		return AccrualResult{}, err
	}
	b, err := balanceFor(ctx, repo, c.UserID, c.Category)
	if err != nil {
		return AccrualResult{}, err
	}
	b, credited, err := credit(b, c.Hours, capHours)
	if err != nil {
		return AccrualResult{}, err
	}
	c.Hours = credited

	inserted, err := repo.InsertAccrualCredit(ctx, c)
	if err != nil {
		return AccrualResult{}, err
	}
	if !inserted {
		return AccrualResult{Credit: c, Duplicate: true}, nil
	}
	if err := repo.SaveBalance(ctx, b); err != nil {
		return AccrualResult{}, err
	}
	return AccrualResult{Credit: c, Balance: &b}, nil
}

// rowReserver is implemented by repositories whose balance reads lock rows.
// Reserving first gives a brand-new balance a row to lock, so two writers
// cannot both start from an empty balance.
type rowReserver interface {
	ReserveBalance(ctx context.Context, userID string, category Category) error
}

func reserveBalance(ctx context.Context, repo BalanceRepository, userID string, category Category) error {
	if r, ok := repo.(rowReserver); ok {
		return r.ReserveBalance(ctx, userID, category)
	}
	return nil
}

// balanceFor loads a balance, treating a missing row as an empty one.
func balanceFor(ctx context.Context, repo BalanceRepository, userID string, category Category) (Balance, error) {
	b, err := repo.GetBalance(ctx, userID, category)
	if errors.Is(err, ErrNotFound) {
		return Balance{UserID: userID, Category: category}, nil
	}
	return b, err
}

func decide(r Request, status string, d Decision) Request {
	r.Status = status
	r.ApproverID = d.ActorID
	r.DecisionNote = d.Note
	at := d.At
	r.DecidedAt = &at
	r.UpdatedAt = at
	return r
}
