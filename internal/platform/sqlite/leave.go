package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"time"

	"hrportal/internal/domain/leave"
)

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return leave.WrapError(leave.ErrNotFound, err, "not found")
	case isBusy(err):
		return leave.WrapError(leave.ErrTransientBackend, err, "database is busy")
	case isCheckViolation(err):
		return leave.WrapError(leave.ErrInsufficientBalance, err, "balance would become negative")
	}
	return err
}

// availableHours reads the stored pool. A value that is present but not a
// finite number comes back as NaN so the leave package can reject it.
func availableHours(raw sql.NullString) *float64 {
	if !raw.Valid {
		return nil
	}
	hours, err := strconv.ParseFloat(raw.String, 64)
	if err != nil {
		hours = math.NaN()
	}
	return &hours
}

func scanBalance(row interface{ Scan(...any) error }) (leave.Balance, error) {
	var b leave.Balance
	var category, updatedAt string
	var hours sql.NullString
	if err := row.Scan(&b.UserID, &category, &b.Granted, &b.Used, &hours, &updatedAt); err != nil {
		return leave.Balance{}, err
	}
	b.Category = leave.Category(category)
	b.AvailableHours = availableHours(hours)
	t, err := parseTime(updatedAt)
	if err != nil {
		return leave.Balance{}, err
	}
	b.UpdatedAt = t
	return b, nil
}

const balanceColumns = "user_id, category, granted, used, CAST(available_hours AS TEXT), updated_at"

func (s *Store) GetBalance(ctx context.Context, userID string, category leave.Category) (leave.Balance, error) {
	b, err := scanBalance(s.db.QueryRowContext(ctx,
		"SELECT "+balanceColumns+" FROM leave_balances WHERE user_id = ? AND category = ?", userID, string(category)))
	if err != nil {
		return leave.Balance{}, classify(err)
	}
	return b, nil
}

func (s *Store) SaveBalance(ctx context.Context, b leave.Balance) error {
	var hours any
	if b.AvailableHours != nil {
		hours = *b.AvailableHours
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (user_id, category, granted, used, available_hours, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category) DO UPDATE SET
			granted = excluded.granted,
			used = excluded.used,
			available_hours = excluded.available_hours,
			updated_at = excluded.updated_at
	`, b.UserID, string(b.Category), b.Granted, b.Used, hours, formatTime(time.Now()))
	return classify(err)
}

func (s *Store) ListBalances(ctx context.Context, userID string) ([]leave.Balance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+balanceColumns+" FROM leave_balances WHERE user_id = ? ORDER BY category", userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, classify(rows.Err())
}

func (s *Store) CreateRequest(ctx context.Context, r leave.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, user_id, category, start_date, end_date, start_half, end_half, days, reason, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, string(r.Category), r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout),
		r.StartHalf, r.EndHalf, r.Days, nullString(r.Reason), r.Status, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	return classify(err)
}

const requestColumns = `id, user_id, category, start_date, end_date, start_half, end_half, days,
	COALESCE(reason, ''), status, COALESCE(approver_id, ''), COALESCE(decision_note, ''),
	decided_at, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (leave.Request, error) {
	var r leave.Request
	var category, start, end, createdAt, updatedAt string
	var decidedAt sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &category, &start, &end, &r.StartHalf, &r.EndHalf, &r.Days,
		&r.Reason, &r.Status, &r.ApproverID, &r.DecisionNote, &decidedAt, &createdAt, &updatedAt); err != nil {
		return leave.Request{}, err
	}
	r.Category = leave.Category(category)

	var err error
	if r.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return leave.Request{}, err
	}
	if r.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return leave.Request{}, err
	}
	if r.DecidedAt, err = parseNullTime(decidedAt); err != nil {
		return leave.Request{}, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return leave.Request{}, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return leave.Request{}, err
	}
	return r, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (leave.Request, error) {
	r, err := scanRequest(s.db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = ?", id))
	if err != nil {
		return leave.Request{}, classify(err)
	}
	return r, nil
}

func (s *Store) UpdateRequestStatus(ctx context.Context, r leave.Request, from string) error {
	var decidedAt sql.NullString
	if r.DecidedAt != nil {
		decidedAt = nullString(formatTime(*r.DecidedAt))
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, approver_id = ?, decision_note = ?, decided_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, r.Status, nullString(r.ApproverID), nullString(r.DecisionNote), decidedAt, formatTime(r.UpdatedAt), r.ID, from)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leave.WrapError(leave.ErrAlreadyProcessed, nil, "request "+r.ID+" is no longer "+from)
	}
	return nil
}

func (s *Store) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]leave.Request, int, error) {
	where := " WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM leave_requests"+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM leave_requests"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	requests := make([]leave.Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, r)
	}
	return requests, total, classify(rows.Err())
}

func (s *Store) InsertAccrualCredit(ctx context.Context, c leave.AccrualCredit) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accrual_credits (user_id, work_date, category, hours, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, work_date, category) DO NOTHING
	`, c.UserID, c.WorkDate.Format(dateLayout), string(c.Category), c.Hours, formatTime(time.Now()))
	if err != nil {
		return false, classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
