package leave

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) GetBalance(ctx context.Context, userID string, category Category) (Balance, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, s.forUpdate(`
    SELECT user_id, category, granted, used, available_hours, updated_at
    FROM leave_balances
    WHERE user_id = $1 AND category = $2
  `), userID, string(category)).Scan(&b.UserID, &b.Category, &b.Granted, &b.Used, &b.AvailableHours, &b.UpdatedAt)
	if err != nil {
		return Balance{}, classify(err)
	}
	return b, nil
}

// ReserveBalance inserts an empty balance row when none exists. It only acts
// on a Store that locks rows.
func (s *Store) ReserveBalance(ctx context.Context, userID string, category Category) error {
	if !s.lockRows {
		return nil
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (user_id, category, granted, used, available_hours, updated_at)
    VALUES ($1,$2,0,0,NULL,now())
    ON CONFLICT (user_id, category) DO NOTHING
  `, userID, string(category))
	return classify(err)
}

func (s *Store) SaveBalance(ctx context.Context, b Balance) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (user_id, category, granted, used, available_hours, updated_at)
    VALUES ($1,$2,$3,$4,$5,now())
    ON CONFLICT (user_id, category)
    DO UPDATE SET granted = EXCLUDED.granted,
                  used = EXCLUDED.used,
                  available_hours = EXCLUDED.available_hours,
                  updated_at = now()
  `, b.UserID, string(b.Category), b.Granted, b.Used, b.AvailableHours)
	return classify(err)
}

func (s *Store) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id, category, granted, used, available_hours, updated_at
    FROM leave_balances
    WHERE user_id = $1
    ORDER BY category
  `, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	balances := make([]Balance, 0)
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.UserID, &b.Category, &b.Granted, &b.Used, &b.AvailableHours, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, classify(rows.Err())
}

func (s *Store) CreateRequest(ctx context.Context, r Request) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_requests (id, user_id, category, start_date, end_date, start_half, end_half, days, reason, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
  `, r.ID, r.UserID, string(r.Category), r.StartDate, r.EndDate, r.StartHalf, r.EndHalf, r.Days, r.Reason, r.Status, r.CreatedAt)
	return classify(err)
}

const requestColumns = `id, user_id, category, start_date, end_date, start_half, end_half, days,
           COALESCE(reason,''), status, COALESCE(approver_id,''), COALESCE(decision_note,''),
           decided_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.UserID, &r.Category, &r.StartDate, &r.EndDate, &r.StartHalf, &r.EndHalf, &r.Days,
		&r.Reason, &r.Status, &r.ApproverID, &r.DecisionNote, &r.DecidedAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) GetRequest(ctx context.Context, id string) (Request, error) {
	r, err := scanRequest(s.DB.QueryRow(ctx, s.forUpdate(`
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE id = $1
  `), id))
	if err != nil {
		return Request{}, classify(err)
	}
	return r, nil
}

func (s *Store) UpdateRequestStatus(ctx context.Context, r Request, from string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, approver_id = NULLIF($3,''), decision_note = NULLIF($4,''), decided_at = $5, updated_at = $6
    WHERE id = $1 AND status = $7
  `, r.ID, r.Status, r.ApproverID, r.DecisionNote, r.DecidedAt, r.UpdatedAt, from)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return newError(ErrAlreadyProcessed, "request %s is no longer %s", r.ID, from)
	}
	return nil
}

func (s *Store) ListRequests(ctx context.Context, userID, status string, limit, offset int) ([]Request, int, error) {
	where := " WHERE user_id = $1"
	args := []any{userID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests"+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := "SELECT " + requestColumns + " FROM leave_requests" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	requests := make([]Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, r)
	}
	return requests, total, classify(rows.Err())
}

func (s *Store) InsertAccrualCredit(ctx context.Context, c AccrualCredit) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO accrual_credits (user_id, work_date, category, hours, created_at)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (user_id, work_date, category) DO NOTHING
  `, c.UserID, c.WorkDate, string(c.Category), c.Hours, time.Now().UTC())
	if err != nil {
		return false, classify(err)
	}
	return tag.RowsAffected() == 1, nil
}
