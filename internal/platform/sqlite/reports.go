package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"hrportal/internal/domain/reports"
)

const jobRunColumns = `id, job_type, COALESCE(subject_id, ''), status, COALESCE(details_json, ''), started_at, completed_at`

func (s *Store) ListJobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, int, error) {
	where := " WHERE 1=1"
	var args []any
	if value := strings.TrimSpace(filter.JobType); value != "" {
		where += " AND job_type = ?"
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		where += " AND status = ?"
		args = append(args, value)
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		where += " AND started_at >= ?"
		args = append(args, formatTime(*filter.StartedFrom))
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		where += " AND started_at <= ?"
		args = append(args, formatTime(*filter.StartedTo))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM job_runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+jobRunColumns+" FROM job_runs"+where+" ORDER BY started_at DESC LIMIT ? OFFSET ?", append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := make([]reports.JobRun, 0)
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *Store) JobRunByID(ctx context.Context, runID string) (reports.JobRun, error) {
	run, err := scanJobRun(s.db.QueryRowContext(ctx, "SELECT "+jobRunColumns+" FROM job_runs WHERE id = ?", runID))
	if errors.Is(err, sql.ErrNoRows) {
		return reports.JobRun{}, reports.ErrNotFound
	}
	return run, err
}

// LeaveSummary only sums numeric hour pools; anything else stored in
// available_hours is counted as invalid.
func (s *Store) LeaveSummary(ctx context.Context) (reports.LeaveSummary, error) {
	var out reports.LeaveSummary
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0)
		FROM leave_requests
	`).Scan(&out.PendingRequests, &out.ApprovedRequests); err != nil {
		return reports.LeaveSummary{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category,
		       COUNT(1),
		       COALESCE(SUM(granted), 0),
		       COALESCE(SUM(used), 0),
		       COALESCE(SUM(CASE WHEN typeof(available_hours) IN ('integer', 'real') THEN available_hours END), 0),
		       SUM(CASE WHEN available_hours IS NOT NULL AND typeof(available_hours) NOT IN ('integer', 'real') THEN 1 ELSE 0 END)
		FROM leave_balances
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return reports.LeaveSummary{}, err
	}
	defer rows.Close()

	out.Categories = make([]reports.CategoryTotal, 0)
	for rows.Next() {
		var c reports.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Users, &c.Granted, &c.Used, &c.AvailableHours, &c.InvalidPools); err != nil {
			return reports.LeaveSummary{}, err
		}
		out.Categories = append(out.Categories, c)
	}
	return out, rows.Err()
}

func scanJobRun(row interface{ Scan(...any) error }) (reports.JobRun, error) {
	var (
		run                reports.JobRun
		details, startedAt string
		completedAt        sql.NullString
		err                error
	)
	if err = row.Scan(&run.ID, &run.JobType, &run.SubjectID, &run.Status, &details, &startedAt, &completedAt); err != nil {
		return reports.JobRun{}, err
	}
	run.Details = reports.DecodeDetails([]byte(details))
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return reports.JobRun{}, err
	}
	if run.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return reports.JobRun{}, err
	}
	return run, nil
}
