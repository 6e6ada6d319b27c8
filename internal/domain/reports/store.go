package reports

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	query, args := buildJobRunsBaseQuery(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := make([]JobRun, 0)
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *Store) JobRunByID(ctx context.Context, runID string) (JobRun, error) {
	run, err := scanJobRun(s.DB.QueryRow(ctx, `
    SELECT id::text, job_type, COALESCE(subject_id, ''), status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE id::text = $1
  `, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return JobRun{}, ErrNotFound
	}
	return run, err
}

func (s *Store) LeaveSummary(ctx context.Context) (LeaveSummary, error) {
	var out LeaveSummary
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE status = 'pending'), COUNT(1) FILTER (WHERE status = 'approved')
    FROM leave_requests
  `).Scan(&out.PendingRequests, &out.ApprovedRequests); err != nil {
		return LeaveSummary{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT category,
           COUNT(1),
           COALESCE(SUM(granted), 0)::float8,
           COALESCE(SUM(used), 0)::float8,
           COALESCE(SUM(available_hours) FILTER (WHERE available_hours <> 'NaN'), 0)::float8,
           COUNT(1) FILTER (WHERE available_hours = 'NaN')
    FROM leave_balances
    GROUP BY category
    ORDER BY category
  `)
	if err != nil {
		return LeaveSummary{}, err
	}
	defer rows.Close()

	out.Categories = make([]CategoryTotal, 0)
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.Category, &c.Users, &c.Granted, &c.Used, &c.AvailableHours, &c.InvalidPools); err != nil {
			return LeaveSummary{}, err
		}
		out.Categories = append(out.Categories, c)
	}
	return out, rows.Err()
}

func scanJobRun(row pgx.Row) (JobRun, error) {
	var (
		run        JobRun
		detailsRaw []byte
	)
	if err := row.Scan(&run.ID, &run.JobType, &run.SubjectID, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt); err != nil {
		return JobRun{}, err
	}
	run.Details = DecodeDetails(detailsRaw)
	return run, nil
}

func buildJobRunsBaseQuery(filter JobRunFilter) (string, []any) {
	query := `
    SELECT id::text, job_type, COALESCE(subject_id, ''), status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE 1=1
  `
	var args []any

	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		query += " AND started_at >= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedFrom)
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		query += " AND started_at <= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedTo)
	}
	return query, args
}
