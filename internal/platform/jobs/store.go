package jobs

import (
	"context"

	"github.com/google/uuid"

	"hrportal/internal/platform/querier"
)

// Store records job runs in Postgres.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) StartRun(ctx context.Context, jobType, subjectID string) (string, error) {
	runID := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, subject_id, status)
    VALUES ($1,$2,NULLIF($3,''),$4)
  `, runID, jobType, subjectID, statusRunning)
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}
