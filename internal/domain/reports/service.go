package reports

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) JobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	return s.store.ListJobRuns(ctx, filter, limit, offset)
}

func (s *Service) JobRun(ctx context.Context, runID string) (JobRun, error) {
	return s.store.JobRunByID(ctx, runID)
}

func (s *Service) LeaveSummary(ctx context.Context) (LeaveSummary, error) {
	return s.store.LeaveSummary(ctx)
}
