package reports

import "context"

type StoreAPI interface {
	ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error)
	JobRunByID(ctx context.Context, runID string) (JobRun, error)
	LeaveSummary(ctx context.Context) (LeaveSummary, error)
}
