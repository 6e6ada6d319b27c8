package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	JobPolicyReload    = "policy_reload"
	JobCalendarHandoff = "calendar_handoff"
	JobLeaveNotify     = "leave_notification"
	JobAccrualNotify   = "accrual_notification"
	defaultQueueSize   = 128
	defaultWorkerCount = 1
	statusRunning      = "running"
	statusCompleted    = "completed"
	statusFailed       = "failed"
)

// RunRecorder persists job runs. A nil recorder disables run history.
type RunRecorder interface {
	StartRun(ctx context.Context, jobType, subjectID string) (string, error)
	FinishRun(ctx context.Context, runID, status string, details []byte) error
}

type Service struct {
	Runs      RunRecorder
	queue     chan job
	workers   int
	schedules []schedule
	wg        sync.WaitGroup
}

type job struct {
	Type      string
	SubjectID string
	Run       func(context.Context) (any, error)
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      func(context.Context) (any, error)
}

func New(runs RunRecorder, queueSize, workers int) *Service {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Service{
		Runs:    runs,
		queue:   make(chan job, queueSize),
		workers: workers,
	}
}

// Every registers run to be enqueued once per interval after Start.
func (s *Service) Every(jobType string, interval time.Duration, run func(context.Context) (any, error)) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	for _, sch := range s.schedules {
		s.wg.Add(1)
		go s.scheduleLoop(ctx, sch)
	}
}

// Wait blocks until every worker and scheduler started by Start has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType, subjectID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, SubjectID: subjectID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "subjectId", subjectID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, subjectID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, SubjectID: subjectID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "subjectId", j.SubjectID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.Runs != nil {
		id, err := s.Runs.StartRun(ctx, j.Type, j.SubjectID)
		if err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := statusCompleted
	if err != nil {
		status = statusFailed
	}
	if runID == "" {
		return details, err
	}

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if updErr := s.Runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
	return details, err
}

func (s *Service) scheduleLoop(ctx context.Context, sch schedule) {
	defer s.wg.Done()
	ticker := time.NewTicker(sch.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sch.jobType, "", sch.run)
		}
	}
}
