package leave

import (
	"context"
	"log/slog"

	"hrportal/internal/domain/calendar"
	"hrportal/internal/domain/notifications"
	"hrportal/internal/platform/i18n"
	"hrportal/internal/platform/jobs"
)

type Enqueuer interface {
	Enqueue(jobType, subjectID string, run func(context.Context) (any, error))
}

type CalendarSink interface {
	Handoff(ctx context.Context, e calendar.Event) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, ntype string, data map[string]any) error
}

// Effects hands committed transitions to the calendar and notification
// collaborators. Nothing it does can change a transition's outcome; failures
// are logged by the job worker or here when no queue is configured.
type Effects struct {
	Jobs     Enqueuer
	Calendar CalendarSink
	Notifier Notifier
}

func (e *Effects) Submitted(ctx context.Context, r Request) {
	e.notify(ctx, r.UserID, notifications.TypeLeaveSubmitted, requestData(r))
}

func (e *Effects) Approved(ctx context.Context, t Transition) {
	e.calendar(ctx, t, calendar.ActionCreate)
	e.notify(ctx, t.Request.UserID, notifications.TypeLeaveApproved, requestData(t.Request))
}

func (e *Effects) Rejected(ctx context.Context, t Transition) {
	e.notify(ctx, t.Request.UserID, notifications.TypeLeaveRejected, requestData(t.Request))
}

func (e *Effects) Cancelled(ctx context.Context, t Transition) {
	if t.From == StatusApproved {
		e.calendar(ctx, t, calendar.ActionRemove)
	}
	e.notify(ctx, t.Request.UserID, notifications.TypeLeaveCancelled, requestData(t.Request))
}

func (e *Effects) Credited(ctx context.Context, res AccrualResult) {
	if res.Duplicate || res.Credit.Hours <= 0 {
		return
	}
	e.notify(ctx, res.Credit.UserID, notifications.TypeAccrualCredited, map[string]any{
		"Category": string(res.Credit.Category),
		"Hours":    res.Credit.Hours,
		"Date":     res.Credit.WorkDate.Format("2006-01-02"),
	})
}

func (e *Effects) calendar(ctx context.Context, t Transition, action string) {
	if e == nil || e.Calendar == nil {
		return
	}
	evt := calendar.Event{
		SourceID:  t.Request.ID,
		Action:    action,
		UserID:    t.Request.UserID,
		Category:  string(t.Request.Category),
		StartDate: t.Request.StartDate,
		EndDate:   t.Request.EndDate,
		Amount:    t.Amount,
		Unit:      t.Unit,
	}
	e.run(ctx, jobs.JobCalendarHandoff, t.Request.ID, func(ctx context.Context) (any, error) {
		return evt, e.Calendar.Handoff(ctx, evt)
	})
}

func (e *Effects) notify(ctx context.Context, userID, ntype string, data map[string]any) {
	if e == nil || e.Notifier == nil {
		return
	}
	jobType := jobs.JobLeaveNotify
	if ntype == notifications.TypeAccrualCredited {
		jobType = jobs.JobAccrualNotify
	}
	e.run(ctx, jobType, userID, func(ctx context.Context) (any, error) {
		return map[string]any{"type": ntype, "userId": userID}, e.Notifier.Notify(ctx, userID, ntype, data)
	})
}

// run executes fn on the job queue. The request context is not passed on
// since it ends with the response; only its locale is carried over.
func (e *Effects) run(ctx context.Context, jobType, subjectID string, fn func(context.Context) (any, error)) {
	locale := i18n.LocaleFromContext(ctx)
	task := func(jobCtx context.Context) (any, error) {
		return fn(i18n.WithLocale(jobCtx, locale))
	}
	if e.Jobs != nil {
		e.Jobs.Enqueue(jobType, subjectID, task)
		return
	}
	if _, err := task(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("leave side effect failed", "jobType", jobType, "subjectId", subjectID, "err", err)
	}
}

func requestData(r Request) map[string]any {
	return map[string]any{
		"Category":  string(r.Category),
		"StartDate": r.StartDate.Format("2006-01-02"),
		"EndDate":   r.EndDate.Format("2006-01-02"),
		"Days":      r.Days,
	}
}
