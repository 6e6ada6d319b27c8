package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/calendar"
	"hrportal/internal/domain/notifications"
)

func (s *Store) CreateNotification(ctx context.Context, n notifications.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Type, n.Title, n.Body, formatTime(n.CreatedAt))
	return err
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx, "SELECT email FROM user_contacts WHERE user_id = ?", userID).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]notifications.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, body, read_at, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		var readAt sql.NullString
		var createdAt string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &readAt, &createdAt); err != nil {
			return nil, err
		}
		if n.ReadAt, err = parseNullTime(readAt); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = ?", userID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read_at = ? WHERE user_id = ? AND id = ?",
		formatTime(time.Now()), userID, notificationID)
	return err
}

// CalendarStore adapts the calendar outbox; its method names collide with
// the audit store's.
type CalendarStore struct {
	*Store
}

func (s *Store) Calendar() CalendarStore {
	return CalendarStore{Store: s}
}

func (c CalendarStore) InsertEvent(ctx context.Context, e calendar.Event) (bool, error) {
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, source_id, action, user_id, category, start_date, end_date, amount, unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, action) DO NOTHING
	`, e.ID, e.SourceID, e.Action, e.UserID, e.Category, e.StartDate.Format(dateLayout), e.EndDate.Format(dateLayout),
		e.Amount, e.Unit, formatTime(e.CreatedAt))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (c CalendarStore) ListEvents(ctx context.Context, userID string) ([]calendar.Event, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source_id, action, user_id, category, start_date, end_date, amount, unit, created_at
		FROM calendar_events
		WHERE user_id = ?
		ORDER BY start_date, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]calendar.Event, 0)
	for rows.Next() {
		var e calendar.Event
		var start, end, createdAt string
		if err := rows.Scan(&e.ID, &e.SourceID, &e.Action, &e.UserID, &e.Category, &start, &end, &e.Amount, &e.Unit, &createdAt); err != nil {
			return nil, err
		}
		if e.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, err
		}
		if e.EndDate, err = time.Parse(dateLayout, end); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AuditStore adapts the audit log.
type AuditStore struct {
	*Store
}

func (s *Store) Audit() AuditStore {
	return AuditStore{Store: s}
}

func (a AuditStore) InsertEvent(ctx context.Context, evt audit.Event) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID,
		nullString(string(evt.Before)), nullString(string(evt.After)), evt.RequestID, evt.IP, formatTime(evt.CreatedAt))
	return err
}

func (a AuditStore) ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, int, error) {
	where := " WHERE 1=1"
	var args []any
	for column, value := range map[string]string{
		"action":        filter.Action,
		"entity_type":   filter.EntityType,
		"entity_id":     filter.EntityID,
		"actor_user_id": filter.ActorUser,
	} {
		if value != "" {
			where += " AND " + column + " = ?"
			args = append(args, value)
		}
	}

	var total int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, actor_user_id, action, entity_type, entity_id, COALESCE(request_id, ''), COALESCE(ip, ''), created_at,
		       COALESCE(before_json, ''), COALESCE(after_json, '')
		FROM audit_logs`+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]audit.Event, 0)
	for rows.Next() {
		var evt audit.Event
		var createdAt, before, after string
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &createdAt, &before, &after); err != nil {
			return nil, 0, err
		}
		if evt.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, err
		}
		if before != "" {
			evt.Before = []byte(before)
		}
		if after != "" {
			evt.After = []byte(after)
		}
		out = append(out, evt)
	}
	return out, total, rows.Err()
}

func (s *Store) StartRun(ctx context.Context, jobType, subjectID string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_runs (id, job_type, subject_id, status, started_at)
		VALUES (?, ?, ?, 'running', ?)
	`, runID, jobType, nullString(subjectID), formatTime(time.Now()))
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE job_runs SET status = ?, details_json = ?, completed_at = ? WHERE id = ?
	`, status, string(details), formatTime(time.Now()), runID)
	return err
}
