package calendar

import (
	"context"

	"hrportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) InsertEvent(ctx context.Context, e Event) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO calendar_events (id, source_id, action, user_id, category, start_date, end_date, amount, unit, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (source_id, action) DO NOTHING
  `, e.ID, e.SourceID, e.Action, e.UserID, e.Category, e.StartDate, e.EndDate, e.Amount, e.Unit, e.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ListEvents(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, source_id, action, user_id, category, start_date, end_date, amount, unit, created_at
    FROM calendar_events
    WHERE user_id = $1
    ORDER BY start_date, created_at
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SourceID, &e.Action, &e.UserID, &e.Category, &e.StartDate, &e.EndDate, &e.Amount, &e.Unit, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
