package audit

import (
	"context"
	"fmt"

	"hrportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) InsertEvent(ctx context.Context, evt Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, []byte(evt.Before), []byte(evt.After), evt.RequestID, evt.IP, evt.CreatedAt)
	return err
}

func (s *Store) ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, actor_user_id, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json
    FROM audit_logs` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var evt Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &before, &after); err != nil {
			return nil, 0, err
		}
		evt.Before, evt.After = before, after
		out = append(out, evt)
	}
	return out, total, rows.Err()
}

func buildWhere(filter Filter) (string, []any) {
	query := " WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.ActorUser != "" {
		args = append(args, filter.ActorUser)
		query += fmt.Sprintf(" AND actor_user_id = $%d", len(args))
	}
	return query, args
}
