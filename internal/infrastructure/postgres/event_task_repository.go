package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.EventTaskRepository = (*EventTaskRepo)(nil)

// EventTaskRepo persistencia del checklist de un evento.
type EventTaskRepo struct {
	db Queryer
}

// NewEventTaskRepository construye el adaptador.
func NewEventTaskRepository(db Queryer) *EventTaskRepo {
	return &EventTaskRepo{db: db}
}

// ListByEvent devuelve los ítems del checklist ordenados por posición.
func (r *EventTaskRepo) ListByEvent(ctx context.Context, eventID string) ([]*entity.EventTask, error) {
	query := `
		SELECT id, event_id, title, is_done, position, created_at, updated_at
		FROM event_tasks WHERE event_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event_tasks: %w", err)
	}
	defer rows.Close()

	var list []*entity.EventTask
	for rows.Next() {
		var t entity.EventTask
		if err := rows.Scan(&t.ID, &t.EventID, &t.Title, &t.IsDone, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event_task: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
