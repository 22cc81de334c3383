package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.EventHistoryRepository = (*EventHistoryRepo)(nil)

// EventHistoryRepo persistencia del historial append-only de eventos.
type EventHistoryRepo struct {
	db Queryer
}

// NewEventHistoryRepository construye el adaptador.
func NewEventHistoryRepository(db Queryer) *EventHistoryRepo {
	return &EventHistoryRepo{db: db}
}

// Append agrega una entrada al historial. Nunca se actualiza ni borra.
func (r *EventHistoryRepo) Append(ctx context.Context, h *entity.EventHistory) error {
	query := `
		INSERT INTO event_history (id, event_id, action, detail, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, h.ID, h.EventID, h.Action, h.Detail, h.CreatedBy, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event_history: %w", err)
	}
	return nil
}

// ListByEvent devuelve el historial de un evento, más reciente primero.
func (r *EventHistoryRepo) ListByEvent(ctx context.Context, eventID string) ([]*entity.EventHistory, error) {
	query := `
		SELECT id, event_id, action, detail, created_by, created_at
		FROM event_history WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event_history: %w", err)
	}
	defer rows.Close()

	var list []*entity.EventHistory
	for rows.Next() {
		var h entity.EventHistory
		if err := rows.Scan(&h.ID, &h.EventID, &h.Action, &h.Detail, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event_history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}
