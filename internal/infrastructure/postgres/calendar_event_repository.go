package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.CalendarEventRepository = (*CalendarEventRepo)(nil)

// CalendarEventRepo persistencia de instancias concretas de obligaciones.
type CalendarEventRepo struct {
	db Queryer
}

// NewCalendarEventRepository construye el adaptador.
func NewCalendarEventRepository(db Queryer) *CalendarEventRepo {
	return &CalendarEventRepo{db: db}
}

const calendarEventColumns = `id, company_id, company_event_id, title, description, due_date, period_start, period_end, status, amount, completed_at, completion_data, created_at, updated_at`

// Create persiste un nuevo evento de calendario.
func (r *CalendarEventRepo) Create(ctx context.Context, ev *entity.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (` + calendarEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		ev.ID, ev.CompanyID, ev.CompanyEventID, ev.Title, ev.Description,
		ev.DueDate, ev.PeriodStart, ev.PeriodEnd, ev.Status, ev.Amount,
		ev.CompletedAt, ev.CompletionData, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calendar_event: %w", err)
	}
	return nil
}

// GetByID obtiene un evento. Devuelve (nil, nil) si no existe.
func (r *CalendarEventRepo) GetByID(ctx context.Context, id string) (*entity.CalendarEvent, error) {
	query := `SELECT ` + calendarEventColumns + ` FROM calendar_events WHERE id = $1`
	var ev entity.CalendarEvent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ev.ID, &ev.CompanyID, &ev.CompanyEventID, &ev.Title, &ev.Description,
		&ev.DueDate, &ev.PeriodStart, &ev.PeriodEnd, &ev.Status, &ev.Amount,
		&ev.CompletedAt, &ev.CompletionData, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar_event: %w", err)
	}
	return &ev, nil
}

// Update actualiza los campos editables del evento.
func (r *CalendarEventRepo) Update(ctx context.Context, ev *entity.CalendarEvent) error {
	query := `
		UPDATE calendar_events SET title = $2, description = $3, due_date = $4,
			period_start = $5, period_end = $6, status = $7, amount = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query,
		ev.ID, ev.Title, ev.Description, ev.DueDate,
		ev.PeriodStart, ev.PeriodEnd, ev.Status, ev.Amount, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update calendar_event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia solo el estado; completed_at y completion_data se
// escriben tal como llegan (nil los limpia al volver a pending).
func (r *CalendarEventRepo) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, completionData []byte) error {
	query := `
		UPDATE calendar_events SET status = $2, completed_at = $3, completion_data = $4, updated_at = now()
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, status, completedAt, completionData)
	if err != nil {
		return fmt.Errorf("update calendar_event status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un evento por ID.
func (r *CalendarEventRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calendar_event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List arma el WHERE dinámicamente según los filtros presentes.
// Siempre ordena por due_date ascendente; el rango de fechas es inclusivo.
func (r *CalendarEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]*entity.CalendarEvent, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.CompanyID != "" {
		add("company_id = ?", filter.CompanyID)
	}
	if filter.StartDate != nil {
		add("due_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("due_date <= ?", *filter.EndDate)
	}
	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.CompanyEventID != "" {
		add("company_event_id = ?", filter.CompanyEventID)
	}

	query := `SELECT ` + calendarEventColumns + ` FROM calendar_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY due_date ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calendar_events: %w", err)
	}
	defer rows.Close()

	var list []*entity.CalendarEvent
	for rows.Next() {
		var ev entity.CalendarEvent
		if err := rows.Scan(
			&ev.ID, &ev.CompanyID, &ev.CompanyEventID, &ev.Title, &ev.Description,
			&ev.DueDate, &ev.PeriodStart, &ev.PeriodEnd, &ev.Status, &ev.Amount,
			&ev.CompletedAt, &ev.CompletionData, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan calendar_event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
