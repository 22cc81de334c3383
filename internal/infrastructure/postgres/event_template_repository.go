package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.EventTemplateRepository = (*EventTemplateRepo)(nil)

// EventTemplateRepo persistencia del catálogo global de obligaciones.
type EventTemplateRepo struct {
	db Queryer
}

// NewEventTemplateRepository construye el adaptador.
func NewEventTemplateRepository(db Queryer) *EventTemplateRepo {
	return &EventTemplateRepo{db: db}
}

const eventTemplateColumns = `id, code, name, description, category, is_mandatory, recurrence_rule, created_at, updated_at`

// List devuelve el catálogo completo ordenado por categoría y nombre.
func (r *EventTemplateRepo) List(ctx context.Context) ([]*entity.EventTemplate, error) {
	query := `SELECT ` + eventTemplateColumns + ` FROM event_templates ORDER BY category, name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list event_templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListMandatory devuelve solo las plantillas obligatorias, mismo orden que List.
func (r *EventTemplateRepo) ListMandatory(ctx context.Context) ([]*entity.EventTemplate, error) {
	query := `SELECT ` + eventTemplateColumns + ` FROM event_templates WHERE is_mandatory = true ORDER BY category, name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list mandatory event_templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListByIDs devuelve las plantillas cuyos ids están en la lista.
func (r *EventTemplateRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.EventTemplate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + eventTemplateColumns + ` FROM event_templates WHERE id = ANY($1) ORDER BY category, name`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list event_templates by ids: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// GetByCode obtiene una plantilla por su código. Devuelve (nil, nil) si no existe.
func (r *EventTemplateRepo) GetByCode(ctx context.Context, code string) (*entity.EventTemplate, error) {
	query := `SELECT ` + eventTemplateColumns + ` FROM event_templates WHERE code = $1`
	var t entity.EventTemplate
	err := r.db.QueryRow(ctx, query, code).Scan(
		&t.ID, &t.Code, &t.Name, &t.Description, &t.Category,
		&t.IsMandatory, &t.RecurrenceRule, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event_template by code: %w", err)
	}
	return &t, nil
}

// GetByID obtiene una plantilla por ID. Devuelve (nil, nil) si no existe.
func (r *EventTemplateRepo) GetByID(ctx context.Context, id string) (*entity.EventTemplate, error) {
	query := `SELECT ` + eventTemplateColumns + ` FROM event_templates WHERE id = $1`
	var t entity.EventTemplate
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Code, &t.Name, &t.Description, &t.Category,
		&t.IsMandatory, &t.RecurrenceRule, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event_template: %w", err)
	}
	return &t, nil
}

// Upsert inserta o actualiza una plantilla sobre el conflicto del código.
// Lo usa el seeder del catálogo (cmd/seed_templates).
func (r *EventTemplateRepo) Upsert(ctx context.Context, tpl *entity.EventTemplate) error {
	query := `
		INSERT INTO event_templates (id, code, name, description, category, is_mandatory, recurrence_rule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			is_mandatory = EXCLUDED.is_mandatory,
			recurrence_rule = EXCLUDED.recurrence_rule,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		tpl.ID, tpl.Code, tpl.Name, tpl.Description, tpl.Category,
		tpl.IsMandatory, tpl.RecurrenceRule, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert event_template: %w", err)
	}
	return nil
}

func collectTemplates(rows pgx.Rows) ([]*entity.EventTemplate, error) {
	var list []*entity.EventTemplate
	for rows.Next() {
		var t entity.EventTemplate
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Description, &t.Category,
			&t.IsMandatory, &t.RecurrenceRule, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event_template: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
