package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.CompanyEventRepository = (*CompanyEventRepo)(nil)

// CompanyEventRepo persistencia de la activación de plantillas por empresa.
type CompanyEventRepo struct {
	db Queryer
}

// NewCompanyEventRepository construye el adaptador.
func NewCompanyEventRepository(db Queryer) *CompanyEventRepo {
	return &CompanyEventRepo{db: db}
}

// Upsert inserta o actualiza de forma atómica sobre el conflicto
// (company_id, event_template_id). Un solo statement: no hay ventana de
// carrera entre togglers concurrentes.
func (r *CompanyEventRepo) Upsert(ctx context.Context, ce *entity.CompanyEvent) error {
	query := `
		INSERT INTO company_events (id, company_id, event_template_id, is_active, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, event_template_id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		ce.ID, ce.CompanyID, ce.EventTemplateID, ce.IsActive, ce.Config,
		ce.CreatedAt, ce.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert company_event: %w", err)
	}
	return nil
}

// BulkUpsert inserta en lote ignorando filas ya existentes (la activación
// previa de la empresa se respeta). Devuelve cuántas filas se insertaron.
func (r *CompanyEventRepo) BulkUpsert(ctx context.Context, events []*entity.CompanyEvent) (int, error) {
	inserted := 0
	for _, ce := range events {
		query := `
			INSERT INTO company_events (id, company_id, event_template_id, is_active, config, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (company_id, event_template_id) DO NOTHING`
		cmd, err := r.db.Exec(ctx, query,
			ce.ID, ce.CompanyID, ce.EventTemplateID, ce.IsActive, ce.Config,
			ce.CreatedAt, ce.UpdatedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("bulk upsert company_event %s: %w", ce.EventTemplateID, err)
		}
		inserted += int(cmd.RowsAffected())
	}
	return inserted, nil
}

// ListByCompany devuelve las activaciones de una empresa.
func (r *CompanyEventRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyEvent, error) {
	query := `
		SELECT id, company_id, event_template_id, is_active, config, created_at, updated_at
		FROM company_events WHERE company_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company_events: %w", err)
	}
	defer rows.Close()

	var list []*entity.CompanyEvent
	for rows.Next() {
		var ce entity.CompanyEvent
		if err := rows.Scan(&ce.ID, &ce.CompanyID, &ce.EventTemplateID, &ce.IsActive, &ce.Config, &ce.CreatedAt, &ce.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company_event: %w", err)
		}
		list = append(list, &ce)
	}
	return list, rows.Err()
}

// GetByID obtiene una activación por ID. Devuelve (nil, nil) si no existe.
func (r *CompanyEventRepo) GetByID(ctx context.Context, id string) (*entity.CompanyEvent, error) {
	query := `
		SELECT id, company_id, event_template_id, is_active, config, created_at, updated_at
		FROM company_events WHERE id = $1`
	var ce entity.CompanyEvent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ce.ID, &ce.CompanyID, &ce.EventTemplateID, &ce.IsActive, &ce.Config, &ce.CreatedAt, &ce.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company_event: %w", err)
	}
	return &ce, nil
}

// GetByCompanyAndTemplate obtiene la activación del par. Devuelve (nil, nil) si no existe.
func (r *CompanyEventRepo) GetByCompanyAndTemplate(ctx context.Context, companyID, templateID string) (*entity.CompanyEvent, error) {
	query := `
		SELECT id, company_id, event_template_id, is_active, config, created_at, updated_at
		FROM company_events WHERE company_id = $1 AND event_template_id = $2`
	var ce entity.CompanyEvent
	err := r.db.QueryRow(ctx, query, companyID, templateID).Scan(
		&ce.ID, &ce.CompanyID, &ce.EventTemplateID, &ce.IsActive, &ce.Config, &ce.CreatedAt, &ce.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company_event: %w", err)
	}
	return &ce, nil
}
