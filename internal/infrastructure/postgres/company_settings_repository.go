package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.CompanySettingsRepository = (*CompanySettingsRepo)(nil)

// CompanySettingsRepo persistencia de la fila de configuración por empresa.
type CompanySettingsRepo struct {
	db Queryer
}

// NewCompanySettingsRepository construye el adaptador.
func NewCompanySettingsRepository(db Queryer) *CompanySettingsRepo {
	return &CompanySettingsRepo{db: db}
}

// GetByCompanyID obtiene la configuración. Devuelve (nil, nil) si no hay fila:
// una empresa sin fila de settings todavía necesita onboarding.
func (r *CompanySettingsRepo) GetByCompanyID(ctx context.Context, companyID string) (*entity.CompanySettings, error) {
	query := `
		SELECT id, company_id, completed_setup, created_at, updated_at
		FROM company_settings WHERE company_id = $1`
	var s entity.CompanySettings
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.CompletedSetup, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company_settings: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la configuración (conflicto sobre company_id).
func (r *CompanySettingsRepo) Upsert(ctx context.Context, settings *entity.CompanySettings) error {
	query := `
		INSERT INTO company_settings (id, company_id, completed_setup, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id) DO UPDATE SET
			completed_setup = EXCLUDED.completed_setup,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		settings.ID, settings.CompanyID, settings.CompletedSetup,
		settings.CreatedAt, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert company_settings: %w", err)
	}
	return nil
}
