package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.CompanyTaxInfoRepository = (*CompanyTaxInfoRepo)(nil)

// CompanyTaxInfoRepo persistencia de la extensión tributaria uno a uno de Company.
type CompanyTaxInfoRepo struct {
	db Queryer
}

// NewCompanyTaxInfoRepository construye el adaptador.
func NewCompanyTaxInfoRepository(db Queryer) *CompanyTaxInfoRepo {
	return &CompanyTaxInfoRepo{db: db}
}

// Upsert inserta o reemplaza la información tributaria de la empresa.
// Conflicto sobre company_id (relación uno a uno).
func (r *CompanyTaxInfoRepo) Upsert(ctx context.Context, info *entity.CompanyTaxInfo) error {
	query := `
		INSERT INTO company_tax_info (id, company_id, tax_regime, activity_codes, legal_representative, raw_profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id) DO UPDATE SET
			tax_regime = EXCLUDED.tax_regime,
			activity_codes = EXCLUDED.activity_codes,
			legal_representative = EXCLUDED.legal_representative,
			raw_profile = EXCLUDED.raw_profile,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		info.ID, info.CompanyID, info.TaxRegime, info.ActivityCodes,
		info.LegalRepresentative, info.RawProfile, info.CreatedAt, info.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert company_tax_info: %w", err)
	}
	return nil
}

// GetByCompanyID obtiene la información tributaria. Devuelve (nil, nil) si no existe.
func (r *CompanyTaxInfoRepo) GetByCompanyID(ctx context.Context, companyID string) (*entity.CompanyTaxInfo, error) {
	query := `
		SELECT id, company_id, tax_regime, activity_codes, legal_representative, raw_profile, created_at, updated_at
		FROM company_tax_info WHERE company_id = $1`
	var info entity.CompanyTaxInfo
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&info.ID, &info.CompanyID, &info.TaxRegime, &info.ActivityCodes,
		&info.LegalRepresentative, &info.RawProfile, &info.CreatedAt, &info.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company_tax_info: %w", err)
	}
	return &info, nil
}
