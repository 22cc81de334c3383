package repository

import (
	"context"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByRUT(ctx context.Context, rut string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	// SaveCredentials persiste el blob de contraseña cifrada de la empresa.
	SaveCredentials(ctx context.Context, companyID, encryptedPassword string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
}

// CompanyTaxInfoRepository puerto para la extensión tributaria uno a uno de Company.
type CompanyTaxInfoRepository interface {
	Upsert(ctx context.Context, info *entity.CompanyTaxInfo) error
	GetByCompanyID(ctx context.Context, companyID string) (*entity.CompanyTaxInfo, error)
}

// CompanySettingsRepository puerto para la fila de configuración por empresa.
// GetByCompanyID devuelve (nil, nil) si no existe fila todavía.
type CompanySettingsRepository interface {
	GetByCompanyID(ctx context.Context, companyID string) (*entity.CompanySettings, error)
	Upsert(ctx context.Context, settings *entity.CompanySettings) error
}
