package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	db Queryer
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(db Queryer) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create persiste una nueva empresa. Devuelve domain.ErrDuplicate si el RUT ya existe.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, rut, legal_name, trade_name, email, phone, address, encrypted_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		company.ID, company.RUT, company.LegalName, company.TradeName,
		company.Email, company.Phone, company.Address, company.EncryptedPassword,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, rut, legal_name, trade_name, email, phone, address, encrypted_password, created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.RUT, &c.LegalName, &c.TradeName, &c.Email, &c.Phone,
		&c.Address, &c.EncryptedPassword, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// GetByRUT obtiene una empresa por RUT canónico. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) GetByRUT(ctx context.Context, rut string) (*entity.Company, error) {
	query := `
		SELECT id, rut, legal_name, trade_name, email, phone, address, encrypted_password, created_at, updated_at
		FROM companies WHERE rut = $1`
	var c entity.Company
	err := r.db.QueryRow(ctx, query, rut).Scan(
		&c.ID, &c.RUT, &c.LegalName, &c.TradeName, &c.Email, &c.Phone,
		&c.Address, &c.EncryptedPassword, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by RUT: %w", err)
	}
	return &c, nil
}

// Update actualiza los campos mutables de una empresa. El RUT no se toca.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET legal_name = $2, trade_name = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.db.Exec(ctx, query,
		company.ID, company.LegalName, company.TradeName,
		company.Email, company.Phone, company.Address, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// SaveCredentials persiste el blob de contraseña cifrada (cifrado upstream).
func (r *CompanyRepo) SaveCredentials(ctx context.Context, companyID, encryptedPassword string) error {
	query := `UPDATE companies SET encrypted_password = $2, updated_at = now() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, companyID, encryptedPassword)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `
		SELECT id, rut, legal_name, trade_name, email, phone, address, encrypted_password, created_at, updated_at
		FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.RUT, &c.LegalName, &c.TradeName, &c.Email, &c.Phone, &c.Address, &c.EncryptedPassword, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
