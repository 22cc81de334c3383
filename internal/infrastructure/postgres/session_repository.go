package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persistencia de sesiones SII por (user, company).
type SessionRepo struct {
	db Queryer
}

// NewSessionRepository construye el adaptador.
func NewSessionRepository(db Queryer) *SessionRepo {
	return &SessionRepo{db: db}
}

// Upsert inserta o reemplaza la sesión sobre el conflicto (user_id, company_id)
// y devuelve la fila resultante (el id existente se conserva si ya había sesión).
func (r *SessionRepo) Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, company_id, cookies, last_accessed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, company_id) DO UPDATE SET
			cookies = EXCLUDED.cookies,
			last_accessed = EXCLUDED.last_accessed,
			updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, company_id, cookies, last_accessed, created_at, updated_at`
	var s entity.Session
	err := r.db.QueryRow(ctx, query,
		session.ID, session.UserID, session.CompanyID, session.Cookies,
		session.LastAccessed, session.CreatedAt, session.UpdatedAt,
	).Scan(&s.ID, &s.UserID, &s.CompanyID, &s.Cookies, &s.LastAccessed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}
	return &s, nil
}

// GetByUserAndCompany obtiene la sesión del par. Devuelve (nil, nil) si no existe.
func (r *SessionRepo) GetByUserAndCompany(ctx context.Context, userID, companyID string) (*entity.Session, error) {
	query := `
		SELECT id, user_id, company_id, cookies, last_accessed, created_at, updated_at
		FROM sessions WHERE user_id = $1 AND company_id = $2`
	var s entity.Session
	err := r.db.QueryRow(ctx, query, userID, companyID).Scan(
		&s.ID, &s.UserID, &s.CompanyID, &s.Cookies, &s.LastAccessed, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}
