package repository

import (
	"context"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
)

// SessionRepository puerto para sesiones SII. Upsert reemplaza las cookies
// y el last_accessed si ya existe fila para (user_id, company_id).
type SessionRepository interface {
	Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetByUserAndCompany(ctx context.Context, userID, companyID string) (*entity.Session, error)
}

// ProfileRepository puerto para perfiles de usuario (prerrequisito FK de sessions).
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Create(ctx context.Context, profile *entity.Profile) error
}

// UserRepository puerto para usuarios de la API.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
