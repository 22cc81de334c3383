package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo persistencia de perfiles de usuario.
type ProfileRepo struct {
	db Queryer
}

// NewProfileRepository construye el adaptador.
func NewProfileRepository(db Queryer) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByID obtiene un perfil. Devuelve (nil, nil) si no existe.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	query := `SELECT id, email, full_name, created_at, updated_at FROM profiles WHERE id = $1`
	var p entity.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Create persiste un nuevo perfil. Ignora el duplicado si otro request lo creó
// en paralelo (la fila existente es equivalente).
func (r *ProfileRepo) Create(ctx context.Context, profile *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}
