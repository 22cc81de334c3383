package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "debe crearse el pool mock")
	t.Cleanup(mock.Close)
	return mock
}

// El toggle es un solo statement con ON CONFLICT: no hay lectura previa.
func TestCompanyEventRepo_Upsert(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyEventRepository(mock)

	now := time.Now()
	ce := &entity.CompanyEvent{
		ID:              "ce-1",
		CompanyID:       "empresa-1",
		EventTemplateID: "tpl-f29",
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec(`(?s)INSERT INTO company_events .+ON CONFLICT \(company_id, event_template_id\) DO UPDATE`).
		WithArgs("ce-1", "empresa-1", "tpl-f29", true, []byte(nil), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), ce))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// BulkUpsert cuenta solo las filas realmente insertadas: los conflictos
// (DO NOTHING) reportan cero filas afectadas.
func TestCompanyEventRepo_BulkUpsert_IgnoraDuplicados(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyEventRepository(mock)

	now := time.Now()
	events := []*entity.CompanyEvent{
		{ID: "ce-1", CompanyID: "empresa-1", EventTemplateID: "tpl-f29", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "ce-2", CompanyID: "empresa-1", EventTemplateID: "tpl-cot", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}

	mock.ExpectExec(`(?s)INSERT INTO company_events .+DO NOTHING`).
		WithArgs("ce-1", "empresa-1", "tpl-f29", true, []byte(nil), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// tpl-cot ya estaba activa: conflicto, cero filas
	mock.ExpectExec(`(?s)INSERT INTO company_events .+DO NOTHING`).
		WithArgs("ce-2", "empresa-1", "tpl-cot", true, []byte(nil), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.BulkUpsert(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyEventRepo_GetByCompanyAndTemplate(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyEventRepository(mock)

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "company_id", "event_template_id", "is_active", "config", "created_at", "updated_at"}).
		AddRow("ce-1", "empresa-1", "tpl-f29", true, []byte(nil), now, now)

	mock.ExpectQuery(`(?s)SELECT .+ FROM company_events WHERE company_id = \$1 AND event_template_id = \$2`).
		WithArgs("empresa-1", "tpl-f29").
		WillReturnRows(rows)

	ce, err := repo.GetByCompanyAndTemplate(context.Background(), "empresa-1", "tpl-f29")
	require.NoError(t, err)
	require.NotNil(t, ce)
	assert.Equal(t, "ce-1", ce.ID)
	assert.True(t, ce.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Sin fila para el par (empresa, plantilla) el repo devuelve (nil, nil).
func TestCompanyEventRepo_GetByCompanyAndTemplate_NoExiste(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyEventRepository(mock)

	mock.ExpectQuery(`(?s)SELECT .+ FROM company_events WHERE company_id = \$1 AND event_template_id = \$2`).
		WithArgs("empresa-1", "tpl-x").
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_id", "event_template_id", "is_active", "config", "created_at", "updated_at"}))

	ce, err := repo.GetByCompanyAndTemplate(context.Background(), "empresa-1", "tpl-x")
	require.NoError(t, err)
	assert.Nil(t, ce)
	assert.NoError(t, mock.ExpectationsWereMet())
}
