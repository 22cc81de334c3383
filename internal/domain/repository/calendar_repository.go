package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
)

// EventTemplateRepository puerto de lectura del catálogo de obligaciones.
type EventTemplateRepository interface {
	// List devuelve el catálogo completo ordenado por categoría y nombre.
	List(ctx context.Context) ([]*entity.EventTemplate, error)
	GetByCode(ctx context.Context, code string) (*entity.EventTemplate, error)
	GetByID(ctx context.Context, id string) (*entity.EventTemplate, error)
	// ListMandatory devuelve solo las plantillas con is_mandatory = true.
	ListMandatory(ctx context.Context) ([]*entity.EventTemplate, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.EventTemplate, error)
	// Upsert por code; usado por el seeder del catálogo.
	Upsert(ctx context.Context, tpl *entity.EventTemplate) error
}

// CompanyEventRepository puerto para la activación de plantillas por empresa.
type CompanyEventRepository interface {
	// Upsert inserta o actualiza de forma atómica sobre el conflicto
	// (company_id, event_template_id). Elimina la ventana de carrera del
	// patrón leer-luego-escribir.
	Upsert(ctx context.Context, ce *entity.CompanyEvent) error
	// BulkUpsert inserta en lote ignorando duplicados; devuelve cuántas
	// filas quedaron activas.
	BulkUpsert(ctx context.Context, events []*entity.CompanyEvent) (int, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyEvent, error)
	GetByID(ctx context.Context, id string) (*entity.CompanyEvent, error)
	GetByCompanyAndTemplate(ctx context.Context, companyID, templateID string) (*entity.CompanyEvent, error)
}

// EventFilter filtros de listado de eventos de calendario. Las fechas acotan
// due_date de forma inclusiva. Campos vacíos/nil no filtran.
type EventFilter struct {
	CompanyID      string
	StartDate      *time.Time
	EndDate        *time.Time
	Status         string
	CompanyEventID string
	Limit          int
	Offset         int
}

// CalendarEventRepository puerto para instancias concretas de obligaciones.
type CalendarEventRepository interface {
	Create(ctx context.Context, ev *entity.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*entity.CalendarEvent, error)
	Update(ctx context.Context, ev *entity.CalendarEvent) error
	// UpdateStatus cambia solo el estado y los metadatos de completación.
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, completionData []byte) error
	Delete(ctx context.Context, id string) error
	// List siempre ordena por due_date ascendente.
	List(ctx context.Context, filter EventFilter) ([]*entity.CalendarEvent, error)
}

// EventHistoryRepository puerto del historial append-only de un evento.
type EventHistoryRepository interface {
	Append(ctx context.Context, h *entity.EventHistory) error
	ListByEvent(ctx context.Context, eventID string) ([]*entity.EventHistory, error)
}

// EventTaskRepository puerto del checklist de un evento.
type EventTaskRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]*entity.EventTask, error)
}
