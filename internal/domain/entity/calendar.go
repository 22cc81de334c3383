package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un CalendarEvent. El origen de datos no valida transiciones;
// esta capa tampoco (ver UpdateEventStatus), solo restringe al conjunto conocido.
const (
	EventStatusPending    = "pending"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
	EventStatusOverdue    = "overdue"
)

// KnownEventStatus informa si el string pertenece al conjunto de estados conocidos.
func KnownEventStatus(s string) bool {
	switch s {
	case EventStatusPending, EventStatusInProgress, EventStatusCompleted, EventStatusOverdue:
		return true
	}
	return false
}

// EventTemplate fila del catálogo global de obligaciones tributarias
// recurrentes (F29, F22, cotizaciones previsionales, etc.). Read-mostly,
// administrada por seed/admin.
type EventTemplate struct {
	ID             string
	Code           string // ej. "f29_mensual"
	Name           string
	Description    string
	Category       string // declaraciones, pagos, laboral, ...
	IsMandatory    bool   // se activa automáticamente al inicializar el calendario
	RecurrenceRule string // regla por defecto, ej. "FREQ=MONTHLY;BYMONTHDAY=12"
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CompanyEvent activa un EventTemplate para una empresa concreta.
// Único por (company_id, event_template_id); el toggle es idempotente.
type CompanyEvent struct {
	ID              string
	CompanyID       string
	EventTemplateID string
	IsActive        bool
	Config          []byte // configuración propia de la empresa (jsonb), puede ser nil
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CalendarEvent instancia concreta con fecha de vencimiento, derivada de un
// CompanyEvent por el job de sincronización externo. Amount es el monto de la
// obligación cuando se conoce (ej. borrador F29).
type CalendarEvent struct {
	ID             string
	CompanyID      string
	CompanyEventID *string // nil para eventos creados a mano
	Title          string
	Description    string
	DueDate        time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Status         string
	Amount         *decimal.Decimal
	CompletedAt    *time.Time
	CompletionData []byte // metadatos arbitrarios de la completación (jsonb)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EventHistory entrada append-only de auditoría de un CalendarEvent.
type EventHistory struct {
	ID        string
	EventID   string
	Action    string // created, status_changed, updated, ...
	Detail    string
	CreatedBy string // user id; vacío si lo generó un job
	CreatedAt time.Time
}

// EventTask ítem de checklist asociado a un CalendarEvent.
type EventTask struct {
	ID        string
	EventID   string
	Title     string
	IsDone    bool
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
