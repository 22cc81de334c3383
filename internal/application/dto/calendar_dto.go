package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EventTemplateResponse fila del catálogo de obligaciones.
type EventTemplateResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	IsMandatory    bool   `json:"is_mandatory"`
	RecurrenceRule string `json:"recurrence_rule,omitempty"`
}

// InitializeCalendarRequest inicialización del calendario de una empresa.
// Sin TemplateIDs se activan todas las plantillas obligatorias.
type InitializeCalendarRequest struct {
	TemplateIDs []string `json:"template_ids,omitempty"`
}

// InitializeCalendarResponse resultado de la inicialización.
type InitializeCalendarResponse struct {
	CompanyID     string `json:"company_id"`
	EventsCreated int    `json:"events_created"`
	SyncLaunched  bool   `json:"sync_launched"`
}

// ToggleCompanyEventRequest activa o desactiva una plantilla para la empresa.
type ToggleCompanyEventRequest struct {
	IsActive bool `json:"is_active"`
}

// CompanyEventResponse activación de plantilla por empresa.
type CompanyEventResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	EventTemplateID string    `json:"event_template_id"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListEventsRequest filtros de listado de eventos. Fechas en formato 2006-01-02.
type ListEventsRequest struct {
	CompanyID      string `query:"company_id"`
	StartDate      string `query:"start_date"`
	EndDate        string `query:"end_date"`
	Status         string `query:"status"`
	CompanyEventID string `query:"company_event_id"`
	PageRequest
}

// CreateEventRequest alta manual de un evento de calendario.
type CreateEventRequest struct {
	CompanyID      string           `json:"company_id"`
	CompanyEventID *string          `json:"company_event_id,omitempty"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	DueDate        string           `json:"due_date"` // 2006-01-02
	PeriodStart    *string          `json:"period_start,omitempty"`
	PeriodEnd      *string          `json:"period_end,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
}

// UpdateEventRequest edición de un evento existente.
type UpdateEventRequest struct {
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	DueDate     string           `json:"due_date,omitempty"`
	PeriodStart *string          `json:"period_start,omitempty"`
	PeriodEnd   *string          `json:"period_end,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// UpdateEventStatusRequest cambio de estado. CompletionData se guarda tal cual.
type UpdateEventStatusRequest struct {
	Status         string          `json:"status"`
	CompletionData json.RawMessage `json:"completion_data,omitempty"`
}

// CalendarEventResponse instancia concreta de una obligación.
type CalendarEventResponse struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	CompanyEventID *string          `json:"company_event_id,omitempty"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	DueDate        time.Time        `json:"due_date"`
	PeriodStart    *time.Time       `json:"period_start,omitempty"`
	PeriodEnd      *time.Time       `json:"period_end,omitempty"`
	Status         string           `json:"status"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	CompletionData json.RawMessage  `json:"completion_data,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relaciones opcionales (side-loaded con consultas separadas).
	Template *EventTemplateResponse `json:"template,omitempty"`
	History  []EventHistoryResponse `json:"history,omitempty"`
	Tasks    []EventTaskResponse    `json:"tasks,omitempty"`
}

// EventListResponse listado paginado de eventos.
type EventListResponse struct {
	Items []CalendarEventResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// EventHistoryResponse entrada de auditoría.
type EventHistoryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventTaskResponse ítem de checklist.
type EventTaskResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsDone   bool   `json:"is_done"`
	Position int    `json:"position"`
}
