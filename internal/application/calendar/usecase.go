// Package calendar implementa el CRUD sobre la jerarquía
// event_templates → company_events → calendar_events.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// UseCase casos de uso del calendario tributario. Es un passthrough tipado
// al store: no valida reglas de negocio sobre fechas ni legalidad de
// transiciones de estado.
type UseCase struct {
	templateRepo     repository.EventTemplateRepository
	companyEventRepo repository.CompanyEventRepository
	eventRepo        repository.CalendarEventRepository
	historyRepo      repository.EventHistoryRepository
	taskRepo         repository.EventTaskRepository
	tasks            *tasks.TaskUseCase
	log              *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	templateRepo repository.EventTemplateRepository,
	companyEventRepo repository.CompanyEventRepository,
	eventRepo repository.CalendarEventRepository,
	historyRepo repository.EventHistoryRepository,
	taskRepo repository.EventTaskRepository,
	taskUC *tasks.TaskUseCase,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		templateRepo:     templateRepo,
		companyEventRepo: companyEventRepo,
		eventRepo:        eventRepo,
		historyRepo:      historyRepo,
		taskRepo:         taskRepo,
		tasks:            taskUC,
		log:              log,
	}
}

// GetEventTemplates devuelve el catálogo ordenado por categoría y nombre.
func (uc *UseCase) GetEventTemplates(ctx context.Context) ([]dto.EventTemplateResponse, error) {
	list, err := uc.templateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EventTemplateResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTemplateResponse(t))
	}
	return items, nil
}

// GetEventTemplateByCode busca una plantilla por código.
func (uc *UseCase) GetEventTemplateByCode(ctx context.Context, code string) (*dto.EventTemplateResponse, error) {
	t, err := uc.templateRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return toTemplateResponse(t), nil
}

// InitializeCompanyCalendar activa plantillas para la empresa: las indicadas
// en selectedTemplateIDs o, si la lista viene vacía, todas las obligatorias.
// Tras persistir las company_events dispara un calendar-sync best effort:
// si el lanzamiento falla se registra y no se propaga, porque las filas ya
// quedaron creadas de forma durable.
func (uc *UseCase) InitializeCompanyCalendar(ctx context.Context, companyID string, selectedTemplateIDs []string) (*dto.InitializeCalendarResponse, error) {
	var (
		templates []*entity.EventTemplate
		err       error
	)
	if len(selectedTemplateIDs) > 0 {
		templates, err = uc.templateRepo.ListByIDs(ctx, selectedTemplateIDs)
	} else {
		templates, err = uc.templateRepo.ListMandatory(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events := make([]*entity.CompanyEvent, 0, len(templates))
	for _, t := range templates {
		events = append(events, &entity.CompanyEvent{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			EventTemplateID: t.ID,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	created := 0
	if len(events) > 0 {
		created, err = uc.companyEventRepo.BulkUpsert(ctx, events)
		if err != nil {
			return nil, err
		}
	}

	syncLaunched := false
	if _, err := uc.tasks.SyncCompanyCalendar(ctx, companyID); err != nil {
		uc.log.Warn().Err(err).Str("company_id", companyID).
			Msg("calendar-sync tras inicialización falló, las company_events ya quedaron creadas")
	} else {
		syncLaunched = true
	}

	return &dto.InitializeCalendarResponse{
		CompanyID:     companyID,
		EventsCreated: created,
		SyncLaunched:  syncLaunched,
	}, nil
}

// ToggleCompanyEvent activa o desactiva una plantilla para la empresa con un
// único upsert atómico sobre (company_id, event_template_id). Idempotente.
func (uc *UseCase) ToggleCompanyEvent(ctx context.Context, companyID, templateID string, isActive bool) (*dto.CompanyEventResponse, error) {
	now := time.Now()
	ce := &entity.CompanyEvent{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		EventTemplateID: templateID,
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.companyEventRepo.Upsert(ctx, ce); err != nil {
		return nil, err
	}
	// Releer para devolver el id real (el upsert conserva el existente).
	saved, err := uc.companyEventRepo.GetByCompanyAndTemplate(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.CompanyEventResponse{
		ID:              saved.ID,
		CompanyID:       saved.CompanyID,
		EventTemplateID: saved.EventTemplateID,
		IsActive:        saved.IsActive,
		UpdatedAt:       saved.UpdatedAt,
	}, nil
}

// ListEvents lista eventos con filtros; siempre ordenado por due_date ASC.
func (uc *UseCase) ListEvents(ctx context.Context, in dto.ListEventsRequest) (*dto.EventListResponse, error) {
	in.DefaultPage()
	filter := repository.EventFilter{
		CompanyID:      in.CompanyID,
		Status:         in.Status,
		CompanyEventID: in.CompanyEventID,
		Limit:          in.Limit,
		Offset:         in.Offset,
	}
	if in.StartDate != "" {
		t, err := time.Parse(dateLayout, in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date %q", domain.ErrInvalidInput, in.StartDate)
		}
		filter.StartDate = &t
	}
	if in.EndDate != "" {
		t, err := time.Parse(dateLayout, in.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date %q", domain.ErrInvalidInput, in.EndDate)
		}
		filter.EndDate = &t
	}

	list, err := uc.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CalendarEventResponse, 0, len(list))
	for _, ev := range list {
		items = append(items, *toEventResponse(ev))
	}
	return &dto.EventListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// GetEvent obtiene un evento con relaciones opcionales. Las relaciones se
// cargan con consultas separadas, no con un join único.
func (uc *UseCase) GetEvent(ctx context.Context, id string, includeTemplate, includeHistory, includeTasks bool) (*dto.CalendarEventResponse, error) {
	ev, err := uc.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, domain.ErrNotFound
	}
	resp := toEventResponse(ev)

	if includeTemplate && ev.CompanyEventID != nil {
		ce, err := uc.companyEventRepo.GetByID(ctx, *ev.CompanyEventID)
		if err != nil {
			return nil, err
		}
		if ce != nil {
			tpl, err := uc.templateRepo.GetByID(ctx, ce.EventTemplateID)
			if err != nil {
				return nil, err
			}
			if tpl != nil {
				resp.Template = toTemplateResponse(tpl)
			}
		}
	}

	if includeHistory {
		history, err := uc.historyRepo.ListByEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, h := range history {
			resp.History = append(resp.History, dto.EventHistoryResponse{
				ID: h.ID, Action: h.Action, Detail: h.Detail,
				CreatedBy: h.CreatedBy, CreatedAt: h.CreatedAt,
			})
		}
	}
	if includeTasks {
		items, err := uc.taskRepo.ListByEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, t := range items {
			resp.Tasks = append(resp.Tasks, dto.EventTaskResponse{
				ID: t.ID, Title: t.Title, IsDone: t.IsDone, Position: t.Position,
			})
		}
	}
	return resp, nil
}

// CreateEvent alta manual de un evento en estado pending.
func (uc *UseCase) CreateEvent(ctx context.Context, in dto.CreateEventRequest) (*dto.CalendarEventResponse, error) {
	if in.CompanyID == "" || in.Title == "" || in.DueDate == "" {
		return nil, fmt.Errorf("%w: company_id, title y due_date son requeridos", domain.ErrInvalidInput)
	}
	dueDate, err := time.Parse(dateLayout, in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date %q", domain.ErrInvalidInput, in.DueDate)
	}
	periodStart, err := parseOptionalDate(in.PeriodStart)
	if err != nil {
		return nil, err
	}
	periodEnd, err := parseOptionalDate(in.PeriodEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ev := &entity.CalendarEvent{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		CompanyEventID: in.CompanyEventID,
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        dueDate,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Status:         entity.EventStatusPending,
		Amount:         in.Amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.eventRepo.Create(ctx, ev); err != nil {
		return nil, err
	}
	uc.appendHistory(ctx, ev.ID, "created", "evento creado manualmente", "")
	return toEventResponse(ev), nil
}

// UpdateEvent edición parcial: solo los campos presentes se modifican.
func (uc *UseCase) UpdateEvent(ctx context.Context, id string, in dto.UpdateEventRequest) (*dto.CalendarEventResponse, error) {
	ev, err := uc.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, domain.ErrNotFound
	}

	if in.Title != "" {
		ev.Title = in.Title
	}
	if in.Description != "" {
		ev.Description = in.Description
	}
	if in.DueDate != "" {
		dueDate, err := time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date %q", domain.ErrInvalidInput, in.DueDate)
		}
		ev.DueDate = dueDate
	}
	if in.PeriodStart != nil {
		t, err := parseOptionalDate(in.PeriodStart)
		if err != nil {
			return nil, err
		}
		ev.PeriodStart = t
	}
	if in.PeriodEnd != nil {
		t, err := parseOptionalDate(in.PeriodEnd)
		if err != nil {
			return nil, err
		}
		ev.PeriodEnd = t
	}
	if in.Amount != nil {
		ev.Amount = in.Amount
	}
	ev.UpdatedAt = time.Now()

	if err := uc.eventRepo.Update(ctx, ev); err != nil {
		return nil, err
	}
	uc.appendHistory(ctx, ev.ID, "updated", "evento editado", "")
	return toEventResponse(ev), nil
}

// UpdateEventStatus cambia el estado. Solo se acepta el conjunto conocido de
// estados; la legalidad de la transición NO se valida (completed → pending
// pasa), igual que el origen de datos. Al completar se estampa completed_at
// y se guardan los metadatos tal como llegan.
func (uc *UseCase) UpdateEventStatus(ctx context.Context, id, userID string, in dto.UpdateEventStatusRequest) (*dto.CalendarEventResponse, error) {
	if !entity.KnownEventStatus(in.Status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
	}

	var completedAt *time.Time
	if in.Status == entity.EventStatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	if err := uc.eventRepo.UpdateStatus(ctx, id, in.Status, completedAt, in.CompletionData); err != nil {
		return nil, err
	}
	uc.appendHistory(ctx, id, "status_changed", "estado → "+in.Status, userID)

	ev, err := uc.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, domain.ErrNotFound
	}
	return toEventResponse(ev), nil
}

// DeleteEvent elimina el evento.
func (uc *UseCase) DeleteEvent(ctx context.Context, id string) error {
	return uc.eventRepo.Delete(ctx, id)
}

// GetUpcomingEvents eventos pendientes con vencimiento entre hoy y daysAhead días.
func (uc *UseCase) GetUpcomingEvents(ctx context.Context, companyID string, daysAhead int) (*dto.EventListResponse, error) {
	if daysAhead <= 0 {
		daysAhead = 30
	}
	today := truncateToDay(time.Now())
	end := today.AddDate(0, 0, daysAhead)
	return uc.ListEvents(ctx, dto.ListEventsRequest{
		CompanyID: companyID,
		StartDate: today.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Status:    entity.EventStatusPending,
	})
}

// GetOverdueEvents eventos pendientes cuyo vencimiento ya pasó.
func (uc *UseCase) GetOverdueEvents(ctx context.Context, companyID string) (*dto.EventListResponse, error) {
	yesterday := truncateToDay(time.Now()).AddDate(0, 0, -1)
	return uc.ListEvents(ctx, dto.ListEventsRequest{
		CompanyID: companyID,
		EndDate:   yesterday.Format(dateLayout),
		Status:    entity.EventStatusPending,
	})
}

// appendHistory registra auditoría best effort: una falla no corta la operación principal.
func (uc *UseCase) appendHistory(ctx context.Context, eventID, action, detail, userID string) {
	err := uc.historyRepo.Append(ctx, &entity.EventHistory{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Action:    action,
		Detail:    detail,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("event_id", eventID).Msg("no se pudo registrar historial")
	}
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, *s)
	}
	return &t, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func toTemplateResponse(t *entity.EventTemplate) *dto.EventTemplateResponse {
	return &dto.EventTemplateResponse{
		ID:             t.ID,
		Code:           t.Code,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		IsMandatory:    t.IsMandatory,
		RecurrenceRule: t.RecurrenceRule,
	}
}

func toEventResponse(ev *entity.CalendarEvent) *dto.CalendarEventResponse {
	return &dto.CalendarEventResponse{
		ID:             ev.ID,
		CompanyID:      ev.CompanyID,
		CompanyEventID: ev.CompanyEventID,
		Title:          ev.Title,
		Description:    ev.Description,
		DueDate:        ev.DueDate,
		PeriodStart:    ev.PeriodStart,
		PeriodEnd:      ev.PeriodEnd,
		Status:         ev.Status,
		Amount:         ev.Amount,
		CompletedAt:    ev.CompletedAt,
		CompletionData: ev.CompletionData,
		CreatedAt:      ev.CreatedAt,
		UpdatedAt:      ev.UpdatedAt,
	}
}
