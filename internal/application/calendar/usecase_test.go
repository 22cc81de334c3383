package calendar

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	"github.com/jhoicas/Tributa-api/pkg/config"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con la misma semántica de conflicto que el SQL real
// ──────────────────────────────────────────────────────────────────────────────

type fakeTemplateRepo struct {
	templates []*entity.EventTemplate
}

func (r *fakeTemplateRepo) List(_ context.Context) ([]*entity.EventTemplate, error) {
	return r.templates, nil
}

func (r *fakeTemplateRepo) GetByCode(_ context.Context, code string) (*entity.EventTemplate, error) {
	for _, t := range r.templates {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*entity.EventTemplate, error) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ListMandatory(_ context.Context) ([]*entity.EventTemplate, error) {
	var out []*entity.EventTemplate
	for _, t := range r.templates {
		if t.IsMandatory {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.EventTemplate, error) {
	var out []*entity.EventTemplate
	for _, t := range r.templates {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Upsert(_ context.Context, tpl *entity.EventTemplate) error {
	r.templates = append(r.templates, tpl)
	return nil
}

// fakeCompanyEventRepo replica ON CONFLICT (company_id, event_template_id).
type fakeCompanyEventRepo struct {
	rows map[string]*entity.CompanyEvent // key company/template
}

func newFakeCompanyEventRepo() *fakeCompanyEventRepo {
	return &fakeCompanyEventRepo{rows: make(map[string]*entity.CompanyEvent)}
}

func ceKey(companyID, templateID string) string { return companyID + "/" + templateID }

func (r *fakeCompanyEventRepo) Upsert(_ context.Context, ce *entity.CompanyEvent) error {
	key := ceKey(ce.CompanyID, ce.EventTemplateID)
	if existing, ok := r.rows[key]; ok {
		existing.IsActive = ce.IsActive
		existing.UpdatedAt = ce.UpdatedAt
		return nil
	}
	cp := *ce
	r.rows[key] = &cp
	return nil
}

func (r *fakeCompanyEventRepo) BulkUpsert(_ context.Context, events []*entity.CompanyEvent) (int, error) {
	inserted := 0
	for _, ce := range events {
		key := ceKey(ce.CompanyID, ce.EventTemplateID)
		if _, ok := r.rows[key]; ok {
			continue // DO NOTHING
		}
		cp := *ce
		r.rows[key] = &cp
		inserted++
	}
	return inserted, nil
}

func (r *fakeCompanyEventRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyEvent, error) {
	var out []*entity.CompanyEvent
	for _, ce := range r.rows {
		if ce.CompanyID == companyID {
			out = append(out, ce)
		}
	}
	return out, nil
}

func (r *fakeCompanyEventRepo) GetByID(_ context.Context, id string) (*entity.CompanyEvent, error) {
	for _, ce := range r.rows {
		if ce.ID == id {
			return ce, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyEventRepo) GetByCompanyAndTemplate(_ context.Context, companyID, templateID string) (*entity.CompanyEvent, error) {
	ce, ok := r.rows[ceKey(companyID, templateID)]
	if !ok {
		return nil, nil
	}
	return ce, nil
}

// fakeEventRepo replica el filtrado y el ORDER BY due_date ASC del repo real.
type fakeEventRepo struct {
	events map[string]*entity.CalendarEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*entity.CalendarEvent)}
}

func (r *fakeEventRepo) Create(_ context.Context, ev *entity.CalendarEvent) error {
	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*entity.CalendarEvent, error) {
	ev, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

func (r *fakeEventRepo) Update(_ context.Context, ev *entity.CalendarEvent) error {
	if _, ok := r.events[ev.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id, status string, completedAt *time.Time, completionData []byte) error {
	ev, ok := r.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Status = status
	ev.CompletedAt = completedAt
	ev.CompletionData = completionData
	ev.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, f repository.EventFilter) ([]*entity.CalendarEvent, error) {
	var out []*entity.CalendarEvent
	for _, ev := range r.events {
		if f.CompanyID != "" && ev.CompanyID != f.CompanyID {
			continue
		}
		if f.Status != "" && ev.Status != f.Status {
			continue
		}
		if f.CompanyEventID != "" && (ev.CompanyEventID == nil || *ev.CompanyEventID != f.CompanyEventID) {
			continue
		}
		if f.StartDate != nil && ev.DueDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && ev.DueDate.After(*f.EndDate) {
			continue
		}
		cp := *ev
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	if f.Offset > 0 && f.Offset < len(out) {
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

type fakeHistoryRepo struct {
	entries []*entity.EventHistory
}

func (r *fakeHistoryRepo) Append(_ context.Context, h *entity.EventHistory) error {
	r.entries = append(r.entries, h)
	return nil
}

func (r *fakeHistoryRepo) ListByEvent(_ context.Context, eventID string) ([]*entity.EventHistory, error) {
	var out []*entity.EventHistory
	for _, h := range r.entries {
		if h.EventID == eventID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeEventTaskRepo struct {
	items []*entity.EventTask
}

func (r *fakeEventTaskRepo) ListByEvent(_ context.Context, eventID string) ([]*entity.EventTask, error) {
	var out []*entity.EventTask
	for _, it := range r.items {
		if it.EventID == eventID {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeTaskRunner struct {
	launched []string
	failWith error
}

func (r *fakeTaskRunner) Launch(_ context.Context, taskType string, _ map[string]any) (string, error) {
	if r.failWith != nil {
		return "", r.failWith
	}
	r.launched = append(r.launched, taskType)
	return "task-1", nil
}

func (r *fakeTaskRunner) Status(_ context.Context, id string) (*backend.TaskStatus, error) {
	return &backend.TaskStatus{TaskID: id, Status: "success"}, nil
}

func (r *fakeTaskRunner) Cancel(_ context.Context, _ string) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc            *UseCase
	templates     *fakeTemplateRepo
	companyEvents *fakeCompanyEventRepo
	events        *fakeEventRepo
	history       *fakeHistoryRepo
	eventTasks    *fakeEventTaskRepo
	runner        *fakeTaskRunner
}

func newFixture() *fixture {
	f := &fixture{
		templates: &fakeTemplateRepo{templates: []*entity.EventTemplate{
			{ID: "tpl-f29", Code: "f29_mensual", Name: "F29 mensual", Category: "declaraciones", IsMandatory: true},
			{ID: "tpl-cot", Code: "cotizaciones", Name: "Cotizaciones previsionales", Category: "laboral", IsMandatory: true},
			{ID: "tpl-f22", Code: "f22_anual", Name: "F22 renta anual", Category: "declaraciones", IsMandatory: false},
		}},
		companyEvents: newFakeCompanyEventRepo(),
		events:        newFakeEventRepo(),
		history:       &fakeHistoryRepo{},
		eventTasks:    &fakeEventTaskRepo{},
		runner:        &fakeTaskRunner{},
	}
	taskUC := tasks.NewTaskUseCase(f.runner, logger.Nop(), config.CeleryConfig{
		PollInterval: time.Millisecond, WaitTimeout: time.Second,
	})
	f.uc = NewUseCase(f.templates, f.companyEvents, f.events, f.history, f.eventTasks, taskUC, logger.Nop())
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inicialización del calendario
// ──────────────────────────────────────────────────────────────────────────────

// Sin selección explícita se activan solo las plantillas obligatorias.
func TestInitializeCompanyCalendar_SoloObligatorias(t *testing.T) {
	f := newFixture()

	out, err := f.uc.InitializeCompanyCalendar(context.Background(), "empresa-1", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, out.EventsCreated)
	assert.True(t, out.SyncLaunched)
	assert.Contains(t, f.runner.launched, "calendar.sync_company_calendar")

	_, hasF22 := f.companyEvents.rows[ceKey("empresa-1", "tpl-f22")]
	assert.False(t, hasF22, "las plantillas opcionales no se activan solas")
}

// Con selección explícita se activan exactamente las elegidas.
func TestInitializeCompanyCalendar_Seleccionadas(t *testing.T) {
	f := newFixture()

	out, err := f.uc.InitializeCompanyCalendar(context.Background(), "empresa-1", []string{"tpl-f22"})
	require.NoError(t, err)

	assert.Equal(t, 1, out.EventsCreated)
	_, hasF22 := f.companyEvents.rows[ceKey("empresa-1", "tpl-f22")]
	assert.True(t, hasF22)
}

// Catálogo sin obligatorias: cero filas, sin error, y el sync igual se lanza.
func TestInitializeCompanyCalendar_SinObligatorias(t *testing.T) {
	f := newFixture()
	for _, tpl := range f.templates.templates {
		tpl.IsMandatory = false
	}

	out, err := f.uc.InitializeCompanyCalendar(context.Background(), "empresa-1", nil)
	require.NoError(t, err)
	assert.Zero(t, out.EventsCreated)
	assert.True(t, out.SyncLaunched)
}

// Reinicializar no duplica filas: el conflicto se ignora.
func TestInitializeCompanyCalendar_Reentrante(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.InitializeCompanyCalendar(ctx, "empresa-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.EventsCreated)

	second, err := f.uc.InitializeCompanyCalendar(ctx, "empresa-1", nil)
	require.NoError(t, err)
	assert.Zero(t, second.EventsCreated)
	assert.Len(t, f.companyEvents.rows, 2)
}

// El fallo del lanzamiento del sync no deshace las filas ya creadas.
func TestInitializeCompanyCalendar_SyncFallidoNoPropaga(t *testing.T) {
	f := newFixture()
	f.runner.failWith = errors.New("worker caído")

	out, err := f.uc.InitializeCompanyCalendar(context.Background(), "empresa-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.EventsCreated)
	assert.False(t, out.SyncLaunched)
}

// ──────────────────────────────────────────────────────────────────────────────
// Toggle
// ──────────────────────────────────────────────────────────────────────────────

// Aplicar el mismo toggle N veces converge al mismo estado y conserva el id
// de la fila original.
func TestToggleCompanyEvent_Idempotente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.ToggleCompanyEvent(ctx, "empresa-1", "tpl-f29", true)
	require.NoError(t, err)

	second, err := f.uc.ToggleCompanyEvent(ctx, "empresa-1", "tpl-f29", true)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "el upsert conserva la fila existente")
	assert.True(t, second.IsActive)
	assert.Len(t, f.companyEvents.rows, 1)
}

func TestToggleCompanyEvent_ActivaYDesactiva(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	on, err := f.uc.ToggleCompanyEvent(ctx, "empresa-1", "tpl-f29", true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)

	off, err := f.uc.ToggleCompanyEvent(ctx, "empresa-1", "tpl-f29", false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.Equal(t, on.ID, off.ID)
	assert.Len(t, f.companyEvents.rows, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y filtros
// ──────────────────────────────────────────────────────────────────────────────

// El rango de fechas es inclusivo en ambos extremos y el resultado siempre
// viene ordenado por vencimiento ascendente.
func TestListEvents_RangoInclusivoYOrdenado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i, due := range []time.Time{
		day(2026, 8, 20), day(2026, 8, 1), day(2026, 8, 12),
		day(2026, 7, 31), day(2026, 9, 1),
	} {
		require.NoError(t, f.events.Create(ctx, &entity.CalendarEvent{
			ID:        string(rune('a' + i)),
			CompanyID: "empresa-1",
			Title:     "obligación",
			DueDate:   due,
			Status:    entity.EventStatusPending,
		}))
	}

	out, err := f.uc.ListEvents(ctx, dto.ListEventsRequest{
		CompanyID: "empresa-1",
		StartDate: "2026-08-01",
		EndDate:   "2026-08-20",
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 3, "los extremos del rango se incluyen")

	assert.Equal(t, day(2026, 8, 1), out.Items[0].DueDate)
	assert.Equal(t, day(2026, 8, 12), out.Items[1].DueDate)
	assert.Equal(t, day(2026, 8, 20), out.Items[2].DueDate)
}

func TestListEvents_FechaInvalida(t *testing.T) {
	f := newFixture()
	_, err := f.uc.ListEvents(context.Background(), dto.ListEventsRequest{
		CompanyID: "empresa-1",
		StartDate: "01/08/2026",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD de eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateEvent_PendienteConHistorial(t *testing.T) {
	f := newFixture()

	out, err := f.uc.CreateEvent(context.Background(), dto.CreateEventRequest{
		CompanyID: "empresa-1",
		Title:     "Pago IVA agosto",
		DueDate:   "2026-09-12",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EventStatusPending, out.Status)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, "created", f.history.entries[0].Action)
}

func TestCreateEvent_CamposRequeridos(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CreateEvent(context.Background(), dto.CreateEventRequest{Title: "sin empresa"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Completar estampa completed_at y guarda los metadatos tal cual.
func TestUpdateEventStatus_CompletadoEstampaFecha(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.CreateEvent(ctx, dto.CreateEventRequest{
		CompanyID: "empresa-1", Title: "F29", DueDate: "2026-09-12",
	})
	require.NoError(t, err)

	out, err := f.uc.UpdateEventStatus(ctx, created.ID, "user-1", dto.UpdateEventStatusRequest{
		Status:         entity.EventStatusCompleted,
		CompletionData: []byte(`{"folio":"123"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.EventStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
	assert.JSONEq(t, `{"folio":"123"}`, string(out.CompletionData))

	// created + status_changed
	require.Len(t, f.history.entries, 2)
	assert.Equal(t, "status_changed", f.history.entries[1].Action)
	assert.Equal(t, "user-1", f.history.entries[1].CreatedBy)
}

// La legalidad de la transición no se valida: completed → pending pasa,
// y al volver a pending se limpia completed_at.
func TestUpdateEventStatus_TransicionLibre(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.CreateEvent(ctx, dto.CreateEventRequest{
		CompanyID: "empresa-1", Title: "F29", DueDate: "2026-09-12",
	})
	require.NoError(t, err)

	_, err = f.uc.UpdateEventStatus(ctx, created.ID, "", dto.UpdateEventStatusRequest{Status: entity.EventStatusCompleted})
	require.NoError(t, err)

	out, err := f.uc.UpdateEventStatus(ctx, created.ID, "", dto.UpdateEventStatusRequest{Status: entity.EventStatusPending})
	require.NoError(t, err)
	assert.Equal(t, entity.EventStatusPending, out.Status)
	assert.Nil(t, out.CompletedAt)
}

func TestUpdateEventStatus_EstadoDesconocido(t *testing.T) {
	f := newFixture()
	_, err := f.uc.UpdateEventStatus(context.Background(), "ev-1", "", dto.UpdateEventStatusRequest{Status: "archivado"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetEvent_ConRelaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// company_event activo apuntando a una plantilla del catálogo
	_, err := f.uc.ToggleCompanyEvent(ctx, "empresa-1", "tpl-f29", true)
	require.NoError(t, err)
	ce, err := f.companyEvents.GetByCompanyAndTemplate(ctx, "empresa-1", "tpl-f29")
	require.NoError(t, err)

	require.NoError(t, f.events.Create(ctx, &entity.CalendarEvent{
		ID: "ev-1", CompanyID: "empresa-1", CompanyEventID: &ce.ID,
		Title: "F29 agosto", DueDate: day(2026, 9, 12), Status: entity.EventStatusPending,
	}))
	f.eventTasks.items = append(f.eventTasks.items,
		&entity.EventTask{ID: "t-1", EventID: "ev-1", Title: "Revisar libro de ventas", Position: 1},
	)

	out, err := f.uc.GetEvent(ctx, "ev-1", true, true, true)
	require.NoError(t, err)

	require.NotNil(t, out.Template)
	assert.Equal(t, "f29_mensual", out.Template.Code)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "Revisar libro de ventas", out.Tasks[0].Title)
}

func TestGetEvent_NoExiste(t *testing.T) {
	f := newFixture()
	_, err := f.uc.GetEvent(context.Background(), "no-existe", false, false, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.CreateEvent(ctx, dto.CreateEventRequest{
		CompanyID: "empresa-1", Title: "F29", DueDate: "2026-09-12",
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteEvent(ctx, created.ID))
	assert.ErrorIs(t, f.uc.DeleteEvent(ctx, created.ID), domain.ErrNotFound)
}
