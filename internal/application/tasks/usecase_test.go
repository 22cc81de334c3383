package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	"github.com/jhoicas/Tributa-api/pkg/config"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

// fakeRunner guiona las respuestas de Status: cada llamada consume el
// siguiente estado de la secuencia; el último se repite indefinidamente.
type fakeRunner struct {
	mu        sync.Mutex
	launched  []string
	statuses  []backend.TaskStatus
	calls     int
	launchErr error
}

func (f *fakeRunner) Launch(_ context.Context, taskType string, _ map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launchErr != nil {
		return "", f.launchErr
	}
	f.launched = append(f.launched, taskType)
	return "task-1", nil
}

func (f *fakeRunner) Status(_ context.Context, taskID string) (*backend.TaskStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.calls++
	st := f.statuses[i]
	st.TaskID = taskID
	return &st, nil
}

func (f *fakeRunner) Cancel(_ context.Context, _ string) error { return nil }

func newTestUC(runner *fakeRunner) *TaskUseCase {
	return NewTaskUseCase(runner, logger.Nop(), config.CeleryConfig{
		PollInterval: 5 * time.Millisecond,
		WaitTimeout:  100 * time.Millisecond,
	})
}

func TestLaunch_TipoVacioEsRechazado(t *testing.T) {
	uc := newTestUC(&fakeRunner{})
	_, err := uc.Launch(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLaunch_PropagaErrorDelRunner(t *testing.T) {
	runner := &fakeRunner{launchErr: errors.New("backend caído")}
	uc := newTestUC(runner)
	_, err := uc.Launch(context.Background(), "sii.sync_documents", nil)
	assert.Error(t, err)
}

// Secuencia pending → started → success: la espera termina con el estado final.
func TestWaitForCompletion_Exito(t *testing.T) {
	runner := &fakeRunner{statuses: []backend.TaskStatus{
		{Status: "pending"},
		{Status: "started"},
		{Status: "success"},
	}}
	uc := newTestUC(runner)

	st, err := uc.WaitForCompletion(context.Background(), "task-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "success", st.Status)
	assert.GreaterOrEqual(t, runner.calls, 3)
}

// Una tarea fallida produce un error que envuelve el mensaje remoto.
func TestWaitForCompletion_FallaConMensajeRemoto(t *testing.T) {
	runner := &fakeRunner{statuses: []backend.TaskStatus{
		{Status: "pending"},
		{Status: "failure", Error: "credenciales SII inválidas"},
	}}
	uc := newTestUC(runner)

	_, err := uc.WaitForCompletion(context.Background(), "task-1", 0, 0)
	require.ErrorIs(t, err, domain.ErrTaskFailed)
	assert.Contains(t, err.Error(), "credenciales SII inválidas")
}

// Una tarea que nunca termina agota el presupuesto y produce ErrTaskTimeout.
func TestWaitForCompletion_Timeout(t *testing.T) {
	runner := &fakeRunner{statuses: []backend.TaskStatus{{Status: "pending"}}}
	uc := newTestUC(runner)

	_, err := uc.WaitForCompletion(context.Background(), "task-1", 5*time.Millisecond, 30*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrTaskTimeout)
}

// Cancelar el contexto corta la espera sin aguantar el timeout completo.
func TestWaitForCompletion_CancelacionDeContexto(t *testing.T) {
	runner := &fakeRunner{statuses: []backend.TaskStatus{{Status: "pending"}}}
	uc := newTestUC(runner)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := uc.WaitForCompletion(ctx, "task-1", 5*time.Millisecond, 10*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

// Los wrappers usan los tipos de tarea del contrato con el worker.
func TestWrappers_TiposDeTarea(t *testing.T) {
	runner := &fakeRunner{}
	uc := newTestUC(runner)
	ctx := context.Background()

	_, err := uc.SyncSIIDocuments(ctx, "c1", 2026, time.August, 1)
	require.NoError(t, err)
	_, err = uc.SyncSIIForm29(ctx, "c1", 2025)
	require.NoError(t, err)
	_, err = uc.SyncCompanyCalendar(ctx, "c1")
	require.NoError(t, err)
	_, err = uc.SyncCompanyMemories(ctx, "c1")
	require.NoError(t, err)
	_, err = uc.GenerateForm29Draft(ctx, "c1", 2026, time.July)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sii.sync_documents",
		"sii.sync_f29",
		"calendar.sync_company_calendar",
		"memory.load_company_memories",
		"form29.generate_draft_for_company",
	}, runner.launched)
}
