// Package tasks implementa el lanzamiento y seguimiento de tareas Celery
// ejecutadas por el worker externo del backend.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	"github.com/jhoicas/Tributa-api/pkg/config"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

// TaskUseCase lanza tareas con nombre al worker externo y opcionalmente
// espera su término. No retiene estado local entre llamadas.
type TaskUseCase struct {
	runner       backend.TaskRunner
	log          *logger.Logger
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewTaskUseCase construye el caso de uso con el puerto hacia el worker.
func NewTaskUseCase(runner backend.TaskRunner, log *logger.Logger, cfg config.CeleryConfig) *TaskUseCase {
	pi := cfg.PollInterval
	if pi <= 0 {
		pi = 2 * time.Second
	}
	wt := cfg.WaitTimeout
	if wt <= 0 {
		wt = 5 * time.Minute
	}
	return &TaskUseCase{runner: runner, log: log, pollInterval: pi, waitTimeout: wt}
}

// Launch envía una tarea genérica. Sin retry ni clave de idempotencia:
// una llamada duplicada crea un job duplicado.
func (uc *TaskUseCase) Launch(ctx context.Context, taskType string, params map[string]any) (string, error) {
	if taskType == "" {
		return "", fmt.Errorf("%w: task_type vacío", domain.ErrInvalidInput)
	}
	taskID, err := uc.runner.Launch(ctx, taskType, params)
	if err != nil {
		return "", err
	}
	uc.log.Debug().Str("task_type", taskType).Str("task_id", taskID).Msg("tarea lanzada")
	return taskID, nil
}

// SyncSIIDocuments sincroniza documentos tributarios de la empresa desde el
// periodo (year, month), abarcando months meses hacia adelante.
func (uc *TaskUseCase) SyncSIIDocuments(ctx context.Context, companyID string, year int, month time.Month, months int) (string, error) {
	return uc.Launch(ctx, entity.TaskSyncDocuments, map[string]any{
		"company_id": companyID,
		"year":       year,
		"month":      int(month),
		"months":     months,
	})
}

// SyncSIIForm29 sincroniza los formularios F29 presentados en el año indicado.
func (uc *TaskUseCase) SyncSIIForm29(ctx context.Context, companyID string, year int) (string, error) {
	return uc.Launch(ctx, entity.TaskSyncF29, map[string]any{
		"company_id": companyID,
		"year":       year,
	})
}

// SyncCompanyCalendar regenera las instancias de calendario de la empresa.
func (uc *TaskUseCase) SyncCompanyCalendar(ctx context.Context, companyID string) (string, error) {
	return uc.Launch(ctx, entity.TaskSyncCalendar, map[string]any{
		"company_id": companyID,
	})
}

// SyncCompanyMemories recarga las memorias de contexto de la empresa.
func (uc *TaskUseCase) SyncCompanyMemories(ctx context.Context, companyID string) (string, error) {
	return uc.Launch(ctx, entity.TaskLoadMemories, map[string]any{
		"company_id": companyID,
	})
}

// GenerateForm29Draft genera el borrador F29 del periodo indicado.
func (uc *TaskUseCase) GenerateForm29Draft(ctx context.Context, companyID string, year int, month time.Month) (string, error) {
	return uc.Launch(ctx, entity.TaskGenerateF29Draft, map[string]any{
		"company_id": companyID,
		"year":       year,
		"month":      int(month),
	})
}

// Status consulta el estado remoto de la tarea.
func (uc *TaskUseCase) Status(ctx context.Context, taskID string) (*backend.TaskStatus, error) {
	return uc.runner.Status(ctx, taskID)
}

// Cancel solicita la cancelación remota de la tarea.
func (uc *TaskUseCase) Cancel(ctx context.Context, taskID string) error {
	return uc.runner.Cancel(ctx, taskID)
}

// WaitForCompletion sondea el estado hasta un desenlace:
//   - success: devuelve el estado final
//   - failure: error envolviendo domain.ErrTaskFailed con el mensaje remoto
//   - presupuesto agotado: domain.ErrTaskTimeout
//   - ctx cancelado: ctx.Err() (el caller puede abortar sin esperar el timeout)
//
// pollInterval/timeout en cero usan los valores configurados.
func (uc *TaskUseCase) WaitForCompletion(ctx context.Context, taskID string, pollInterval, timeout time.Duration) (*backend.TaskStatus, error) {
	if pollInterval <= 0 {
		pollInterval = uc.pollInterval
	}
	if timeout <= 0 {
		timeout = uc.waitTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		st, err := uc.runner.Status(ctx, taskID)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: tarea %s sigue sin terminar", domain.ErrTaskTimeout, taskID)
			}
			return nil, err
		}
		switch st.Status {
		case entity.TaskStatusSuccess:
			return st, nil
		case entity.TaskStatusFailure:
			msg := st.Error
			if msg == "" {
				msg = "sin detalle remoto"
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskFailed, msg)
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: tarea %s sigue sin terminar tras %s", domain.ErrTaskTimeout, taskID, timeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
