package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
)

// TaskHandler maneja el lanzamiento y seguimiento de tareas en segundo
// plano (protegido).
type TaskHandler struct {
	uc *tasks.TaskUseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *tasks.TaskUseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// Launch lanza una tarea genérica por tipo.
// POST /api/tasks/launch
func (h *TaskHandler) Launch(c *fiber.Ctx) error {
	var in dto.LaunchTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	taskID, err := h.uc.Launch(c.Context(), in.TaskType, in.Params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "task_type es requerido"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "LAUNCH_FAILED", Message: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.LaunchTaskResponse{TaskID: taskID})
}

// Status consulta el estado remoto de una tarea.
// GET /api/tasks/:id/status
func (h *TaskHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	st, err := h.uc.Status(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "STATUS_FAILED", Message: err.Error()})
	}
	return c.JSON(toTaskStatusResponse(st))
}

// Cancel solicita la cancelación de una tarea.
// POST /api/tasks/:id/cancel
func (h *TaskHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.uc.Cancel(c.Context(), id); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "CANCEL_FAILED", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Wait bloquea hasta que la tarea termina, falla o vence el plazo.
// POST /api/tasks/:id/wait
func (h *TaskHandler) Wait(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.WaitTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	st, err := h.uc.WaitForCompletion(c.Context(), id,
		time.Duration(in.PollIntervalMs)*time.Millisecond,
		time.Duration(in.TimeoutMs)*time.Millisecond,
	)
	if err != nil {
		if errors.Is(err, domain.ErrTaskTimeout) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TASK_TIMEOUT", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrTaskFailed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TASK_FAILED", Message: err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "WAIT_FAILED", Message: err.Error()})
	}
	return c.JSON(toTaskStatusResponse(st))
}

func toTaskStatusResponse(st *backend.TaskStatus) dto.TaskStatusResponse {
	return dto.TaskStatusResponse{
		TaskID: st.TaskID,
		Status: st.Status,
		Result: st.Result,
		Error:  st.Error,
	}
}
