package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

// TaskStatus estado remoto de una tarea Celery.
type TaskStatus struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"` // pending | started | success | failure
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TaskRunner puerto de salida hacia el worker Celery. Launch es
// fire-and-forget: no hay retry ni clave de idempotencia, una llamada
// duplicada crea un job duplicado.
type TaskRunner interface {
	Launch(ctx context.Context, taskType string, params map[string]any) (string, error)
	Status(ctx context.Context, taskID string) (*TaskStatus, error)
	Cancel(ctx context.Context, taskID string) error
}

var _ TaskRunner = (*CeleryClient)(nil)

// CeleryClient implementación de TaskRunner sobre el backend HTTP.
type CeleryClient struct {
	client *Client
}

// NewCeleryClient construye el adaptador.
func NewCeleryClient(client *Client) *CeleryClient {
	return &CeleryClient{client: client}
}

type launchRequest struct {
	TaskType string         `json:"task_type"`
	Params   map[string]any `json:"params"`
}

type launchResponse struct {
	TaskID string `json:"task_id"`
}

// Launch envía la tarea a POST /api/celery/tasks/launch y devuelve el id remoto.
func (c *CeleryClient) Launch(ctx context.Context, taskType string, params map[string]any) (string, error) {
	var resp launchResponse
	err := c.client.postJSON(ctx, "/api/celery/tasks/launch", launchRequest{
		TaskType: taskType,
		Params:   params,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("lanzar tarea %s: %w", taskType, err)
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("lanzar tarea %s: backend no devolvió task_id", taskType)
	}
	return resp.TaskID, nil
}

// Status consulta GET /api/celery/tasks/{id}/status.
func (c *CeleryClient) Status(ctx context.Context, taskID string) (*TaskStatus, error) {
	var st TaskStatus
	if err := c.client.getJSON(ctx, "/api/celery/tasks/"+taskID+"/status", &st); err != nil {
		return nil, fmt.Errorf("estado de tarea %s: %w", taskID, err)
	}
	return &st, nil
}

// Cancel solicita la cancelación remota vía POST /api/celery/tasks/{id}/cancel.
func (c *CeleryClient) Cancel(ctx context.Context, taskID string) error {
	if err := c.client.postJSON(ctx, "/api/celery/tasks/"+taskID+"/cancel", struct{}{}, nil); err != nil {
		return fmt.Errorf("cancelar tarea %s: %w", taskID, err)
	}
	return nil
}
