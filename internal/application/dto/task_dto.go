package dto

import "encoding/json"

// LaunchTaskRequest lanzamiento genérico de una tarea en segundo plano.
type LaunchTaskRequest struct {
	TaskType string         `json:"task_type"`
	Params   map[string]any `json:"params,omitempty"`
}

// LaunchTaskResponse id remoto de la tarea lanzada.
type LaunchTaskResponse struct {
	TaskID string `json:"task_id"`
}

// TaskStatusResponse estado remoto de una tarea.
type TaskStatusResponse struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WaitTaskRequest parámetros opcionales de espera; cero usa los defaults
// de configuración.
type WaitTaskRequest struct {
	PollIntervalMs int `json:"poll_interval_ms,omitempty"`
	TimeoutMs      int `json:"timeout_ms,omitempty"`
}
