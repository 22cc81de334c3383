// Package backend contiene los adaptadores HTTP hacia el backend de
// scraping/tareas (servicio externo): autenticación SII y lanzamiento de
// tareas Celery. Usa net/http de la stdlib sobre JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Tributa-api/pkg/config"
)

// Client cliente base: base URL + token de servicio inyectado en cada request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente base. El timeout de red es generoso (60 s):
// el login SII hace scraping del portal y puede tardar varios segundos.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.ServiceToken,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// errorBody forma estándar de error del backend: {"detail": "..."} (FastAPI).
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// do ejecuta el request, valida el status y decodifica la respuesta en out (si no es nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backend: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("backend: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("backend: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return fmt.Errorf("backend: leer respuesta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend: %s %s → HTTP %d: %s", method, path, resp.StatusCode, backendErrorMessage(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("backend: decodificar respuesta de %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// backendErrorMessage extrae el mensaje de error del cuerpo; si no es JSON
// conocido devuelve el cuerpo truncado.
func backendErrorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "sin cuerpo de respuesta"
	}
	return s
}
