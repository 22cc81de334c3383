package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidRUT         = errors.New("rut inválido")
	ErrSIILogin           = errors.New("autenticación SII fallida")
	ErrTaskFailed         = errors.New("la tarea en segundo plano falló")
	ErrTaskTimeout        = errors.New("tiempo de espera agotado para la tarea")
	ErrInvalidStatus      = errors.New("estado de evento inválido")
)
