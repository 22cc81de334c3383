package entity

import "time"

// Profile fila de perfil de usuario. Prerrequisito de clave foránea para
// Session: se crea (si no existe) antes del primer upsert de sesión.
type Profile struct {
	ID        string // mismo ID que el usuario de la API
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session guarda las cookies opacas de autenticación contra el portal SII
// para un par (usuario, empresa). Única por (user_id, company_id) y
// reemplazada en cada login exitoso.
type Session struct {
	ID           string
	UserID       string
	CompanyID    string
	Cookies      []byte // cookies serializadas tal como las entregó el backend
	LastAccessed time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
