package entity

import "time"

// Company representa un contribuyente (empresa) registrado en el sistema.
// Se crea en el primer login SII exitoso y se actualiza en logins posteriores
// si el perfil del SII cambió. El RUT es inmutable y único a nivel global.
type Company struct {
	ID                string
	RUT               string // forma canónica: cuerpo + DV minúscula, sin puntos ni guión
	LegalName         string // razón social según el SII
	TradeName         string // nombre de fantasía
	Email             string
	Phone             string
	Address           string
	EncryptedPassword string // blob cifrado por el backend; esta capa nunca ve texto plano
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CompanyTaxInfo extensión uno a uno de Company con los datos tributarios del
// perfil SII: régimen, actividades económicas, representante legal y una copia
// cruda del payload completo (jsonb) para auditoría.
type CompanyTaxInfo struct {
	ID                  string
	CompanyID           string
	TaxRegime           string   // ej. "14D3" (Pro Pyme), "14A" (régimen general)
	ActivityCodes       []string // códigos de actividad económica SII
	LegalRepresentative string
	RawProfile          []byte // payload completo del perfil SII tal como llegó
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CompanySettings fila de configuración por empresa. CompletedSetup indica si
// el onboarding inicial (selección de obligaciones) ya fue realizado.
type CompanySettings struct {
	ID             string
	CompanyID      string
	CompletedSetup bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
