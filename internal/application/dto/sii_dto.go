package dto

import "time"

// SIILoginRequest credenciales del portal SII. El RUT se acepta en cualquier
// formato (con o sin puntos/guión); se normaliza antes de usarse.
type SIILoginRequest struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
}

// SIILoginResponse resultado del onboarding/login SII.
type SIILoginResponse struct {
	CompanyID    string `json:"company_id"`
	SessionID    string `json:"session_id"`
	IsNewCompany bool   `json:"is_new_company"`
	NeedsSetup   bool   `json:"needs_setup"`
	LegalName    string `json:"legal_name"`
	RUT          string `json:"rut"`
}

// CompanyResponse representación pública de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	RUT       string    `json:"rut"`
	LegalName string    `json:"legal_name"`
	TradeName string    `json:"trade_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse listado paginado de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
