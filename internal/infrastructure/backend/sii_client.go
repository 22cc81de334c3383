package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Tributa-api/internal/domain"
)

// SIIProfile perfil del contribuyente tal como lo entrega el backend tras
// autenticarse en el portal SII.
type SIIProfile struct {
	RUT                 string   `json:"rut"`
	LegalName           string   `json:"razon_social"`
	TradeName           string   `json:"nombre_fantasia"`
	Email               string   `json:"email"`
	Phone               string   `json:"telefono"`
	Address             string   `json:"direccion"`
	TaxRegime           string   `json:"regimen"`
	ActivityCodes       []string `json:"actividades"`
	LegalRepresentative string   `json:"representante_legal"`
}

// SIILoginResult resultado del login: perfil, contraseña ya cifrada por el
// backend (esta capa nunca ve texto plano de vuelta) y cookies de sesión.
type SIILoginResult struct {
	Profile           SIIProfile      `json:"profile"`
	RawProfile        json.RawMessage `json:"-"` // payload completo de profile, para auditoría
	EncryptedPassword string          `json:"encrypted_password"`
	Cookies           json.RawMessage `json:"cookies"`
}

// SIIAuthenticator puerto de salida para la autenticación contra el portal SII.
// La implementación concreta llama al backend; para tests se inyecta un fake.
type SIIAuthenticator interface {
	// Login autentica con el RUT ya separado en cuerpo y dígito verificador.
	Login(ctx context.Context, rutBody, rutDV, password string) (*SIILoginResult, error)
}

var _ SIIAuthenticator = (*SIIClient)(nil)

// SIIClient implementación de SIIAuthenticator sobre el backend HTTP.
type SIIClient struct {
	client *Client
}

// NewSIIClient construye el adaptador.
func NewSIIClient(client *Client) *SIIClient {
	return &SIIClient{client: client}
}

type siiLoginRequest struct {
	RUTBody  string `json:"rut_body"`
	RUTDV    string `json:"rut_dv"`
	Password string `json:"password"`
}

// siiLoginResponse se decodifica dos veces: una vez tipado y otra para
// conservar el payload crudo del perfil.
type siiLoginResponse struct {
	Profile           json.RawMessage `json:"profile"`
	EncryptedPassword string          `json:"encrypted_password"`
	Cookies           json.RawMessage `json:"cookies"`
}

// Login llama a POST /api/sii/login. Una respuesta no exitosa se traduce a
// domain.ErrSIILogin con el mensaje reportado por el backend; no hay retry.
func (c *SIIClient) Login(ctx context.Context, rutBody, rutDV, password string) (*SIILoginResult, error) {
	var resp siiLoginResponse
	err := c.client.postJSON(ctx, "/api/sii/login", siiLoginRequest{
		RUTBody:  rutBody,
		RUTDV:    rutDV,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSIILogin, err)
	}

	var profile SIIProfile
	if err := json.Unmarshal(resp.Profile, &profile); err != nil {
		return nil, fmt.Errorf("%w: perfil ilegible: %v", domain.ErrSIILogin, err)
	}

	return &SIILoginResult{
		Profile:           profile,
		RawProfile:        resp.Profile,
		EncryptedPassword: resp.EncryptedPassword,
		Cookies:           resp.Cookies,
	}, nil
}
