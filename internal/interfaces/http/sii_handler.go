package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/sii"
	"github.com/jhoicas/Tributa-api/internal/domain"
)

// SIIHandler maneja el login/onboarding contra el portal del SII (protegido).
type SIIHandler struct {
	uc *sii.AuthUseCase
}

// NewSIIHandler construye el handler.
func NewSIIHandler(uc *sii.AuthUseCase) *SIIHandler {
	return &SIIHandler{uc: uc}
}

// Login godoc
// @Summary      Login en el portal SII y onboarding de la empresa
// @Tags         sii
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SIILoginRequest  true  "rut, password"
// @Success      200   {object}  dto.SIILoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/sii/login [post]
func (h *SIIHandler) Login(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SIILoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.RUT == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rut y password son requeridos"})
	}
	out, err := h.uc.Login(c.Context(), userID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRUT) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_RUT", Message: "rut inválido"})
		}
		if errors.Is(err, domain.ErrSIILogin) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SII_LOGIN_FAILED", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
