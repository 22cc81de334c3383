// Package sii orquesta el login contra el portal SII y el bootstrap del
// estado local de la empresa: perfil, credenciales, sesión y sincronización
// inicial en segundo plano.
package sii

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	"github.com/jhoicas/Tributa-api/pkg/logger"
	"github.com/jhoicas/Tributa-api/pkg/rut"
)

// f29SyncYear año fijo para la sincronización inicial de formularios F29.
const f29SyncYear = 2025

// backfillMonths meses de documentos a recuperar en el backfill inicial.
const backfillMonths = 12

// AuthUseCase orquesta el flujo completo de login SII. El flujo es lineal y
// no transaccional: los pasos obligatorios (auth, upsert de empresa,
// credenciales, sesión) propagan error; el fan-out de sincronización es
// trabajo opcional fuera de cualquier frontera de transacción y sus fallas
// se registran y se tragan.
type AuthUseCase struct {
	companyRepo  repository.CompanyRepository
	taxInfoRepo  repository.CompanyTaxInfoRepository
	settingsRepo repository.CompanySettingsRepository
	profileRepo  repository.ProfileRepository
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	sii          backend.SIIAuthenticator
	tasks        *tasks.TaskUseCase
	log          *logger.Logger
}

// NewAuthUseCase construye el orquestador con todas sus dependencias.
func NewAuthUseCase(
	companyRepo repository.CompanyRepository,
	taxInfoRepo repository.CompanyTaxInfoRepository,
	settingsRepo repository.CompanySettingsRepository,
	profileRepo repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	sii backend.SIIAuthenticator,
	taskUC *tasks.TaskUseCase,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		companyRepo:  companyRepo,
		taxInfoRepo:  taxInfoRepo,
		settingsRepo: settingsRepo,
		profileRepo:  profileRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		sii:          sii,
		tasks:        taskUC,
		log:          log,
	}
}

// Login ejecuta el flujo completo para el usuario autenticado de la API:
//
//  1. Normaliza el RUT y lo separa en cuerpo + dígito verificador.
//  2. Autentica contra el portal SII vía backend (falla ⇒ aborta, sin escrituras).
//  3. Upsert de Company + CompanyTaxInfo desde el perfil.
//  4. Persiste el blob de contraseña cifrada.
//  5. Si la empresa es nueva: dispara la sincronización inicial (best effort).
//  6. Upsert de la sesión (user, company), creando antes el perfil de usuario si falta.
//  7. Informa si la empresa aún necesita onboarding.
func (uc *AuthUseCase) Login(ctx context.Context, userID string, in dto.SIILoginRequest) (*dto.SIILoginResponse, error) {
	normalized := rut.Normalize(in.RUT)
	body, dv, err := rut.Split(in.RUT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRUT, err)
	}

	result, err := uc.sii.Login(ctx, body, dv, in.Password)
	if err != nil {
		return nil, err
	}

	company, isNew, err := uc.upsertCompany(ctx, normalized, result)
	if err != nil {
		return nil, err
	}

	if err := uc.upsertTaxInfo(ctx, company.ID, result); err != nil {
		return nil, err
	}

	if err := uc.companyRepo.SaveCredentials(ctx, company.ID, result.EncryptedPassword); err != nil {
		return nil, err
	}

	if isNew {
		uc.launchInitialSync(ctx, company.ID)
	}

	session, err := uc.upsertSession(ctx, userID, company.ID, result)
	if err != nil {
		return nil, err
	}

	settings, err := uc.settingsRepo.GetByCompanyID(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	needsSetup := settings == nil || !settings.CompletedSetup

	uc.log.Info().
		Str("company_id", company.ID).
		Str("rut", company.RUT).
		Bool("is_new", isNew).
		Bool("needs_setup", needsSetup).
		Msg("login SII exitoso")

	return &dto.SIILoginResponse{
		CompanyID:    company.ID,
		SessionID:    session.ID,
		IsNewCompany: isNew,
		NeedsSetup:   needsSetup,
		LegalName:    company.LegalName,
		RUT:          company.RUT,
	}, nil
}

// upsertCompany crea la empresa si el RUT no se había visto, o actualiza los
// campos mutables si el perfil SII cambió. El RUT nunca se modifica.
func (uc *AuthUseCase) upsertCompany(ctx context.Context, normalizedRUT string, result *backend.SIILoginResult) (*entity.Company, bool, error) {
	now := time.Now()
	existing, err := uc.companyRepo.GetByRUT(ctx, normalizedRUT)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		company := &entity.Company{
			ID:        uuid.New().String(),
			RUT:       normalizedRUT,
			LegalName: result.Profile.LegalName,
			TradeName: result.Profile.TradeName,
			Email:     result.Profile.Email,
			Phone:     result.Profile.Phone,
			Address:   result.Profile.Address,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.companyRepo.Create(ctx, company); err != nil {
			return nil, false, err
		}
		return company, true, nil
	}

	existing.LegalName = result.Profile.LegalName
	existing.TradeName = result.Profile.TradeName
	existing.Email = result.Profile.Email
	existing.Phone = result.Profile.Phone
	existing.Address = result.Profile.Address
	existing.UpdatedAt = now
	if err := uc.companyRepo.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (uc *AuthUseCase) upsertTaxInfo(ctx context.Context, companyID string, result *backend.SIILoginResult) error {
	now := time.Now()
	return uc.taxInfoRepo.Upsert(ctx, &entity.CompanyTaxInfo{
		ID:                  uuid.New().String(),
		CompanyID:           companyID,
		TaxRegime:           result.Profile.TaxRegime,
		ActivityCodes:       result.Profile.ActivityCodes,
		LegalRepresentative: result.Profile.LegalRepresentative,
		RawProfile:          result.RawProfile,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
}

// launchInitialSync dispara los cinco jobs de sincronización inicial de una
// empresa recién creada. Todo es fire-and-forget: cualquier falla se registra
// y se traga: el producto prefiere "login ok, datos pueden tardar" antes que
// bloquear el login por un paso opcional.
func (uc *AuthUseCase) launchInitialSync(ctx context.Context, companyID string) {
	now := time.Now()
	launch := func(desc string, fn func() (string, error)) {
		if _, err := fn(); err != nil {
			uc.log.Warn().Err(err).
				Str("company_id", companyID).
				Str("job", desc).
				Msg("sincronización inicial falló, continúa el login")
		}
	}

	// Mes actual, mes anterior y dos meses atrás, un mes cada uno.
	for back := 0; back <= 2; back++ {
		period := now.AddDate(0, -back, 0)
		launch(fmt.Sprintf("docs-%d-meses-atras", back), func() (string, error) {
			return uc.tasks.SyncSIIDocuments(ctx, companyID, period.Year(), period.Month(), 1)
		})
	}

	// Backfill histórico: 12 meses partiendo tres meses atrás.
	start := now.AddDate(0, -3, 0)
	launch("docs-backfill", func() (string, error) {
		return uc.tasks.SyncSIIDocuments(ctx, companyID, start.Year(), start.Month(), backfillMonths)
	})

	launch("f29", func() (string, error) {
		return uc.tasks.SyncSIIForm29(ctx, companyID, f29SyncYear)
	})
}

// upsertSession garantiza el perfil (prerrequisito FK) y reemplaza la sesión
// del par (user, company) con las cookies recién obtenidas.
func (uc *AuthUseCase) upsertSession(ctx context.Context, userID, companyID string, result *backend.SIILoginResult) (*entity.Session, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		user, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, domain.ErrUserNotFound
		}
		now := time.Now()
		if err := uc.profileRepo.Create(ctx, &entity.Profile{
			ID:        userID,
			Email:     user.Email,
			FullName:  user.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	return uc.sessionRepo.Upsert(ctx, &entity.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		CompanyID:    companyID,
		Cookies:      result.Cookies,
		LastAccessed: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
