package sii

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tributa-api/internal/application/dto"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	"github.com/jhoicas/Tributa-api/pkg/config"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	byRUT       map[string]*entity.Company
	creates     int
	updates     int
	credentials map[string]string
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		byRUT:       make(map[string]*entity.Company),
		credentials: make(map[string]string),
	}
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.creates++
	cp := *c
	r.byRUT[c.RUT] = &cp
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	for _, c := range r.byRUT {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) GetByRUT(_ context.Context, rut string) (*entity.Company, error) {
	c, ok := r.byRUT[rut]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.updates++
	cp := *c
	r.byRUT[c.RUT] = &cp
	return nil
}

func (r *fakeCompanyRepo) SaveCredentials(_ context.Context, companyID, blob string) error {
	r.credentials[companyID] = blob
	return nil
}

func (r *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	return nil, nil
}

type fakeTaxInfoRepo struct {
	upserts map[string]*entity.CompanyTaxInfo
}

func (r *fakeTaxInfoRepo) Upsert(_ context.Context, info *entity.CompanyTaxInfo) error {
	if r.upserts == nil {
		r.upserts = make(map[string]*entity.CompanyTaxInfo)
	}
	cp := *info
	r.upserts[info.CompanyID] = &cp
	return nil
}

func (r *fakeTaxInfoRepo) GetByCompanyID(_ context.Context, companyID string) (*entity.CompanyTaxInfo, error) {
	return r.upserts[companyID], nil
}

type fakeSettingsRepo struct {
	rows map[string]*entity.CompanySettings
}

func (r *fakeSettingsRepo) GetByCompanyID(_ context.Context, companyID string) (*entity.CompanySettings, error) {
	return r.rows[companyID], nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, s *entity.CompanySettings) error {
	if r.rows == nil {
		r.rows = make(map[string]*entity.CompanySettings)
	}
	r.rows[s.CompanyID] = s
	return nil
}

type fakeProfileRepo struct {
	byID map[string]*entity.Profile
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	if r.byID == nil {
		return nil, nil
	}
	return r.byID[id], nil
}

func (r *fakeProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	if r.byID == nil {
		r.byID = make(map[string]*entity.Profile)
	}
	r.byID[p.ID] = p
	return nil
}

type fakeSessionRepo struct {
	byKey map[string]*entity.Session
}

func (r *fakeSessionRepo) Upsert(_ context.Context, s *entity.Session) (*entity.Session, error) {
	if r.byKey == nil {
		r.byKey = make(map[string]*entity.Session)
	}
	key := s.UserID + "/" + s.CompanyID
	if existing, ok := r.byKey[key]; ok {
		existing.Cookies = s.Cookies
		existing.LastAccessed = s.LastAccessed
		existing.UpdatedAt = s.UpdatedAt
		cp := *existing
		return &cp, nil
	}
	cp := *s
	r.byKey[key] = &cp
	out := cp
	return &out, nil
}

func (r *fakeSessionRepo) GetByUserAndCompany(_ context.Context, userID, companyID string) (*entity.Session, error) {
	return r.byKey[userID+"/"+companyID], nil
}

type fakeUserRepo struct {
	byID map[string]*entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if r.byID == nil {
		r.byID = make(map[string]*entity.User)
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.byID[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}

// fakeSII responde siempre el mismo perfil, o falla si err está seteado.
type fakeSII struct {
	profile   backend.SIIProfile
	cookies   []byte
	encrypted string
	err       error
	calls     int
}

func (f *fakeSII) Login(_ context.Context, body, dv, _ string) (*backend.SIILoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := json.Marshal(map[string]string{"rut": body + "-" + dv})
	return &backend.SIILoginResult{
		Profile:           f.profile,
		RawProfile:        raw,
		EncryptedPassword: f.encrypted,
		Cookies:           f.cookies,
	}, nil
}

// countRunner cuenta los lanzamientos por tipo de tarea.
type countRunner struct {
	launched []string
	failWith error
}

func (r *countRunner) Launch(_ context.Context, taskType string, _ map[string]any) (string, error) {
	if r.failWith != nil {
		return "", r.failWith
	}
	r.launched = append(r.launched, taskType)
	return "task-1", nil
}

func (r *countRunner) Status(_ context.Context, id string) (*backend.TaskStatus, error) {
	return &backend.TaskStatus{TaskID: id, Status: "success"}, nil
}

func (r *countRunner) Cancel(_ context.Context, _ string) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *AuthUseCase
	company  *fakeCompanyRepo
	taxInfo  *fakeTaxInfoRepo
	settings *fakeSettingsRepo
	profiles *fakeProfileRepo
	sessions *fakeSessionRepo
	users    *fakeUserRepo
	sii      *fakeSII
	runner   *countRunner
}

func newFixture() *fixture {
	f := &fixture{
		company:  newFakeCompanyRepo(),
		taxInfo:  &fakeTaxInfoRepo{},
		settings: &fakeSettingsRepo{},
		profiles: &fakeProfileRepo{},
		sessions: &fakeSessionRepo{},
		users: &fakeUserRepo{byID: map[string]*entity.User{
			"user-1": {ID: "user-1", Email: "ana@estudio.cl", Name: "Ana", Status: "active"},
		}},
		sii: &fakeSII{
			profile: backend.SIIProfile{
				LegalName: "Comercial Andina SpA",
				TradeName: "Andina",
				TaxRegime: "pro_pyme",
				Email:     "contacto@empresa.cl",
			},
			cookies:   []byte(`[{"name":"TOKEN","value":"abc"}]`),
			encrypted: "blob-cifrado",
		},
		runner: &countRunner{},
	}
	taskUC := tasks.NewTaskUseCase(f.runner, logger.Nop(), config.CeleryConfig{
		PollInterval: time.Millisecond, WaitTimeout: time.Second,
	})
	f.uc = NewAuthUseCase(
		f.company, f.taxInfo, f.settings,
		f.profiles, f.sessions, f.users,
		f.sii, taskUC, logger.Nop(),
	)
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// RUT nunca visto: crea empresa + tax info + sesión y dispara los cinco jobs
// de sincronización inicial.
func TestLogin_EmpresaNueva(t *testing.T) {
	f := newFixture()

	out, err := f.uc.Login(context.Background(), "user-1", dto.SIILoginRequest{
		RUT: "77.794.858-K", Password: "secreta",
	})
	require.NoError(t, err)

	assert.True(t, out.IsNewCompany)
	assert.True(t, out.NeedsSetup, "sin fila de settings la empresa necesita onboarding")
	assert.Equal(t, "77794858k", out.RUT, "el RUT se guarda en forma canónica")
	assert.Equal(t, "Comercial Andina SpA", out.LegalName)
	assert.NotEmpty(t, out.CompanyID)
	assert.NotEmpty(t, out.SessionID)

	assert.Equal(t, 1, f.company.creates)
	assert.Equal(t, "blob-cifrado", f.company.credentials[out.CompanyID])
	require.NotNil(t, f.taxInfo.upserts[out.CompanyID])
	assert.Equal(t, "pro_pyme", f.taxInfo.upserts[out.CompanyID].TaxRegime)

	// 3 meses puntuales + backfill + F29
	assert.Len(t, f.runner.launched, 5)
	assert.Equal(t, "sii.sync_f29", f.runner.launched[4])
}

// Mismo RUT en dos formatos: la segunda llamada actualiza en vez de duplicar
// y no relanza la sincronización inicial.
func TestLogin_RUTEquivalenteConverge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77.794.858-K", Password: "x"})
	require.NoError(t, err)

	f.sii.profile.LegalName = "Comercial Andina SpA (actualizada)"
	second, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77794858-k", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, first.CompanyID, second.CompanyID, "ambos formatos apuntan a la misma empresa")
	assert.False(t, second.IsNewCompany)
	assert.Equal(t, 1, f.company.creates)
	assert.Equal(t, 1, f.company.updates)
	assert.Equal(t, "Comercial Andina SpA (actualizada)", second.LegalName)
	assert.Len(t, f.runner.launched, 5, "la sincronización inicial corre solo en la creación")
}

func TestLogin_RUTInvalido(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Login(context.Background(), "user-1", dto.SIILoginRequest{RUT: "x", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrInvalidRUT)
}

// Falla de autenticación SII: aborta sin escrituras parciales.
func TestLogin_FallaSIISinEscrituras(t *testing.T) {
	f := newFixture()
	f.sii.err = domain.ErrSIILogin

	_, err := f.uc.Login(context.Background(), "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "mala"})
	require.ErrorIs(t, err, domain.ErrSIILogin)

	assert.Zero(t, f.company.creates)
	assert.Empty(t, f.taxInfo.upserts)
	assert.Empty(t, f.sessions.byKey)
}

// El fan-out de sincronización es best effort: si el worker no responde,
// el login igual termina bien.
func TestLogin_SincronizacionFallidaNoBloqueaLogin(t *testing.T) {
	f := newFixture()
	f.runner.failWith = errors.New("worker caído")

	out, err := f.uc.Login(context.Background(), "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	require.NoError(t, err)
	assert.True(t, out.IsNewCompany)
}

// El perfil FK se crea de forma perezosa la primera vez; después se reutiliza.
func TestLogin_CreaPerfilSiFalta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	require.NoError(t, err)
	require.NotNil(t, f.profiles.byID["user-1"])
	assert.Equal(t, "ana@estudio.cl", f.profiles.byID["user-1"].Email)

	// Segunda llamada: una sola sesión por (user, company), cookies renovadas.
	f.sii.cookies = []byte(`[{"name":"TOKEN","value":"def"}]`)
	out, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	require.NoError(t, err)

	assert.Len(t, f.sessions.byKey, 1)
	sess := f.sessions.byKey["user-1/"+out.CompanyID]
	require.NotNil(t, sess)
	assert.JSONEq(t, `[{"name":"TOKEN","value":"def"}]`, string(sess.Cookies))
}

// Usuario de la API inexistente: no se puede colgar la sesión de nadie.
func TestLogin_UsuarioInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Login(context.Background(), "fantasma", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// La bandera needs_setup refleja company_settings.completed_setup.
func TestLogin_NeedsSetupSegunSettings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	require.NoError(t, err)
	assert.True(t, first.NeedsSetup)

	require.NoError(t, f.settings.Upsert(ctx, &entity.CompanySettings{
		CompanyID: first.CompanyID, CompletedSetup: true,
	}))

	second, err := f.uc.Login(ctx, "user-1", dto.SIILoginRequest{RUT: "77794858-K", Password: "x"})
	require.NoError(t, err)
	assert.False(t, second.NeedsSetup)
}
