package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Tributa-api/internal/application/auth"
	appcalendar "github.com/jhoicas/Tributa-api/internal/application/calendar"
	appsii "github.com/jhoicas/Tributa-api/internal/application/sii"
	apptasks "github.com/jhoicas/Tributa-api/internal/application/tasks"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/backend"
	infrapdf "github.com/jhoicas/Tributa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Tributa-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Tributa-api/internal/interfaces/http"
	"github.com/jhoicas/Tributa-api/pkg/config"
	"github.com/jhoicas/Tributa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	taxInfoRepo := postgres.NewCompanyTaxInfoRepository(pool)
	settingsRepo := postgres.NewCompanySettingsRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	templateRepo := postgres.NewEventTemplateRepository(pool)
	companyEventRepo := postgres.NewCompanyEventRepository(pool)
	eventRepo := postgres.NewCalendarEventRepository(pool)
	historyRepo := postgres.NewEventHistoryRepository(pool)
	eventTaskRepo := postgres.NewEventTaskRepository(pool)

	// Clientes HTTP hacia el backend de scraping/colas
	backendClient := backend.NewClient(cfg.Backend)
	siiClient := backend.NewSIIClient(backendClient)
	celeryClient := backend.NewCeleryClient(backendClient)

	taskUC := apptasks.NewTaskUseCase(celeryClient, log, cfg.Celery)
	siiAuthUC := appsii.NewAuthUseCase(
		companyRepo, taxInfoRepo, settingsRepo,
		profileRepo, sessionRepo, userRepo,
		siiClient, taskUC, log,
	)
	calendarUC := appcalendar.NewUseCase(
		templateRepo, companyEventRepo, eventRepo,
		historyRepo, eventTaskRepo, taskUC, log,
	)

	// PDF: resumen mensual del calendario tributario
	pdfGenerator := infrapdf.NewMarotoSummaryGenerator()
	pdfUC := appcalendar.NewPDFUseCase(companyRepo, eventRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tributa API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		SIIAuthUC:  siiAuthUC,
		CalendarUC: calendarUC,
		PDFUC:      pdfUC,
		TaskUC:     taskUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
