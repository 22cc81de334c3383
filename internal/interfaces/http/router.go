package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tributa-api/internal/application/auth"
	"github.com/jhoicas/Tributa-api/internal/application/calendar"
	"github.com/jhoicas/Tributa-api/internal/application/sii"
	"github.com/jhoicas/Tributa-api/internal/application/tasks"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	SIIAuthUC  *sii.AuthUseCase
	CalendarUC *calendar.UseCase
	PDFUC      *calendar.PDFUseCase
	TaskUC     *tasks.TaskUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// SII (protegido)
	siiGroup := protected.Group("/sii")
	siiHandler := NewSIIHandler(deps.SIIAuthUC)
	siiGroup.Post("/login", siiHandler.Login)

	// Calendario tributario (protegido)
	cal := protected.Group("/calendar")
	calendarHandler := NewCalendarHandler(deps.CalendarUC, deps.PDFUC)
	cal.Get("/templates", calendarHandler.ListTemplates)
	cal.Get("/templates/:code", calendarHandler.GetTemplateByCode)
	cal.Post("/companies/:companyId/initialize", calendarHandler.InitializeCalendar)
	cal.Put("/companies/:companyId/templates/:templateId", calendarHandler.ToggleTemplate)
	cal.Get("/companies/:companyId/upcoming", calendarHandler.UpcomingEvents)
	cal.Get("/companies/:companyId/overdue", calendarHandler.OverdueEvents)
	cal.Get("/companies/:companyId/summary.pdf", calendarHandler.SummaryPDF)
	cal.Get("/events", calendarHandler.ListEvents)
	cal.Post("/events", calendarHandler.CreateEvent)
	cal.Get("/events/:id", calendarHandler.GetEvent)
	cal.Put("/events/:id", calendarHandler.UpdateEvent)
	cal.Put("/events/:id/status", calendarHandler.UpdateEventStatus)
	cal.Delete("/events/:id", calendarHandler.DeleteEvent)

	// Tareas en segundo plano (protegido)
	taskGroup := protected.Group("/tasks")
	taskHandler := NewTaskHandler(deps.TaskUC)
	taskGroup.Post("/launch", taskHandler.Launch)
	taskGroup.Get("/:id/status", taskHandler.Status)
	taskGroup.Post("/:id/cancel", taskHandler.Cancel)
	taskGroup.Post("/:id/wait", taskHandler.Wait)
}
