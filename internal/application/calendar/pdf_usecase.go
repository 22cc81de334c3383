package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Tributa-api/internal/domain"
	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/internal/domain/repository"
)

// SummaryPDFGenerator puerto de generación del resumen mensual de
// obligaciones. La implementación concreta vive en infrastructure/pdf.
type SummaryPDFGenerator interface {
	GenerateMonthlySummary(
		ctx context.Context,
		company *entity.Company,
		period time.Time,
		events []*entity.CalendarEvent,
	) ([]byte, error)
}

// PDFUseCase genera el resumen mensual en PDF del calendario tributario
// de una empresa.
type PDFUseCase struct {
	companyRepo repository.CompanyRepository
	eventRepo   repository.CalendarEventRepository
	generator   SummaryPDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(
	companyRepo repository.CompanyRepository,
	eventRepo repository.CalendarEventRepository,
	generator SummaryPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		companyRepo: companyRepo,
		eventRepo:   eventRepo,
		generator:   generator,
	}
}

// MonthlySummary recupera los eventos del mes indicado y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrInvalidInput     si el período es inválido.
//   - domain.ErrNotFound         si la empresa no existe.
func (uc *PDFUseCase) MonthlySummary(
	ctx context.Context,
	companyID string,
	year, month int,
) (pdfBytes []byte, filename string, err error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, "", fmt.Errorf("%w: período %d-%d inválido", domain.ErrInvalidInput, year, month)
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	// Rango [primer día, último día] del mes, inclusivo sobre due_date.
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	events, err := uc.eventRepo.List(ctx, repository.EventFilter{
		CompanyID: companyID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: listar eventos: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateMonthlySummary(ctx, company, start, events)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("calendario_%s_%04d_%02d.pdf", company.RUT, year, month)
	return pdfBytes, filename, nil
}
