// Package pdf implementa la generación del resumen mensual del calendario
// tributario de una empresa.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUT  │  Período                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Vencimiento | Obligación | Estado | Monto           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Monto pendiente / Monto total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Leyenda informativa                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tributa-api/internal/domain/entity"
	"github.com/jhoicas/Tributa-api/pkg/rut"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoSummaryGenerator implementa calendar.SummaryPDFGenerator usando Maroto v2.
type MarotoSummaryGenerator struct{}

// NewMarotoSummaryGenerator construye el generador.
func NewMarotoSummaryGenerator() *MarotoSummaryGenerator { return &MarotoSummaryGenerator{} }

// GenerateMonthlySummary genera el PDF y devuelve sus bytes.
func (g *MarotoSummaryGenerator) GenerateMonthlySummary(
	_ context.Context,
	company *entity.Company,
	period time.Time,
	events []*entity.CalendarEvent,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Calendario Tributario", true).
		WithAuthor(nonEmpty(company.TradeName, company.LegalName), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, period))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(events) == 0 {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("No hay obligaciones registradas para este período.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 4,
			}),
		)))
	} else {
		m.AddRows(tableHeaderRow())
		for _, r := range tableDetailRows(events) {
			m.AddRows(r)
		}
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(totalsRow(events))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + RUT (izq) y período (der).
func headerRow(company *entity.Company, period time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.LegalName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUT: "+rut.Format(company.RUT), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CALENDARIO TRIBUTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(periodLabel(period), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de obligaciones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Vencimiento", 2, align.Center),
		h("Obligación", 6, align.Left),
		h("Estado", 2, align.Center),
		h("Monto", 2, align.Right),
	)
}

// tableDetailRows: una fila por obligación del mes.
func tableDetailRows(events []*entity.CalendarEvent) []core.Row {
	result := make([]core.Row, 0, len(events))
	for _, ev := range events {
		monto := "—"
		if ev.Amount != nil {
			monto = "$" + formatMoney(ev.Amount.StringFixed(0))
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				ev.DueDate.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				ev.Title,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				statusLabel(ev.Status),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				monto,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: monto pendiente y monto total del mes, a la derecha.
func totalsRow(events []*entity.CalendarEvent) core.Row {
	pendiente, total := decimal.Zero, decimal.Zero
	for _, ev := range events {
		if ev.Amount == nil {
			continue
		}
		total = total.Add(*ev.Amount)
		if ev.Status != entity.EventStatusCompleted {
			pendiente = pendiente.Add(*ev.Amount)
		}
	}

	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(18).Add(
		col.New(4), // espacio izquierdo
		col.New(4).Add(
			label("Monto total del mes:"),
			grandLabel("PENDIENTE DE PAGO:"),
		),
		col.New(4).Add(
			value("$"+formatMoney(total.StringFixed(0))),
			grandValue("$"+formatMoney(pendiente.StringFixed(0))),
		),
	)
}

// footerRow: leyenda informativa.
func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Resumen informativo generado a partir del calendario tributario de la empresa. "+
				"Los montos y fechas definitivos son los publicados por el SII.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// periodLabel: "Agosto 2026".
func periodLabel(period time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[period.Month()-1], period.Year())
}

// statusLabel traduce el estado interno a una etiqueta legible.
func statusLabel(status string) string {
	switch status {
	case entity.EventStatusPending:
		return "Pendiente"
	case entity.EventStatusInProgress:
		return "En curso"
	case entity.EventStatusCompleted:
		return "Completado"
	case entity.EventStatusOverdue:
		return "Vencido"
	}
	return status
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg, s = true, s[1:]
	}
	n := len(s)
	if n > 3 {
		buf := make([]byte, 0, n+n/3)
		for i, c := range []byte(s) {
			if i > 0 && (n-i)%3 == 0 {
				buf = append(buf, '.')
			}
			buf = append(buf, c)
		}
		s = string(buf)
	}
	if neg {
		return "-" + s
	}
	return s
}
