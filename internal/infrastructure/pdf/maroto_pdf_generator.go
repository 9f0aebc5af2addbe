// Package pdf implementa la representación gráfica de las facturas del
// estudio usando Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Estudio + CUIT  │  Letra + N° Factura + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + CUIT + contacto                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: descripción (una línea por movimiento)            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Neto / IVA / TOTAL                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER AFIP: CAE + vencimiento                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain/entity"
	infraafip "github.com/jdmestudio/contable-api/internal/infrastructure/afip"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuerName string
	issuerCUIT string
	ivaRate    float64
}

// NewMarotoPDFGenerator construye el generador con los datos del emisor.
func NewMarotoPDFGenerator(issuerName, issuerCUIT string, ivaRate float64) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuerName: issuerName, issuerCUIT: issuerCUIT, ivaRate: ivaRate}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	client *entity.Client,
) ([]byte, error) {
	cfg := marotocfg.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+invoice.InvoiceType, true).
		WithAuthor(g.issuerName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, r := range descriptionRows(invoice.Description) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range caeFooterRows(invoice) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y letra + número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice) core.Row {
	number := invoice.Number
	if number == "" {
		number = "SIN NUMERAR"
	}
	fecha := invoice.IssuedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.issuerName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CUIT: "+g.issuerCUIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA "+invoice.InvoiceType, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del cliente receptor.
func clientRow(client *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CUIT: %s   |   Email: %s   |   Domicilio: %s",
				client.TaxID,
				nonEmpty(client.Email, "—"),
				nonEmpty(client.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// descriptionRows: una fila por línea de la descripción de la factura.
func descriptionRows(description string) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("DETALLE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, lineText := range strings.Split(description, "\n") {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(lineText, props.Text{Size: 8, Top: 1, Left: 1}),
		)))
	}
	return rows
}

// totalsRow: neto, IVA y total alineados a la derecha.
func (g *MarotoPDFGenerator) totalsRow(invoice *entity.Invoice) core.Row {
	neto, iva, total := infraafip.ComputeAmounts(invoice.Total, decimal.NewFromFloat(g.ivaRate))

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

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Neto gravado:"),
			label("IVA:"),
			grandLabel("TOTAL:"),
		),
		col.New(3).Add(
			value("$"+neto.StringFixed(2)),
			value("$"+iva.StringFixed(2)),
			grandValue("$"+total.StringFixed(2)),
		),
		col.New(3),
	)
}

// caeFooterRows: CAE + vencimiento, o la leyenda de pendiente de autorización.
func caeFooterRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("AUTORIZACIÓN ELECTRÓNICA AFIP", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if invoice.AuthCode == "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Comprobante pendiente de autorización", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorGray, Top: 2,
			}),
		)))
		return rows
	}

	caeLine := "CAE: " + invoice.AuthCode
	if invoice.AuthDueDate != nil {
		caeLine += "   |   Vencimiento: " + invoice.AuthDueDate.Format("02/01/2006")
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(caeLine, props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
	)))
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("Comprobante autorizado por AFIP. Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 1}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
