package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		generator:   generator,
	}
}

// DownloadInvoicePDF recupera factura y cliente y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil || client == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, client)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	suffix := inv.Number
	if suffix == "" {
		suffix = inv.ID
	}
	filename = fmt.Sprintf("factura_%s.pdf", strings.ReplaceAll(suffix, "-", "_"))
	return pdfBytes, filename, nil
}
