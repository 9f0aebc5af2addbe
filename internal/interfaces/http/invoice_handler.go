package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmestudio/contable-api/internal/application/billing"
	"github.com/jdmestudio/contable-api/internal/application/dto"
	"github.com/jdmestudio/contable-api/internal/domain"
)

// InvoiceHandler maneja las facturas: creación desde movimientos, consulta,
// autorización electrónica y descarga del PDF.
type InvoiceHandler struct {
	createUC    *billing.CreateInvoiceUseCase
	queryUC     *billing.InvoiceQueryUseCase
	authorizeUC *billing.AuthorizeInvoiceUseCase
	pdfUC       *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler inyectando los casos de uso.
func NewInvoiceHandler(
	createUC *billing.CreateInvoiceUseCase,
	queryUC *billing.InvoiceQueryUseCase,
	authorizeUC *billing.AuthorizeInvoiceUseCase,
	pdfUC *billing.PDFUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{
		createUC:    createUC,
		queryUC:     queryUC,
		authorizeUC: authorizeUC,
		pdfUC:       pdfUC,
	}
}

// CreateFromEntries crea una factura desde movimientos seleccionados.
// POST /api/clients/:id/invoices
func (h *InvoiceHandler) CreateFromEntries(c *fiber.Ctx) error {
	clientID := c.Params("id")
	var in dto.CreateInvoiceFromEntriesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.createUC.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID:      clientID,
		EntryIDs:      in.Entries,
		InvoiceType:   in.InvoiceType,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(billing.EntityToInvoiceResponse(inv))
}

// GetByID obtiene una factura. GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queryUC.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	return c.JSON(out)
}

// List lista facturas. GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	out, err := h.queryUC.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListByClient lista las facturas de un cliente. GET /api/clients/:id/invoices
func (h *InvoiceHandler) ListByClient(c *fiber.Ctx) error {
	items, err := h.queryUC.ListByClient(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(items)
}

// Authorize solicita el CAE a AFIP. POST /api/invoices/:id/authorize
func (h *InvoiceHandler) Authorize(c *fiber.Ctx) error {
	inv, err := h.authorizeUC.Authorize(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_AUTHORIZED", Message: err.Error()})
		case errors.Is(err, domain.ErrInvalidInvoiceData):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_INVOICE", Message: err.Error()})
		case errors.Is(err, domain.ErrAfipRejected):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "AFIP_REJECTED", Message: err.Error()})
		case errors.Is(err, domain.ErrCredentialsUnavailable),
			errors.Is(err, domain.ErrRemoteService),
			errors.Is(err, domain.ErrNumberResolution):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_UNAVAILABLE", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(billing.EntityToInvoiceResponse(inv))
}

// DownloadPDF descarga la representación gráfica. GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
