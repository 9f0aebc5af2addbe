package billing

import (
	"github.com/jdmestudio/contable-api/internal/application/dto"
	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
)

// InvoiceQueryUseCase consultas de facturas (listados y detalle).
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase construye el caso de uso de consulta.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo}
}

// GetByID obtiene una factura por ID.
func (uc *InvoiceQueryUseCase) GetByID(id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	return EntityToInvoiceResponse(inv), nil
}

// List lista facturas con paginación.
func (uc *InvoiceQueryUseCase) List(limit, offset int) (*dto.InvoiceListResponse, error) {
	list, err := uc.invoiceRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *EntityToInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListByClient lista las facturas de un cliente.
func (uc *InvoiceQueryUseCase) ListByClient(clientID string) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *EntityToInvoiceResponse(inv))
	}
	return items, nil
}

// EntityToInvoiceResponse mapea la entidad al DTO de respuesta.
func EntityToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		Number:        inv.Number,
		IssuedAt:      inv.IssuedAt.Format("2006-01-02"),
		Total:         inv.Total,
		Description:   inv.Description,
		InvoiceType:   inv.InvoiceType,
		PaymentMethod: inv.PaymentMethod,
		AuthCode:      inv.AuthCode,
	}
	if inv.AuthDueDate != nil {
		resp.AuthDueDate = inv.AuthDueDate.Format("2006-01-02")
	}
	return resp
}
