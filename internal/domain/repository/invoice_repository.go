package repository

import "github.com/jdmestudio/contable-api/internal/domain/entity"

// InvoiceRepository acceso a facturas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	List(limit, offset int) ([]*entity.Invoice, error)
	ListByClient(clientID string) ([]*entity.Invoice, error)
	// UpdateAuthorization persiste número, CAE y vencimiento tras una
	// autorización confirmada. No toca el resto de la factura.
	UpdateAuthorization(invoice *entity.Invoice) error
}
