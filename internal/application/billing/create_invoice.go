package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

const fallbackInvoiceDescription = "Factura generada desde movimientos"

// CreateInvoiceFromEntriesInput parámetros del caso de uso.
type CreateInvoiceFromEntriesInput struct {
	ClientID      string
	EntryIDs      []string
	InvoiceType   string // vacío → Factura B
	PaymentMethod string
}

// CreateInvoiceUseCase genera una factura a partir de movimientos de cuenta
// corriente seleccionados: total = suma de montos, descripción armada a
// partir del detalle de cada movimiento.
type CreateInvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	entryRepo   repository.AccountEntryRepository
	log         *logger.Logger
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	entryRepo repository.AccountEntryRepository,
	log *logger.Logger,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		entryRepo:   entryRepo,
		log:         log.Component("create-invoice"),
	}
}

// CreateFromEntries valida la selección y crea la factura. No autoriza: la
// factura queda sin número ni CAE hasta que se ejecute la autorización.
func (uc *CreateInvoiceUseCase) CreateFromEntries(in CreateInvoiceFromEntriesInput) (*entity.Invoice, error) {
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	invoiceType := in.InvoiceType
	if invoiceType == "" {
		invoiceType = entity.InvoiceTypeB
	}
	if !entity.ValidInvoiceTypes[invoiceType] {
		return nil, fmt.Errorf("%w: tipo de factura inválido: %q", domain.ErrInvalidInput, in.InvoiceType)
	}
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = entity.PaymentCash
	}
	if !entity.ValidPaymentMethods[paymentMethod] {
		return nil, fmt.Errorf("%w: método de pago inválido: %q", domain.ErrInvalidInput, in.PaymentMethod)
	}

	entries, err := uc.entryRepo.GetByIDs(in.ClientID, in.EntryIDs)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: seleccioná al menos un movimiento válido", domain.ErrInvalidInput)
	}

	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: el total debe ser mayor a cero", domain.ErrInvalidInput)
	}

	description := buildInvoiceDescription(entries)
	if description == "" {
		description = fallbackInvoiceDescription
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:            uuid.NewString(),
		ClientID:      client.ID,
		IssuedAt:      now,
		Total:         total,
		Description:   description,
		InvoiceType:   invoiceType,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.invoiceRepo.Create(invoice); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", invoice.ID).
		Str("client_id", client.ID).
		Int("entries", len(entries)).
		Str("total", total.StringFixed(2)).
		Msg("factura creada desde movimientos")
	return invoice, nil
}

// buildInvoiceDescription arma la descripción de la factura. Un movimiento
// solo usa su detalle (o la fecha si no lo tiene); varios se listan con
// fecha, detalle y monto.
func buildInvoiceDescription(entries []*entity.AccountEntry) string {
	if len(entries) == 0 {
		return ""
	}
	if len(entries) == 1 {
		description := strings.TrimSpace(entries[0].Description)
		if description == "" {
			return entries[0].Date.Format("02/01/2006")
		}
		return description
	}

	var b strings.Builder
	b.WriteString("Movimientos facturados:")
	for _, entry := range entries {
		detail := strings.TrimSpace(entry.Description)
		if detail == "" {
			detail = "Movimiento sin descripción"
		}
		b.WriteString(fmt.Sprintf("\n%s - %s ($%s)", entry.Date.Format("02/01/2006"), detail, entry.Amount.StringFixed(2)))
	}
	return b.String()
}
