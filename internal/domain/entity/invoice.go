package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Letras de factura argentinas.
const (
	InvoiceTypeA = "A"
	InvoiceTypeB = "B"
	InvoiceTypeC = "C"
)

// ValidInvoiceTypes letras de comprobante aceptadas.
var ValidInvoiceTypes = map[string]bool{
	InvoiceTypeA: true,
	InvoiceTypeB: true,
	InvoiceTypeC: true,
}

// Métodos de pago.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// ValidPaymentMethods métodos de pago aceptados.
var ValidPaymentMethods = map[string]bool{
	PaymentCash:     true,
	PaymentCard:     true,
	PaymentTransfer: true,
}

// Invoice representa una factura emitida para un cliente, opcionalmente
// autorizada por AFIP. Number y AuthCode se escriben únicamente después de
// obtener un CAE confirmado.
type Invoice struct {
	ID            string
	ClientID      string
	Number        string // "0001-00000042" una vez autorizada; puede venir cargado a mano
	IssuedAt      time.Time
	Total         decimal.Decimal
	Description   string
	InvoiceType   string // A, B o C
	PaymentMethod string
	AuthCode      string     // CAE otorgado por AFIP
	AuthDueDate   *time.Time // Vencimiento del CAE (formato AFIP yyyymmdd)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
