package dto

import "github.com/shopspring/decimal"

// CreateInvoiceFromEntriesRequest body para POST /api/clients/:id/invoices.
// Entries son IDs de movimientos de cuenta corriente del cliente.
type CreateInvoiceFromEntriesRequest struct {
	Entries       []string `json:"entries"`
	InvoiceType   string   `json:"invoice_type,omitempty"` // A, B o C; vacío → B
	PaymentMethod string   `json:"payment_method,omitempty"`
}

// InvoiceResponse factura en respuestas. AuthCode y AuthDueDate se completan
// tras la autorización electrónica.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	Number        string          `json:"number,omitempty"`
	IssuedAt      string          `json:"issued_at"`
	Total         decimal.Decimal `json:"total"`
	Description   string          `json:"description"`
	InvoiceType   string          `json:"invoice_type"`
	PaymentMethod string          `json:"payment_method"`
	AuthCode      string          `json:"auth_code,omitempty"`
	AuthDueDate   string          `json:"auth_due_date,omitempty"`
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
