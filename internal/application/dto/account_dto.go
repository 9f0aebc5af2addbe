package dto

import "github.com/shopspring/decimal"

// CreateAccountEntryRequest body para POST /api/clients/:id/entries.
// Amount positivo es deuda del cliente, negativo es pago a cuenta.
type CreateAccountEntryRequest struct {
	Date        string          `json:"date"` // yyyy-mm-dd; vacío → hoy
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountEntryResponse movimiento en respuestas.
type AccountEntryResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountStatementResponse movimientos de un cliente con su saldo acumulado.
type AccountStatementResponse struct {
	ClientID string                 `json:"client_id"`
	Entries  []AccountEntryResponse `json:"entries"`
	Balance  decimal.Decimal        `json:"balance"`
}
