package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountEntry representa un movimiento en la cuenta corriente de un cliente.
type AccountEntry struct {
	ID          string
	ClientID    string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}
