package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain/entity"
)

// AccountEntryRepository acceso a movimientos de cuenta corriente.
type AccountEntryRepository interface {
	Create(entry *entity.AccountEntry) error
	ListByClient(clientID string) ([]*entity.AccountEntry, error)
	// GetByIDs devuelve los movimientos del cliente cuyos IDs estén en ids,
	// ordenados por fecha y luego por ID.
	GetByIDs(clientID string, ids []string) ([]*entity.AccountEntry, error)
	// BalanceAt suma los montos del cliente hasta la fecha dada inclusive.
	BalanceAt(clientID string, until time.Time) (decimal.Decimal, error)
}
