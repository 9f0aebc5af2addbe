package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
)

var _ repository.AccountEntryRepository = (*AccountEntryRepo)(nil)

// AccountEntryRepo implementación de AccountEntryRepository (usable con pool o tx).
type AccountEntryRepo struct {
	q Querier
}

// NewAccountEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountEntryRepository(q Querier) *AccountEntryRepo {
	return &AccountEntryRepo{q: q}
}

// Create persiste un movimiento de cuenta corriente.
func (r *AccountEntryRepo) Create(entry *entity.AccountEntry) error {
	query := `
		INSERT INTO account_entries (id, client_id, date, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ClientID, entry.Date, entry.Description, entry.Amount, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account entry: %w", err)
	}
	return nil
}

// ListByClient lista los movimientos del cliente ordenados por fecha.
func (r *AccountEntryRepo) ListByClient(clientID string) ([]*entity.AccountEntry, error) {
	query := `
		SELECT id, client_id, date, description, amount, created_at
		FROM account_entries WHERE client_id = $1 ORDER BY date, id`
	rows, err := r.q.Query(context.Background(), query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list account entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// GetByIDs devuelve los movimientos del cliente cuyos IDs estén en ids,
// ordenados por fecha y luego por ID.
func (r *AccountEntryRepo) GetByIDs(clientID string, ids []string) ([]*entity.AccountEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, client_id, date, description, amount, created_at
		FROM account_entries WHERE client_id = $1 AND id = ANY($2) ORDER BY date, id`
	rows, err := r.q.Query(context.Background(), query, clientID, ids)
	if err != nil {
		return nil, fmt.Errorf("get account entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// BalanceAt suma los montos del cliente hasta la fecha dada inclusive.
func (r *AccountEntryRepo) BalanceAt(clientID string, until time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM account_entries WHERE client_id = $1 AND date <= $2`
	var balance decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, clientID, until).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

func scanEntries(rows pgx.Rows) ([]*entity.AccountEntry, error) {
	var list []*entity.AccountEntry
	for rows.Next() {
		var e entity.AccountEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.Description, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
