package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jdmestudio/contable-api/internal/application/dto"
	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
)

const entryDateLayout = "2006-01-02"

// AccountUseCase maneja la cuenta corriente de cada cliente: movimientos y
// saldo acumulado.
type AccountUseCase struct {
	entryRepo  repository.AccountEntryRepository
	clientRepo repository.ClientRepository
}

// NewAccountUseCase construye el caso de uso.
func NewAccountUseCase(entryRepo repository.AccountEntryRepository, clientRepo repository.ClientRepository) *AccountUseCase {
	return &AccountUseCase{entryRepo: entryRepo, clientRepo: clientRepo}
}

// AddEntry registra un movimiento en la cuenta del cliente. La fecha vacía
// se interpreta como hoy; montos en cero se rechazan.
func (uc *AccountUseCase) AddEntry(clientID string, in dto.CreateAccountEntryRequest) (*dto.AccountEntryResponse, error) {
	client, err := uc.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	if in.Amount.IsZero() {
		return nil, fmt.Errorf("%w: el monto no puede ser cero", domain.ErrInvalidInput)
	}

	date := time.Now()
	if raw := strings.TrimSpace(in.Date); raw != "" {
		date, err = time.ParseInLocation(entryDateLayout, raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha inválida %q (se espera yyyy-mm-dd)", domain.ErrInvalidInput, in.Date)
		}
	}

	entry := &entity.AccountEntry{
		ID:          uuid.New().String(),
		ClientID:    client.ID,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		CreatedAt:   time.Now(),
	}
	if err := uc.entryRepo.Create(entry); err != nil {
		return nil, err
	}
	return entityToEntryResponse(entry), nil
}

// Statement devuelve los movimientos del cliente junto con el saldo a hoy.
func (uc *AccountUseCase) Statement(clientID string) (*dto.AccountStatementResponse, error) {
	client, err := uc.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	entries, err := uc.entryRepo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	balance, err := uc.entryRepo.BalanceAt(clientID, time.Now())
	if err != nil {
		return nil, err
	}

	items := make([]dto.AccountEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, *entityToEntryResponse(e))
	}
	return &dto.AccountStatementResponse{
		ClientID: clientID,
		Entries:  items,
		Balance:  balance,
	}, nil
}

func entityToEntryResponse(e *entity.AccountEntry) *dto.AccountEntryResponse {
	if e == nil {
		return nil
	}
	return &dto.AccountEntryResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		Date:        e.Date.Format(entryDateLayout),
		Description: e.Description,
		Amount:      e.Amount,
	}
}
