package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmestudio/contable-api/internal/application/billing"
	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

type fakeEntryRepo struct {
	entries map[string]*entity.AccountEntry
}

func newFakeEntryRepo(entries ...*entity.AccountEntry) *fakeEntryRepo {
	r := &fakeEntryRepo{entries: map[string]*entity.AccountEntry{}}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeEntryRepo) Create(e *entity.AccountEntry) error { r.entries[e.ID] = e; return nil }

func (r *fakeEntryRepo) ListByClient(clientID string) ([]*entity.AccountEntry, error) {
	return nil, nil
}

func (r *fakeEntryRepo) GetByIDs(clientID string, ids []string) ([]*entity.AccountEntry, error) {
	var out []*entity.AccountEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok && e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) BalanceAt(clientID string, until time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func entry(id, desc, amount string, date time.Time) *entity.AccountEntry {
	return &entity.AccountEntry{
		ID:          id,
		ClientID:    "cli-1",
		Date:        date,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
	}
}

func buildCreateUC(invRepo *fakeInvoiceRepo, entryRepo *fakeEntryRepo) *billing.CreateInvoiceUseCase {
	return billing.NewCreateInvoiceUseCase(invRepo, newFakeClientRepo(billingClient()), entryRepo, logger.Nop())
}

func TestCreateFromEntries_UnMovimientoUsaSuDescripcion(t *testing.T) {
	entryRepo := newFakeEntryRepo(entry("e1", "  Honorarios contables  ", "1500.00", time.Date(2026, 2, 5, 0, 0, 0, 0, time.Local)))
	invRepo := newFakeInvoiceRepo()
	uc := buildCreateUC(invRepo, entryRepo)

	inv, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"e1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Honorarios contables", inv.Description, "un solo movimiento usa su detalle recortado")
	assert.Equal(t, "1500.00", inv.Total.StringFixed(2))
	assert.Equal(t, entity.InvoiceTypeB, inv.InvoiceType, "sin tipo explícito la factura es B")
	assert.Empty(t, inv.Number, "la factura nace sin numerar")
	assert.Empty(t, inv.AuthCode)
}

func TestCreateFromEntries_MovimientoSinDetalleUsaLaFecha(t *testing.T) {
	entryRepo := newFakeEntryRepo(entry("e1", "   ", "200.00", time.Date(2026, 2, 5, 0, 0, 0, 0, time.Local)))
	uc := buildCreateUC(newFakeInvoiceRepo(), entryRepo)

	inv, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"e1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "05/02/2026", inv.Description)
}

func TestCreateFromEntries_VariosMovimientosListanDetalle(t *testing.T) {
	entryRepo := newFakeEntryRepo(
		entry("e1", "Honorarios enero", "1000.00", time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local)),
		entry("e2", "", "350.50", time.Date(2026, 2, 15, 0, 0, 0, 0, time.Local)),
	)
	uc := buildCreateUC(newFakeInvoiceRepo(), entryRepo)

	inv, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"e1", "e2"},
	})
	require.NoError(t, err)

	want := "Movimientos facturados:\n" +
		"31/01/2026 - Honorarios enero ($1000.00)\n" +
		"15/02/2026 - Movimiento sin descripción ($350.50)"
	assert.Equal(t, want, inv.Description)
	assert.Equal(t, "1350.50", inv.Total.StringFixed(2))
}

func TestCreateFromEntries_SeleccionVaciaEsInvalida(t *testing.T) {
	uc := buildCreateUC(newFakeInvoiceRepo(), newFakeEntryRepo())

	_, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"no-existe"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateFromEntries_TotalNoPositivoEsInvalido(t *testing.T) {
	entryRepo := newFakeEntryRepo(
		entry("e1", "Nota de crédito", "-500.00", time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)),
		entry("e2", "Honorarios", "500.00", time.Date(2026, 2, 2, 0, 0, 0, 0, time.Local)),
	)
	uc := buildCreateUC(newFakeInvoiceRepo(), entryRepo)

	_, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"e1", "e2"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateFromEntries_TipoDeFacturaInvalido(t *testing.T) {
	entryRepo := newFakeEntryRepo(entry("e1", "Honorarios", "100.00", time.Now()))
	uc := buildCreateUC(newFakeInvoiceRepo(), entryRepo)

	_, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID:    "cli-1",
		EntryIDs:    []string{"e1"},
		InvoiceType: "X",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateFromEntries_ClienteInexistente(t *testing.T) {
	uc := billing.NewCreateInvoiceUseCase(newFakeInvoiceRepo(), newFakeClientRepo(), newFakeEntryRepo(), logger.Nop())

	_, err := uc.CreateFromEntries(billing.CreateInvoiceFromEntriesInput{
		ClientID: "cli-1",
		EntryIDs: []string{"e1"},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
