package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain"
	domafip "github.com/jdmestudio/contable-api/internal/domain/afip"
	"github.com/jdmestudio/contable-api/internal/domain/entity"
	"github.com/jdmestudio/contable-api/internal/domain/repository"
	infraafip "github.com/jdmestudio/contable-api/internal/infrastructure/afip"
	"github.com/jdmestudio/contable-api/pkg/afip"
	"github.com/jdmestudio/contable-api/pkg/config"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

// AuthorizeInvoiceUseCase orquesta la autorización electrónica de una factura:
//
//	credenciales WSAA → importes → número de comprobante → FECAESolicitar → CAE
//
// La factura se muta (número + CAE) únicamente después de un CAE confirmado;
// cualquier falla aborta el intento sin efectos sobre el registro.
type AuthorizeInvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	credentials CredentialProvider
	wsfe        BillingService
	cfg         config.AFIPConfig
	log         *logger.Logger
}

// NewAuthorizeInvoiceUseCase construye el caso de uso.
func NewAuthorizeInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	credentials CredentialProvider,
	wsfe BillingService,
	cfg config.AFIPConfig,
	log *logger.Logger,
) *AuthorizeInvoiceUseCase {
	return &AuthorizeInvoiceUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		credentials: credentials,
		wsfe:        wsfe,
		cfg:         cfg,
		log:         log.Component("authorize-invoice"),
	}
}

// Authorize solicita el CAE para la factura dada y persiste número y código
// de autorización. Devuelve la factura actualizada.
func (uc *AuthorizeInvoiceUseCase) Authorize(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.AuthCode != "" {
		return nil, fmt.Errorf("%w: la factura ya tiene CAE %s", domain.ErrConflict, inv.AuthCode)
	}

	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: factura sin cliente", domain.ErrInvalidInvoiceData)
	}
	docNro := digitsOnly(client.TaxID)
	if docNro == "" {
		return nil, fmt.Errorf("%w: CUIT del cliente no reducible a dígitos: %q", domain.ErrInvalidInvoiceData, client.TaxID)
	}

	token, sign, err := uc.credentials.EnsureCredentials(ctx, uc.cfg.Service, 0)
	if err != nil {
		return nil, err
	}
	auth := infraafip.Auth{Token: token, Sign: sign, Cuit: digitsOnly(uc.cfg.CUIT)}

	neto, iva, total := infraafip.ComputeAmounts(inv.Total, decimal.NewFromFloat(uc.cfg.IVARate))

	issuedAt := inv.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	cbteTipo := afip.CbteTipoForLetter(inv.InvoiceType, uc.cfg.CbteTipo)
	pos, seq, explicit := domafip.ParseNumber(inv.Number, uc.cfg.PuntoVenta)
	if !explicit {
		// Numeración resuelta inmediatamente antes del envío para achicar la
		// ventana de carrera contra el contador remoto.
		last, lastErr := uc.wsfe.LastAuthorized(ctx, auth, pos, cbteTipo)
		if lastErr != nil {
			return nil, lastErr
		}
		seq = last + 1
	}

	detail := infraafip.InvoiceDetail{
		Concepto:  uc.cfg.Concepto,
		DocTipo:   uc.cfg.DocTipo,
		DocNro:    docNro,
		PtoVta:    pos,
		CbteTipo:  cbteTipo,
		CbteDesde: seq,
		CbteHasta: seq,
		CbteFch:   issuedAt.Format("20060102"),
		ImpTotal:  total,
		ImpNeto:   neto,
		ImpIVA:    iva,
		IVAID:     uc.cfg.IVAID,
		MonID:     uc.cfg.Moneda,
		MonCotiz:  decimal.NewFromInt(1),
	}

	result, err := uc.wsfe.RequestCAE(ctx, auth, detail)
	if err != nil {
		return nil, err
	}

	inv.Number = domafip.FormatNumber(pos, seq)
	inv.AuthCode = result.CAE
	inv.AuthDueDate = result.DueDate
	inv.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.UpdateAuthorization(inv); err != nil {
		return nil, fmt.Errorf("persistir autorización: %w", err)
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("cae", inv.AuthCode).
		Msg("factura autorizada")
	return inv, nil
}

// RefreshTokenIfNeeded aplica la política de refresh del token WSAA. Es
// best-effort: las fallas quedan logueadas dentro del cache y se reportan
// como "sin refresh". Pensado para el hook de arranque de la aplicación.
func (uc *AuthorizeInvoiceUseCase) RefreshTokenIfNeeded(ctx context.Context, minValidity time.Duration) bool {
	return uc.credentials.EnsureValid(ctx, uc.cfg.Service, minValidity)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
