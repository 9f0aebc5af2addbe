package billing

import (
	"context"
	"time"

	"github.com/jdmestudio/contable-api/internal/domain/entity"
	infraafip "github.com/jdmestudio/contable-api/internal/infrastructure/afip"
)

// CredentialProvider administra el par token/sign del WSAA. Lo implementa
// afip.TokenCache; en tests se inyecta un fake.
type CredentialProvider interface {
	// EnsureCredentials garantiza un par usable y lo devuelve; falla con
	// domain.ErrCredentialsUnavailable si no puede obtenerlo.
	EnsureCredentials(ctx context.Context, service string, minValidity time.Duration) (token, sign string, err error)
	// EnsureValid aplica la política de refresh (best-effort) y devuelve si
	// hubo refresh.
	EnsureValid(ctx context.Context, service string, minValidity time.Duration) bool
}

// BillingService define las operaciones del WSFE que usa la autorización.
// Lo implementa afip.WSFEClient.
type BillingService interface {
	LastAuthorized(ctx context.Context, auth infraafip.Auth, ptoVta, cbteTipo int) (int, error)
	RequestCAE(ctx context.Context, auth infraafip.Auth, det infraafip.InvoiceDetail) (*infraafip.CAEResult, error)
}

// InvoicePDFGenerator genera la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, client *entity.Client) ([]byte, error)
}
