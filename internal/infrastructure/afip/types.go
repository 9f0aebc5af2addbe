// Package afip implementa los clientes de los web services de AFIP:
// WSAA (autenticación por ticket firmado) y WSFEv1 (solicitud de CAE),
// junto con el cache en disco de credenciales y su política de refresh.
package afip

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthCredential es el par token/sign emitido por el WSAA más las marcas de
// tiempo del ticket. Se reemplaza entero en cada refresh; nunca se actualiza
// parcialmente.
type AuthCredential struct {
	Token          string
	Sign           string
	GenerationTime time.Time
	Expiration     time.Time
}

// Valid indica si la credencial sigue vigente en el instante dado.
func (c AuthCredential) Valid(now time.Time) bool {
	return c.Token != "" && c.Sign != "" && c.Expiration.After(now)
}

// Auth es la cabecera de autenticación que el WSFE exige en cada operación.
type Auth struct {
	Token string
	Sign  string
	Cuit  string
}

// InvoiceDetail es el detalle de comprobante que viaja en FECAESolicitar.
// Un request por factura (CantReg = 1). Invariante: ImpTotal == ImpNeto +
// ImpIVA después del redondeo a 2 decimales.
type InvoiceDetail struct {
	Concepto  int
	DocTipo   int
	DocNro    string // CUIT del receptor, solo dígitos
	PtoVta    int
	CbteTipo  int
	CbteDesde int
	CbteHasta int
	CbteFch   string // yyyymmdd
	ImpTotal  decimal.Decimal
	ImpNeto   decimal.Decimal
	ImpIVA    decimal.Decimal
	IVAID     int
	MonID     string
	MonCotiz  decimal.Decimal
}

// CAEResult es el resultado de una autorización aceptada.
type CAEResult struct {
	CAE       string
	DueDate   *time.Time // Vencimiento del CAE (CAEFchVto)
	Resultado string     // "A" aprobado, "R" rechazado
}

// Observation es una observación consultiva devuelta junto a un CAE exitoso.
// Se loguea, nunca escala a error.
type Observation struct {
	Code    int
	Message string
}
