// Package afip contiene catálogos y tipos compartidos de los web services de
// facturación electrónica de AFIP (Argentina): WSAA (autenticación) y WSFEv1
// (solicitud de CAE).
package afip

// =============================================================================
// Tipos de comprobante (CbteTipo) — tabla FEParamGetTiposCbte del WSFEv1.
// =============================================================================

const (
	CbteFacturaA = 1  // Factura A
	CbteFacturaB = 6  // Factura B
	CbteFacturaC = 11 // Factura C
)

// CbteTipoForLetter devuelve el código de comprobante WSFE para la letra de
// factura usada por la aplicación (A, B o C). Letra desconocida cae en el
// código por defecto recibido.
func CbteTipoForLetter(letter string, def int) int {
	switch letter {
	case "A":
		return CbteFacturaA
	case "B":
		return CbteFacturaB
	case "C":
		return CbteFacturaC
	default:
		return def
	}
}

// =============================================================================
// Tipos de documento del receptor (DocTipo) — tabla FEParamGetTiposDoc.
// =============================================================================

const (
	DocCUIT          = 80
	DocCUIL          = 86
	DocDNI           = 96
	DocConsumidorFin = 99 // Consumidor final (sin identificar)
)

// =============================================================================
// Conceptos (Concepto) — tabla FEParamGetTiposConcepto.
// =============================================================================

const (
	ConceptoProductos          = 1
	ConceptoServicios          = 2
	ConceptoProductosServicios = 3
)

// =============================================================================
// Alícuotas de IVA (Id de AlicIva) — tabla FEParamGetTiposIva.
// =============================================================================

const (
	IVACero        = 3 // 0%
	IVADiezYMedio  = 4 // 10.5%
	IVAVeintiuno   = 5 // 21%
	IVAVeintisiete = 6 // 27%
)

// =============================================================================
// Monedas (MonId) — tabla FEParamGetTiposMonedas (las de uso corriente).
// =============================================================================

const (
	MonedaPesos = "PES"
	MonedaDolar = "DOL"
	MonedaEuro  = "060"
)

// ValidCurrencyCodes códigos de moneda aceptados por la aplicación.
var ValidCurrencyCodes = map[string]bool{
	MonedaPesos: true,
	MonedaDolar: true,
	MonedaEuro:  true,
}
