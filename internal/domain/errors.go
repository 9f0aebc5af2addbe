package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de la integración AFIP. Cada uno corresponde a un modo de falla
// distinto de la autorización electrónica; el caso de uso y la capa HTTP
// discriminan con errors.Is.
var (
	// ErrCredentialFile el certificado o la clave privada no existen en la
	// ruta configurada. Requiere intervención del operador.
	ErrCredentialFile = errors.New("afip: certificado o clave privada inexistente")

	// ErrSigningFailed el proceso de firma CMS terminó con error.
	ErrSigningFailed = errors.New("afip: falló la firma CMS del ticket")

	// ErrRemoteService falla de transporte o HTTP no-2xx contra WSAA/WSFE.
	ErrRemoteService = errors.New("afip: error de transporte contra el servicio remoto")

	// ErrMalformedResponse la respuesta parsea pero no trae los campos esperados.
	ErrMalformedResponse = errors.New("afip: respuesta remota sin los campos esperados")

	// ErrAfipRejected AFIP devolvió errores de aplicación (lista Errors del WSFE).
	ErrAfipRejected = errors.New("afip: solicitud rechazada por el servicio")

	// ErrInvalidInvoiceData la factura no tiene cliente o su CUIT no es reducible a dígitos.
	ErrInvalidInvoiceData = errors.New("afip: datos de factura inválidos")

	// ErrCredentialsUnavailable el cache de credenciales sigue vacío tras un refresh forzado.
	ErrCredentialsUnavailable = errors.New("afip: credenciales no disponibles")

	// ErrNumberResolution no se pudo resolver el próximo número de comprobante.
	ErrNumberResolution = errors.New("afip: no se pudo resolver el número de comprobante")
)
