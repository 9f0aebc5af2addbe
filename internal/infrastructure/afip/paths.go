package afip

import (
	"fmt"
	"os"
	"path/filepath"
)

// Nombres de archivo dentro del directorio de credenciales.
const (
	ticketRequestFile = "login_ticket_request.xml"
	signedCMSFile     = "login.cms.der"
	tokenFile         = "token.txt"
	signFile          = "sign.txt"
	fullTicketFile    = "ta.xml"
)

// CredentialPaths resuelve las rutas de certificado, clave privada y los
// artefactos cacheados de la autenticación WSAA. Inmutable durante el proceso.
type CredentialPaths struct {
	CertPath string
	KeyPath  string
	Dir      string // directorio de credenciales (ej. "afip/")
}

// TicketRequest ruta del TRA (loginTicketRequest.xml) generado.
func (p CredentialPaths) TicketRequest() string { return filepath.Join(p.Dir, ticketRequestFile) }

// SignedCMS ruta del sobre CMS firmado en DER.
func (p CredentialPaths) SignedCMS() string { return filepath.Join(p.Dir, signedCMSFile) }

// Token ruta del token cacheado en texto plano.
func (p CredentialPaths) Token() string { return filepath.Join(p.Dir, tokenFile) }

// Sign ruta del sign cacheado en texto plano.
func (p CredentialPaths) Sign() string { return filepath.Join(p.Dir, signFile) }

// FullTicket ruta del ticket de acceso completo (XML del WSAA).
func (p CredentialPaths) FullTicket() string { return filepath.Join(p.Dir, fullTicketFile) }

// EnsureDir crea el directorio de credenciales si no existe.
func (p CredentialPaths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("crear directorio de credenciales %s: %w", p.Dir, err)
	}
	return nil
}
