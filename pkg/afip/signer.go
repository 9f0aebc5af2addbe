package afip

import "context"

// Signer firma el ticket de acceso del WSAA con el certificado y la clave
// del contribuyente, produciendo un sobre CMS/PKCS#7 en DER.
//
// La implementación por defecto invoca openssl como proceso externo; hay
// también una implementación nativa en proceso. Ambas comparten el contrato:
// certificado o clave inexistentes fallan con domain.ErrCredentialFile y un
// firmado fallido con domain.ErrSigningFailed.
type Signer interface {
	SignCMS(ctx context.Context, plaintext []byte, certPath, keyPath string) ([]byte, error)
}
