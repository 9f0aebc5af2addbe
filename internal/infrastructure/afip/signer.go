package afip

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/smallstep/pkcs7"

	"github.com/jdmestudio/contable-api/internal/domain"
	pkgafip "github.com/jdmestudio/contable-api/pkg/afip"
)

// ── Firmador externo (openssl) ────────────────────────────────────────────────

// OpenSSLSigner firma el TRA invocando openssl smime como proceso externo.
// Es el firmador por defecto; reproduce el flujo clásico de integración WSAA.
type OpenSSLSigner struct {
	Binary string // ejecutable a invocar; vacío = "openssl"
}

var _ pkgafip.Signer = (*OpenSSLSigner)(nil)

// SignCMS produce el sobre CMS/PKCS#7 en DER firmando plaintext con el
// certificado y la clave de las rutas dadas.
func (s *OpenSSLSigner) SignCMS(ctx context.Context, plaintext []byte, certPath, keyPath string) ([]byte, error) {
	if err := checkCredentialFiles(certPath, keyPath); err != nil {
		return nil, err
	}

	bin := s.Binary
	if bin == "" {
		bin = "openssl"
	}

	cmd := exec.CommandContext(ctx, bin,
		"smime", "-sign",
		"-signer", certPath,
		"-inkey", keyPath,
		"-outform", "DER",
		"-nodetach",
	)
	cmd.Stdin = bytes.NewReader(plaintext)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: openssl: %s", domain.ErrSigningFailed, detail)
	}
	return stdout.Bytes(), nil
}

// ── Firmador nativo (CMS en proceso) ──────────────────────────────────────────

// NativeCMSSigner firma el TRA con una implementación CMS en proceso, sin
// depender del binario openssl. Mismo contrato que OpenSSLSigner.
type NativeCMSSigner struct{}

var _ pkgafip.Signer = (*NativeCMSSigner)(nil)

// SignCMS implementa afip.Signer.
func (s *NativeCMSSigner) SignCMS(_ context.Context, plaintext []byte, certPath, keyPath string) ([]byte, error) {
	if err := checkCredentialFiles(certPath, keyPath); err != nil {
		return nil, err
	}

	cert, err := loadCertificatePEM(certPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}
	key, err := loadPrivateKeyPEM(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}

	signed, err := pkcs7.NewSignedData(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: inicializar SignedData: %v", domain.ErrSigningFailed, err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("%w: agregar firmante: %v", domain.ErrSigningFailed, err)
	}
	der, err := signed.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: serializar CMS: %v", domain.ErrSigningFailed, err)
	}
	return der, nil
}

// NewSigner construye el firmador según la configuración ("openssl" o "native").
func NewSigner(kind string) pkgafip.Signer {
	if kind == "native" {
		return &NativeCMSSigner{}
	}
	return &OpenSSLSigner{}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// checkCredentialFiles valida la existencia de certificado y clave antes de
// cualquier intento de firma o llamada de red.
func checkCredentialFiles(certPath, keyPath string) error {
	if _, err := os.Stat(certPath); err != nil {
		return fmt.Errorf("%w: certificado %s", domain.ErrCredentialFile, certPath)
	}
	if _, err := os.Stat(keyPath); err != nil {
		return fmt.Errorf("%w: clave privada %s", domain.ErrCredentialFile, keyPath)
	}
	return nil
}

func loadCertificatePEM(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer certificado: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("el certificado %s no es PEM", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsear certificado: %w", err)
	}
	return cert, nil
}

func loadPrivateKeyPEM(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer clave privada: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("la clave %s no es PEM", path)
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("formato de clave privada no soportado en %s", path)
}
