package afip_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/infrastructure/afip"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers compartidos por los tests de WSAA y del cache de tokens
// ──────────────────────────────────────────────────────────────────────────────

// fakeSigner firma sin credenciales reales y cuenta invocaciones.
type fakeSigner struct {
	calls int
	err   error
}

func (s *fakeSigner) SignCMS(_ context.Context, _ []byte, _, _ string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("cms-firmado"), nil
}

// ticketXML arma un loginTicketResponse como el que devuelve el WSAA.
func ticketXML(token, sign string, gen, exp time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<loginTicketResponse version="1.0">
  <header>
    <generationTime>%s</generationTime>
    <expirationTime>%s</expirationTime>
  </header>
  <credentials>
    <token>%s</token>
    <sign>%s</sign>
  </credentials>
</loginTicketResponse>`,
		gen.Format(time.RFC3339), exp.Format(time.RFC3339), token, sign)
}

// wsaaEnvelopeXML envuelve el ticket (escapado) en la respuesta SOAP del WSAA.
func wsaaEnvelopeXML(embeddedTicket string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(embeddedTicket))
	return `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns1:loginCmsResponse xmlns:ns1="http://wsaa.view.sua.dvadac.desein.afip.gov">
      <ns1:loginCmsReturn>` + escaped.String() + `</ns1:loginCmsReturn>
    </ns1:loginCmsResponse>
  </soapenv:Body>
</soapenv:Envelope>`
}

func testPaths(t *testing.T) afip.CredentialPaths {
	t.Helper()
	dir := t.TempDir()
	return afip.CredentialPaths{
		CertPath: dir + "/certificado.pem",
		KeyPath:  dir + "/jdmkey.key",
		Dir:      dir + "/afip",
	}
}

// ──────────────────────────────────────────────────────────────────────────────

func TestWSAAClient_RequestToken_OK(t *testing.T) {
	gen := time.Now().Add(-10 * time.Minute)
	exp := time.Now().Add(12 * time.Hour)
	ticket := ticketXML("tok-abc", "sig-xyz", gen, exp)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "loginCms", r.Header.Get("SOAPAction"))
		assert.Contains(t, r.Header.Get("Content-Type"), "text/xml")
		fmt.Fprint(w, wsaaEnvelopeXML(ticket))
	}))
	defer srv.Close()

	paths := testPaths(t)
	signer := &fakeSigner{}
	client := afip.NewWSAAClient(srv.URL, paths, signer, time.Minute, logger.Nop())

	cred, raw, err := client.RequestToken(context.Background(), "wsfev1")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, signer.calls)
	assert.Equal(t, "tok-abc", cred.Token)
	assert.Equal(t, "sig-xyz", cred.Sign)
	assert.WithinDuration(t, exp, cred.Expiration, time.Second)
	assert.Equal(t, ticket, string(raw), "debe devolver el ticket embebido tal cual")

	// Artefactos de auditoría en disco
	tra, err := os.ReadFile(paths.TicketRequest())
	require.NoError(t, err)
	assert.Contains(t, string(tra), "<service>wsfev1</service>")
	cms, err := os.ReadFile(paths.SignedCMS())
	require.NoError(t, err)
	assert.Equal(t, "cms-firmado", string(cms))
}

func TestWSAAClient_CertificadoAusente_SinLlamadaHTTP(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	paths := testPaths(t) // certificado.pem nunca se crea
	client := afip.NewWSAAClient(srv.URL, paths, &afip.OpenSSLSigner{}, time.Minute, logger.Nop())

	_, _, err := client.RequestToken(context.Background(), "wsfev1")
	assert.ErrorIs(t, err, domain.ErrCredentialFile)
	assert.Zero(t, hits, "con certificado ausente no debe haber llamada HTTP")
}

func TestWSAAClient_RespuestaSinLoginCmsReturn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body/></soapenv:Envelope>`)
	}))
	defer srv.Close()

	client := afip.NewWSAAClient(srv.URL, testPaths(t), &fakeSigner{}, time.Minute, logger.Nop())
	_, _, err := client.RequestToken(context.Background(), "wsfev1")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestWSAAClient_TicketIncompleto(t *testing.T) {
	// Ticket sin <sign>
	ticket := `<loginTicketResponse><header><expirationTime>2030-01-01T00:00:00-03:00</expirationTime></header><credentials><token>solo-token</token></credentials></loginTicketResponse>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, wsaaEnvelopeXML(ticket))
	}))
	defer srv.Close()

	client := afip.NewWSAAClient(srv.URL, testPaths(t), &fakeSigner{}, time.Minute, logger.Nop())
	_, _, err := client.RequestToken(context.Background(), "wsfev1")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestWSAAClient_HTTPNo2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := afip.NewWSAAClient(srv.URL, testPaths(t), &fakeSigner{}, time.Minute, logger.Nop())
	_, _, err := client.RequestToken(context.Background(), "wsfev1")
	assert.ErrorIs(t, err, domain.ErrRemoteService)
}

func TestParseLoginTicketResponse_Valido(t *testing.T) {
	gen := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
	exp := time.Now().Add(12 * time.Hour).Truncate(time.Second)

	cred, err := afip.ParseLoginTicketResponse([]byte(ticketXML("t", "s", gen, exp)))
	require.NoError(t, err)
	assert.Equal(t, "t", cred.Token)
	assert.Equal(t, "s", cred.Sign)
	assert.True(t, cred.GenerationTime.Equal(gen))
	assert.True(t, cred.Expiration.Equal(exp))
}
