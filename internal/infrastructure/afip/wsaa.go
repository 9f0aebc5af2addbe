package afip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/beevik/etree"

	"github.com/jdmestudio/contable-api/internal/domain"
	pkgafip "github.com/jdmestudio/contable-api/pkg/afip"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

const (
	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	wsaaNS     = "http://wsaa.view.sua.dvadac.desein.afip.gov"
	wsaaAction = "loginCms"

	maxSOAPResponse = 1 << 20 // 1 MB
)

// ── Estructuras SOAP del WSAA ─────────────────────────────────────────────────

type wsaaEnvelope struct {
	XMLName  xml.Name `xml:"soapenv:Envelope"`
	XmlnsEnv string   `xml:"xmlns:soapenv,attr"`
	XmlnsWsa string   `xml:"xmlns:wsaa,attr"`
	Header   struct{} `xml:"soapenv:Header"`
	Body     wsaaBody `xml:"soapenv:Body"`
}

type wsaaBody struct {
	LoginCms wsaaLoginCms `xml:"wsaa:loginCms"`
}

type wsaaLoginCms struct {
	In0 string `xml:"wsaa:in0"` // CMS firmado en Base64
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// WSAAClient solicita tickets de acceso al servicio de autenticación de AFIP.
type WSAAClient struct {
	url        string
	paths      CredentialPaths
	signer     pkgafip.Signer
	httpClient *http.Client
	log        *logger.Logger
	now        func() time.Time
}

// NewWSAAClient construye el cliente WSAA. El timeout aplica a toda la
// llamada HTTP; el WSAA puede tardar varios segundos en responder.
func NewWSAAClient(url string, paths CredentialPaths, signer pkgafip.Signer, timeout time.Duration, log *logger.Logger) *WSAAClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WSAAClient{
		url:        url,
		paths:      paths,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("wsaa"),
		now:        time.Now,
	}
}

// RequestToken ejecuta el ciclo completo de autenticación: arma el TRA, lo
// firma en CMS, lo entrega al WSAA y extrae token, sign y expiración de la
// respuesta. Devuelve además el XML crudo del ticket de acceso para que el
// cache lo persista junto al par token/sign.
func (c *WSAAClient) RequestToken(ctx context.Context, service string) (*AuthCredential, []byte, error) {
	tra, err := BuildLoginTicketRequest(service, c.now())
	if err != nil {
		return nil, nil, err
	}

	// El TRA y el CMS quedan en disco para auditoría y reintentos manuales.
	if err := c.paths.EnsureDir(); err != nil {
		return nil, nil, err
	}
	if err := os.WriteFile(c.paths.TicketRequest(), tra, 0o600); err != nil {
		return nil, nil, fmt.Errorf("persistir TRA: %w", err)
	}

	cms, err := c.signer.SignCMS(ctx, tra, c.paths.CertPath, c.paths.KeyPath)
	if err != nil {
		return nil, nil, err
	}
	if err := os.WriteFile(c.paths.SignedCMS(), cms, 0o600); err != nil {
		return nil, nil, fmt.Errorf("persistir CMS: %w", err)
	}

	rawTicket, err := c.postLoginCms(ctx, cms)
	if err != nil {
		return nil, nil, err
	}

	cred, err := ParseLoginTicketResponse(rawTicket)
	if err != nil {
		return nil, nil, err
	}

	c.log.Info().
		Str("service", service).
		Time("expiration", cred.Expiration).
		Msg("ticket de acceso obtenido")
	return cred, rawTicket, nil
}

// postLoginCms envía el CMS al WSAA y devuelve el XML embebido en
// loginCmsReturn.
func (c *WSAAClient) postLoginCms(ctx context.Context, cms []byte) ([]byte, error) {
	envelope := wsaaEnvelope{
		XmlnsEnv: soapEnvNS,
		XmlnsWsa: wsaaNS,
		Body: wsaaBody{
			LoginCms: wsaaLoginCms{In0: base64.StdEncoding.EncodeToString(cms)},
		},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializar envelope WSAA: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("crear request WSAA: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", wsaaAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: WSAA: %v", domain.ErrRemoteService, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxSOAPResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta WSAA: %v", domain.ErrRemoteService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: WSAA HTTP %d: %s", domain.ErrRemoteService, resp.StatusCode, soapFaultString(rawBody))
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("%w: respuesta WSAA no es XML: %v", domain.ErrMalformedResponse, err)
	}
	ret := doc.FindElement("//loginCmsReturn")
	if ret == nil || ret.Text() == "" {
		return nil, fmt.Errorf("%w: respuesta WSAA sin loginCmsReturn", domain.ErrMalformedResponse)
	}
	return []byte(ret.Text()), nil
}

// ParseLoginTicketResponse extrae token, sign y marcas de tiempo del XML del
// ticket de acceso (loginTicketResponse).
func ParseLoginTicketResponse(raw []byte) (*AuthCredential, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: ticket de acceso no es XML: %v", domain.ErrMalformedResponse, err)
	}

	token := elementText(doc, "//credentials/token")
	sign := elementText(doc, "//credentials/sign")
	expiration := elementText(doc, "//header/expirationTime")
	if token == "" || sign == "" || expiration == "" {
		return nil, fmt.Errorf("%w: ticket de acceso sin token, sign o expirationTime", domain.ErrMalformedResponse)
	}

	exp, err := time.Parse(time.RFC3339, expiration)
	if err != nil {
		return nil, fmt.Errorf("%w: expirationTime inválido %q: %v", domain.ErrMalformedResponse, expiration, err)
	}

	cred := &AuthCredential{Token: token, Sign: sign, Expiration: exp}
	if gen := elementText(doc, "//header/generationTime"); gen != "" {
		if t, err := time.Parse(time.RFC3339, gen); err == nil {
			cred.GenerationTime = t
		}
	}
	return cred, nil
}

func elementText(doc *etree.Document, path string) string {
	if el := doc.FindElement(path); el != nil {
		return el.Text()
	}
	return ""
}

// soapFaultString devuelve el faultstring de un SOAP Fault si lo hay, para
// diagnósticos más legibles en errores HTTP.
func soapFaultString(rawBody []byte) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return "respuesta no XML"
	}
	if el := doc.FindElement("//faultstring"); el != nil {
		return el.Text()
	}
	return "sin detalle"
}
