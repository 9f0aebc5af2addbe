package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

const (
	wsfeNS         = "http://ar.gov.afip.dif.FEV1/"
	wsfeActionBase = "http://ar.gov.afip.dif.FEV1/"
)

// ── Aritmética de importes ────────────────────────────────────────────────────

// ComputeAmounts descompone un total bruto en neto e IVA a la alícuota dada,
// cuantizando a 2 decimales con redondeo half-up. Con alícuota cero el IVA
// es 0.00 y el neto es el total. Invariante: neto + iva == round(total, 2).
func ComputeAmounts(total, rate decimal.Decimal) (neto, iva, totalOut decimal.Decimal) {
	totalOut = total.Round(2)
	if rate.IsPositive() {
		neto = total.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
		iva = totalOut.Sub(neto)
		return neto, iva, totalOut
	}
	return totalOut, decimal.Zero.Round(2), totalOut
}

// ── Estructuras SOAP de request ───────────────────────────────────────────────

type wsfeEnvelope struct {
	XMLName  xml.Name `xml:"soapenv:Envelope"`
	XmlnsEnv string   `xml:"xmlns:soapenv,attr"`
	XmlnsAr  string   `xml:"xmlns:ar,attr"`
	Body     wsfeBody `xml:"soapenv:Body"`
}

type wsfeBody struct {
	Content interface{}
}

func (b wsfeBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type wsfeAuth struct {
	Token string `xml:"ar:Token"`
	Sign  string `xml:"ar:Sign"`
	Cuit  string `xml:"ar:Cuit"`
}

type feUltimoAutorizadoReq struct {
	XMLName  xml.Name `xml:"ar:FECompUltimoAutorizado"`
	Auth     wsfeAuth `xml:"ar:Auth"`
	PtoVta   int      `xml:"ar:PtoVta"`
	CbteTipo int      `xml:"ar:CbteTipo"`
}

type feCAESolicitarReq struct {
	XMLName  xml.Name `xml:"ar:FECAESolicitar"`
	Auth     wsfeAuth `xml:"ar:Auth"`
	FeCAEReq feCAEReq `xml:"ar:FeCAEReq"`
}

type feCAEReq struct {
	FeCabReq feCabReq `xml:"ar:FeCabReq"`
	FeDetReq feDetReq `xml:"ar:FeDetReq"`
}

type feCabReq struct {
	CantReg  int `xml:"ar:CantReg"` // siempre 1: un comprobante por request
	PtoVta   int `xml:"ar:PtoVta"`
	CbteTipo int `xml:"ar:CbteTipo"`
}

type feDetReq struct {
	Det []feCAEDetRequest `xml:"ar:FECAEDetRequest"`
}

type feCAEDetRequest struct {
	Concepto   int         `xml:"ar:Concepto"`
	DocTipo    int         `xml:"ar:DocTipo"`
	DocNro     string      `xml:"ar:DocNro"`
	CbteDesde  int         `xml:"ar:CbteDesde"`
	CbteHasta  int         `xml:"ar:CbteHasta"`
	CbteFch    string      `xml:"ar:CbteFch"`
	ImpTotal   string      `xml:"ar:ImpTotal"`
	ImpTotConc string      `xml:"ar:ImpTotConc"`
	ImpNeto    string      `xml:"ar:ImpNeto"`
	ImpOpEx    string      `xml:"ar:ImpOpEx"`
	ImpTrib    string      `xml:"ar:ImpTrib"`
	ImpIVA     string      `xml:"ar:ImpIVA"`
	MonID      string      `xml:"ar:MonId"`
	MonCotiz   string      `xml:"ar:MonCotiz"`
	IVA        *feIvaArray `xml:"ar:Iva,omitempty"`
}

type feIvaArray struct {
	AlicIva []feAlicIva `xml:"ar:AlicIva"`
}

type feAlicIva struct {
	ID      int    `xml:"ar:Id"`
	BaseImp string `xml:"ar:BaseImp"`
	Importe string `xml:"ar:Importe"`
}

// ── Estructuras SOAP de respuesta ─────────────────────────────────────────────
//
// Tipadas explícitamente; solo los campos que este cliente lee.

type wsfeResponseEnvelope struct {
	Body wsfeResponseBody `xml:"Body"`
}

type wsfeResponseBody struct {
	UltimoResp *feUltimoAutorizadoResponse `xml:"FECompUltimoAutorizadoResponse"`
	CAEResp    *feCAESolicitarResponse     `xml:"FECAESolicitarResponse"`
	Fault      *wsfeFault                  `xml:"Fault"`
}

type wsfeFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type feUltimoAutorizadoResponse struct {
	Result feUltimoAutorizadoResult `xml:"FECompUltimoAutorizadoResult"`
}

type feUltimoAutorizadoResult struct {
	PtoVta   int         `xml:"PtoVta"`
	CbteTipo int         `xml:"CbteTipo"`
	CbteNro  int         `xml:"CbteNro"`
	Errors   *feErrArray `xml:"Errors"`
}

type feCAESolicitarResponse struct {
	Result feCAESolicitarResult `xml:"FECAESolicitarResult"`
}

type feCAESolicitarResult struct {
	FeCabResp *feCabResp  `xml:"FeCabResp"`
	FeDetResp *feDetResp  `xml:"FeDetResp"`
	Errors    *feErrArray `xml:"Errors"`
}

type feCabResp struct {
	Resultado string `xml:"Resultado"`
}

type feDetResp struct {
	Det []feCAEDetResponse `xml:"FECAEDetResponse"`
}

type feCAEDetResponse struct {
	CAE           string      `xml:"CAE"`
	CAEFchVto     string      `xml:"CAEFchVto"`
	Resultado     string      `xml:"Resultado"`
	Observaciones *feObsArray `xml:"Observaciones"`
}

type feObsArray struct {
	Obs []feObs `xml:"Obs"`
}

type feObs struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

type feErrArray struct {
	Err []feErr `xml:"Err"`
}

type feErr struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

func (a *feErrArray) join() string {
	if a == nil || len(a.Err) == 0 {
		return ""
	}
	parts := make([]string, 0, len(a.Err))
	for _, e := range a.Err {
		parts = append(parts, fmt.Sprintf("%d: %s", e.Code, e.Msg))
	}
	return strings.Join(parts, "; ")
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// WSFEClient habla con el servicio de facturación electrónica (WSFEv1).
type WSFEClient struct {
	url        string
	cuit       string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWSFEClient construye el cliente WSFE para el CUIT emisor dado.
func NewWSFEClient(url, cuit string, timeout time.Duration, log *logger.Logger) *WSFEClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WSFEClient{
		url:        url,
		cuit:       cuit,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("wsfe"),
	}
}

// LastAuthorized consulta el último número de comprobante autorizado para el
// punto de venta y tipo dados. Cualquier falla (transporte, fault, errores de
// aplicación) se reporta como ErrNumberResolution: sin número no hay factura.
func (c *WSFEClient) LastAuthorized(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int, error) {
	body := feUltimoAutorizadoReq{
		Auth:     wsfeAuth{Token: auth.Token, Sign: auth.Sign, Cuit: auth.Cuit},
		PtoVta:   ptoVta,
		CbteTipo: cbteTipo,
	}
	resp, err := c.call(ctx, "FECompUltimoAutorizado", body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNumberResolution, err)
	}
	if resp.Body.UltimoResp == nil {
		return 0, fmt.Errorf("%w: respuesta sin FECompUltimoAutorizadoResult", domain.ErrNumberResolution)
	}
	result := resp.Body.UltimoResp.Result
	if msg := result.Errors.join(); msg != "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrNumberResolution, msg)
	}
	return result.CbteNro, nil
}

// RequestCAE solicita la autorización del comprobante. Un detalle por
// request (CantReg = 1).
func (c *WSFEClient) RequestCAE(ctx context.Context, auth Auth, det InvoiceDetail) (*CAEResult, error) {
	var ivaArr *feIvaArray
	if det.ImpIVA.IsPositive() {
		ivaArr = &feIvaArray{AlicIva: []feAlicIva{{
			ID:      det.IVAID,
			BaseImp: det.ImpNeto.StringFixed(2),
			Importe: det.ImpIVA.StringFixed(2),
		}}}
	}

	body := feCAESolicitarReq{
		Auth: wsfeAuth{Token: auth.Token, Sign: auth.Sign, Cuit: auth.Cuit},
		FeCAEReq: feCAEReq{
			FeCabReq: feCabReq{CantReg: 1, PtoVta: det.PtoVta, CbteTipo: det.CbteTipo},
			FeDetReq: feDetReq{Det: []feCAEDetRequest{{
				Concepto:   det.Concepto,
				DocTipo:    det.DocTipo,
				DocNro:     det.DocNro,
				CbteDesde:  det.CbteDesde,
				CbteHasta:  det.CbteHasta,
				CbteFch:    det.CbteFch,
				ImpTotal:   det.ImpTotal.StringFixed(2),
				ImpTotConc: "0.00",
				ImpNeto:    det.ImpNeto.StringFixed(2),
				ImpOpEx:    "0.00",
				ImpTrib:    "0.00",
				ImpIVA:     det.ImpIVA.StringFixed(2),
				MonID:      det.MonID,
				MonCotiz:   det.MonCotiz.StringFixed(2),
				IVA:        ivaArr,
			}}},
		},
	}

	resp, err := c.call(ctx, "FECAESolicitar", body)
	if err != nil {
		return nil, err
	}
	if resp.Body.CAEResp == nil {
		return nil, fmt.Errorf("%w: respuesta sin FECAESolicitarResult", domain.ErrMalformedResponse)
	}
	result := resp.Body.CAEResp.Result

	if msg := result.Errors.join(); msg != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrAfipRejected, msg)
	}
	if result.FeDetResp == nil || len(result.FeDetResp.Det) == 0 {
		return nil, fmt.Errorf("%w: respuesta sin FeDetResp", domain.ErrMalformedResponse)
	}

	detResp := result.FeDetResp.Det[0]
	if detResp.CAE == "" {
		return nil, fmt.Errorf("%w: detalle de respuesta sin CAE", domain.ErrMalformedResponse)
	}

	// Las observaciones acompañan CAEs exitosos; se loguean, nunca escalan.
	if detResp.Observaciones != nil {
		for _, obs := range detResp.Observaciones.Obs {
			c.log.Warn().Int("code", obs.Code).Str("msg", obs.Msg).Msg("observación de AFIP")
		}
	}

	out := &CAEResult{CAE: detResp.CAE, Resultado: detResp.Resultado}
	if detResp.CAEFchVto != "" {
		if due, err := time.Parse("20060102", detResp.CAEFchVto); err == nil {
			out.DueDate = &due
		}
	}
	return out, nil
}

// call serializa el body en el envelope SOAP, hace el POST y decodifica la
// respuesta en las estructuras tipadas.
func (c *WSFEClient) call(ctx context.Context, action string, content interface{}) (*wsfeResponseEnvelope, error) {
	envelope := wsfeEnvelope{
		XmlnsEnv: soapEnvNS,
		XmlnsAr:  wsfeNS,
		Body:     wsfeBody{Content: content},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializar envelope WSFE: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("crear request WSFE: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", wsfeActionBase+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: WSFE %s: %v", domain.ErrRemoteService, action, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxSOAPResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta WSFE: %v", domain.ErrRemoteService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: WSFE %s HTTP %d: %s", domain.ErrRemoteService, action, resp.StatusCode, soapFaultString(rawBody))
	}

	var envResp wsfeResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return nil, fmt.Errorf("%w: respuesta WSFE no parseable: %v", domain.ErrMalformedResponse, err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("%w: SOAP Fault [%s]: %s", domain.ErrRemoteService, envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	return &envResp, nil
}
