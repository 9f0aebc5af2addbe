package afip

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/beevik/etree"
)

// Ventana de tolerancia de reloj del TRA: generación 10 minutos en el pasado,
// expiración 10 minutos en el futuro.
const ticketSkew = 10 * time.Minute

const ticketTimeLayout = "2006-01-02T15:04:05-07:00"

// BuildLoginTicketRequest arma el XML del Ticket de Requerimiento de Acceso
// (TRA) del WSAA para el servicio dado. Función pura del reloj y el nombre
// de servicio: no toca disco ni red.
func BuildLoginTicketRequest(service string, now time.Time) ([]byte, error) {
	if service == "" {
		return nil, fmt.Errorf("afip: servicio vacío para el TRA")
	}

	uniqueID := rand.Int63n(10_000_000_000)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(fmt.Sprintf("%d", uniqueID))
	header.CreateElement("generationTime").SetText(now.Add(-ticketSkew).Format(ticketTimeLayout))
	header.CreateElement("expirationTime").SetText(now.Add(ticketSkew).Format(ticketTimeLayout))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}
