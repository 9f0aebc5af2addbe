package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jdmestudio/contable-api/internal/application/billing"
	"github.com/jdmestudio/contable-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClientUC        *usecase.ClientUseCase
	AccountUC       *usecase.AccountUseCase
	CreateInvoiceUC *billing.CreateInvoiceUseCase
	InvoiceQueryUC  *billing.InvoiceQueryUseCase
	AuthorizeUC     *billing.AuthorizeInvoiceUseCase
	PDFUC           *billing.PDFUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Clients
	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Create)
	clients.Get("/:id", clientHandler.GetByID)

	// Cuenta corriente por cliente
	accountHandler := NewAccountHandler(deps.AccountUC)
	clients.Get("/:id/entries", accountHandler.Statement)
	clients.Post("/:id/entries", accountHandler.AddEntry)

	// Facturas
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoiceUC, deps.InvoiceQueryUC, deps.AuthorizeUC, deps.PDFUC)
	clients.Get("/:id/invoices", invoiceHandler.ListByClient)
	clients.Post("/:id/invoices", invoiceHandler.CreateFromEntries)

	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/authorize", invoiceHandler.Authorize)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
}
