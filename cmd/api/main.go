package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jdmestudio/contable-api/internal/application/billing"
	"github.com/jdmestudio/contable-api/internal/application/usecase"
	infraafip "github.com/jdmestudio/contable-api/internal/infrastructure/afip"
	infrapdf "github.com/jdmestudio/contable-api/internal/infrastructure/pdf"
	"github.com/jdmestudio/contable-api/internal/infrastructure/postgres"
	httpRouter "github.com/jdmestudio/contable-api/internal/interfaces/http"
	"github.com/jdmestudio/contable-api/pkg/config"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := cfg.AFIP.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración de AFIP")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	clientRepo := postgres.NewClientRepository(pool)
	entryRepo := postgres.NewAccountEntryRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	// Cadena AFIP: firma CMS → WSAA → cache de token → WSFE
	paths := infraafip.CredentialPaths{
		CertPath: cfg.AFIP.CertPath,
		KeyPath:  cfg.AFIP.KeyPath,
		Dir:      cfg.AFIP.CredentialsDir,
	}
	cmsSigner := infraafip.NewSigner(cfg.AFIP.Signer)
	wsaaClient := infraafip.NewWSAAClient(cfg.AFIP.WSAAURL, paths, cmsSigner, cfg.AFIP.Timeout, log)
	tokenCache := infraafip.NewTokenCache(paths, wsaaClient, log)
	wsfeClient := infraafip.NewWSFEClient(cfg.AFIP.WSFEURL, cfg.AFIP.CUIT, cfg.AFIP.Timeout, log)

	clientUC := usecase.NewClientUseCase(clientRepo)
	accountUC := usecase.NewAccountUseCase(entryRepo, clientRepo)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(invoiceRepo, clientRepo, entryRepo, log)
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(invoiceRepo)
	authorizeUC := billing.NewAuthorizeInvoiceUseCase(invoiceRepo, clientRepo, tokenCache, wsfeClient, cfg.AFIP, log)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name, cfg.AFIP.CUIT, cfg.AFIP.IVARate)
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, clientRepo, pdfGenerator)

	// Refresh inicial del token en segundo plano. Las fallas no frenan el
	// arranque; la autorización vuelve a intentar cuando haga falta.
	go func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), cfg.AFIP.Timeout)
		defer cancel()
		if authorizeUC.RefreshTokenIfNeeded(refreshCtx, 0) {
			log.Info().Msg("token AFIP renovado al arrancar")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClientUC:        clientUC,
		AccountUC:       accountUC,
		CreateInvoiceUC: createInvoiceUC,
		InvoiceQueryUC:  invoiceQueryUC,
		AuthorizeUC:     authorizeUC,
		PDFUC:           invoicePDFUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
