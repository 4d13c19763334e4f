package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/agropos-api/internal/application/analytics"
	"github.com/jhoicas/agropos-api/internal/application/auth"
	appsales "github.com/jhoicas/agropos-api/internal/application/sales"
	appstock "github.com/jhoicas/agropos-api/internal/application/stock"
	"github.com/jhoicas/agropos-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/agropos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/agropos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/agropos-api/internal/interfaces/http"
	"github.com/jhoicas/agropos-api/pkg/config"
	"github.com/jhoicas/agropos-api/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios pool-backed (lecturas y CRUD fuera del ledger)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Casos de uso
	ledgerUC := appstock.NewLedgerUseCase(txRunner)
	kardexUC := appstock.NewKardexUseCase(movementRepo, productRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, txRunner, ledgerUC)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	saleUC := appsales.NewSaleUseCase(txRunner, ledgerUC, productRepo, saleRepo)
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.BusinessName)
	receiptUC := appsales.NewReceiptUseCase(saleRepo, productRepo, receiptGenerator)
	dashboardUC := appanalytics.NewDashboardUseCase(reportRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AgroPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CategoryUC:  categoryUC,
		LedgerUC:    ledgerUC,
		KardexUC:    kardexUC,
		SaleUC:      saleUC,
		ReceiptUC:   receiptUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
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
