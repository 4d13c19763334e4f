package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/agropos-api/internal/application/analytics"
	"github.com/jhoicas/agropos-api/internal/application/auth"
	appsales "github.com/jhoicas/agropos-api/internal/application/sales"
	appstock "github.com/jhoicas/agropos-api/internal/application/stock"
	"github.com/jhoicas/agropos-api/internal/application/usecase"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	LedgerUC    *appstock.LedgerUseCase
	KardexUC    *appstock.KardexUseCase
	SaleUC      *appsales.SaleUseCase
	ReceiptUC   *appsales.ReceiptUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Categories (protegido; escritura solo admin)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", RequireRole(entity.RoleAdmin), categoryHandler.Create)
	categories.Put("/:id", RequireRole(entity.RoleAdmin), categoryHandler.Update)
	categories.Delete("/:id", RequireRole(entity.RoleAdmin), categoryHandler.Delete)

	// Products (protegido; escritura admin y bodeguero, borrado solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.ListLowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Inventory movements (protegido; registrar solo admin y bodeguero)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.KardexUC)
	invGroup.Post("/movements", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListRecent)
	invGroup.Get("/products/:id/movements", inventoryHandler.GetKardex)

	// Sales (protegido; registrar y cancelar admin y vendedor)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReceiptUC)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.GetReceipt)
	salesGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleVendedor), saleHandler.Create)
	salesGroup.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleVendedor), saleHandler.Cancel)

	// Dashboard y reportes (protegido)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
	protected.Get("/reports/sales", dashboardHandler.GetSalesReport)
}
