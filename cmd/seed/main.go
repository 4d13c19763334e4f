// seed puebla la base de datos con datos iniciales de desarrollo: un usuario
// admin, categorías típicas de agroveterinaria y productos de muestra con su
// stock inicial (registrado vía el ledger de movimientos).
//
// Uso: go run ./cmd/seed
// Idempotente a nivel de duplicados: los registros ya existentes se saltan.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/application/auth"
	"github.com/jhoicas/agropos-api/internal/application/dto"
	appstock "github.com/jhoicas/agropos-api/internal/application/stock"
	"github.com/jhoicas/agropos-api/internal/application/usecase"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/agropos-api/pkg/config"
)

type seedProduct struct {
	sku          string
	name         string
	category     string
	purchase     string
	sale         string
	initialStock string
	minStock     string
	unitMeasure  string
	soldByWeight bool
}

var seedCategories = []dto.CreateCategoryRequest{
	{Name: "Concentrados", Description: "Alimento concentrado para animales"},
	{Name: "Medicamentos", Description: "Medicamentos y vacunas veterinarias"},
	{Name: "Fertilizantes", Description: "Fertilizantes y abonos"},
	{Name: "Herramientas", Description: "Herramientas e insumos de campo"},
}

var seedProducts = []seedProduct{
	{"CON-001", "Concentrado perro adulto 25kg", "Concentrados", "85000", "110000", "20", "5", "bulto", false},
	{"CON-002", "Concentrado ganado lechero", "Concentrados", "2200", "3000", "150", "40", "kg", true},
	{"MED-001", "Ivermectina 1% 50ml", "Medicamentos", "12000", "18000", "30", "10", "frasco", false},
	{"MED-002", "Vacuna triple bovina", "Medicamentos", "8500", "13000", "25", "8", "dosis", false},
	{"FER-001", "Urea granulada 50kg", "Fertilizantes", "95000", "120000", "15", "4", "bulto", false},
	{"HER-001", "Machete 24 pulgadas", "Herramientas", "18000", "28000", "10", "3", "unidad", false},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := appstock.NewLedgerUseCase(txRunner)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, txRunner, ledgerUC)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Usuario admin
	admin, err := authUC.RegisterUser(dto.RegisterRequest{
		Email:    "admin@agropos.local",
		Password: "admin12345",
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	switch {
	case err == nil:
		fmt.Printf("usuario admin creado: %s\n", admin.Email)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		existing, ferr := userRepo.FindByEmail("admin@agropos.local")
		if ferr != nil || existing == nil {
			fmt.Fprintf(os.Stderr, "recuperar admin existente: %v\n", ferr)
			os.Exit(1)
		}
		admin = &dto.UserResponse{ID: existing.ID, Email: existing.Email}
		fmt.Println("usuario admin ya existe, se reutiliza")
	default:
		fmt.Fprintf(os.Stderr, "crear admin: %v\n", err)
		os.Exit(1)
	}

	// Categorías
	categoryIDs := make(map[string]string, len(seedCategories))
	for _, in := range seedCategories {
		cat, err := categoryUC.Create(ctx, in)
		if errors.Is(err, domain.ErrDuplicate) {
			fmt.Printf("categoría %q ya existe, se salta\n", in.Name)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "crear categoría %q: %v\n", in.Name, err)
			os.Exit(1)
		}
		categoryIDs[cat.Name] = cat.ID
		fmt.Printf("categoría creada: %s\n", cat.Name)
	}
	// Resolver IDs de categorías preexistentes
	if cats, err := categoryUC.List(ctx, 100, 0); err == nil {
		for _, c := range cats {
			if _, ok := categoryIDs[c.Name]; !ok {
				categoryIDs[c.Name] = c.ID
			}
		}
	}

	// Productos con stock inicial (entry de stock inicial vía ledger)
	for _, p := range seedProducts {
		catID, ok := categoryIDs[p.category]
		if !ok {
			fmt.Fprintf(os.Stderr, "categoría %q no resuelta para %s\n", p.category, p.sku)
			os.Exit(1)
		}
		req := dto.CreateProductRequest{
			SKU:           p.sku,
			Name:          p.name,
			CategoryID:    catID,
			PurchasePrice: decimal.RequireFromString(p.purchase),
			SalePrice:     decimal.RequireFromString(p.sale),
			InitialStock:  decimal.RequireFromString(p.initialStock),
			MinStock:      decimal.RequireFromString(p.minStock),
			UnitMeasure:   p.unitMeasure,
			SoldByWeight:  p.soldByWeight,
		}
		if p.soldByWeight {
			ppk := decimal.RequireFromString(p.sale)
			req.PricePerKilo = &ppk
		}
		_, err := productUC.Create(ctx, admin.ID, req)
		if errors.Is(err, domain.ErrDuplicate) {
			fmt.Printf("producto %s ya existe, se salta\n", p.sku)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "crear producto %s: %v\n", p.sku, err)
			os.Exit(1)
		}
		fmt.Printf("producto creado: %s (%s)\n", p.sku, p.name)
	}

	fmt.Println("seed completado")
}
