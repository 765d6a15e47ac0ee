// seed carga un catálogo inicial de panadería pasando por el catálogo, así cada producto
// nace con su asiento "initial" en el libro de inventario. Los SKU existentes se omiten.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL / DB_*). Requiere STORE_DRIVER=postgres.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bakery-api/pkg/config"
	"github.com/jhoicas/bakery-api/pkg/logger"
)

const seedActor = "seed"

var starterCatalog = []catalog.RegisterInput{
	{SKU: "PAN-BAGUETTE", Name: "Baguette", Category: "pan", Price: decimal.RequireFromString("1.25"), InitialStock: 40, LowStockThreshold: 10},
	{SKU: "PAN-INTEGRAL", Name: "Pan integral", Category: "pan", Price: decimal.RequireFromString("2.10"), InitialStock: 25, LowStockThreshold: 8},
	{SKU: "PAN-CENTENO", Name: "Pan de centeno", Category: "pan", Price: decimal.RequireFromString("2.60"), InitialStock: 12, LowStockThreshold: 5},
	{SKU: "BOL-CROISSANT", Name: "Croissant", Category: "bollería", Price: decimal.RequireFromString("1.10"), InitialStock: 30, LowStockThreshold: 5},
	{SKU: "BOL-NAPOLITANA", Name: "Napolitana de chocolate", Category: "bollería", Price: decimal.RequireFromString("1.40"), InitialStock: 24, LowStockThreshold: 6},
	{SKU: "BOL-ENSAIMADA", Name: "Ensaimada", Category: "bollería", Price: decimal.RequireFromString("1.80"), InitialStock: 10, LowStockThreshold: 4},
	{SKU: "TAR-QUESO", Name: "Tarta de queso", Category: "pastelería", Price: decimal.RequireFromString("18.00"), InitialStock: 4, LowStockThreshold: 2},
	{SKU: "TAR-SANTIAGO", Name: "Tarta de Santiago", Category: "pastelería", Price: decimal.RequireFromString("16.50"), InitialStock: 3, LowStockThreshold: 1},
	{SKU: "GAL-MANTEQUILLA", Name: "Galletas de mantequilla (250 g)", Category: "galletas", Price: decimal.RequireFromString("3.20"), InitialStock: 15, LowStockThreshold: 5},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Store.Driver != "postgres" {
		log.Error().Str("store", cfg.Store.Driver).Msg("el seed solo tiene sentido con STORE_DRIVER=postgres")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Component("store")); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}

	cat := catalog.NewCatalog(postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), log.Zerolog(), nil)

	created, skipped := 0, 0
	for _, in := range starterCatalog {
		in.ActorID = seedActor
		p, err := cat.Register(ctx, in)
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", in.SKU).Msg("registrar producto")
		}
		created++
		log.Info().Str("sku", p.SKU).Str("id", p.ID).Int("stock", p.Stock).Str("status", string(p.Status)).Msg("producto registrado")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("seed completado")
}
