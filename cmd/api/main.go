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
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/application/order"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
	infrakafka "github.com/jhoicas/bakery-api/internal/infrastructure/kafka"
	"github.com/jhoicas/bakery-api/internal/infrastructure/memory"
	"github.com/jhoicas/bakery-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/bakery-api/internal/interfaces/http"
	"github.com/jhoicas/bakery-api/pkg/config"
	"github.com/jhoicas/bakery-api/pkg/logger"
	"github.com/jhoicas/bakery-api/pkg/metrics"
)

// stores agrupa los puertos de persistencia del driver elegido.
type stores struct {
	tx       catalog.TxRunner
	products repository.ProductRepository
	ledger   repository.InventoryLedgerRepository
	orders   repository.OrderRepository
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store.Driver == "memory" {
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &stores{
			tx:       memory.NewTxRunner(store),
			products: memory.NewProductRepository(store),
			ledger:   memory.NewInventoryLedgerRepository(store),
			orders:   memory.NewOrderRepository(store),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Migrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		tx:       postgres.NewTxRunner(pool),
		products: postgres.NewProductRepository(pool),
		ledger:   postgres.NewInventoryLedgerRepository(pool),
		orders:   postgres.NewOrderStore(pool),
		close:    pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas protegidas responderán 401")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	m := metrics.New("bakery")

	// Notificaciones: log siempre; Kafka si hay brokers configurados
	var sink notification.Sink = notification.NewLogSink(log.Zerolog())
	var kafkaSink *infrakafka.NotificationSink
	if cfg.Kafka.Enabled() {
		kafkaSink = infrakafka.NewNotificationSink(infrakafka.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		}, log.Zerolog())
		sink = notification.MultiSink{sink, kafkaSink}
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos de pedido en Kafka")
	}
	dispatcher := notification.NewDispatcher(sink, notification.DispatcherConfig{
		QueueSize:       cfg.Notify.QueueSize,
		Workers:         cfg.Notify.Workers,
		DeliveryTimeout: cfg.Notify.DeliveryTimeout,
	}, log.Zerolog(), m)

	catalogSvc := catalog.NewCatalog(st.tx, st.products, log.Zerolog(), m)
	ledgerSvc := ledger.NewLedger(st.ledger, st.products)
	fulfillment := order.NewFulfillmentService(catalogSvc, st.orders, dispatcher, log.Zerolog(), m)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Bakery API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:    fulfillment,
		Catalog:   catalogSvc,
		Ledger:    ledgerSvc,
		Metrics:   m,
		Log:       log.Component("http"),
		JWTSecret: cfg.JWT.Secret,
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
	// Vaciar la cola de notificaciones antes de cerrar el productor
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("cola de notificaciones no vaciada a tiempo")
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar productor Kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
