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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/usecase"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/postgres"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/redislock"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/scheduler"
	httpRouter "github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/interfaces/http"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/config"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

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
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del barrido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout, cfg.DB.StatementTimeout)
	read := postgres.NewReadRepos(pool)
	opts := inventory.Options{
		TransferRequiresDistinctApprover: cfg.Ledger.TransferRequiresDistinctApprover,
		ExpiringSoonDays:                 cfg.Ledger.ExpiringSoonDays,
	}

	warehouseUC := usecase.NewWarehouseUseCase(read.Warehouses)
	lotUC := inventory.NewLotUseCase(txRunner, read, log)
	allocationUC := inventory.NewAllocationUseCase(txRunner, read, log)
	transferUC := inventory.NewTransferUseCase(txRunner, read, log, opts)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, read, log)
	expiryUC := inventory.NewExpiryUseCase(txRunner, read, log, opts)
	reportUC := inventory.NewReportUseCase(read)

	// Redis es opcional: sin él el barrido programado corre sin candado entre réplicas.
	var (
		redisClient *redis.Client
		locker      scheduler.Locker
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		locker = redislock.New(redisClient, cfg.App.Name)
	}

	var sweeps *scheduler.SweepScheduler
	if cfg.Ledger.SweepEnabled {
		sweeps, err = scheduler.New(scheduler.Config{
			Spec:     cfg.Ledger.SweepCron,
			Location: loc,
			LockTTL:  cfg.Ledger.SweepLockTTL,
		}, expiryUC, locker, log)
		if err != nil {
			log.Fatal().Err(err).Msg("barrido programado")
		}
		sweeps.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "La Gran Familia · Inventario",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:  warehouseUC,
		LotUC:        lotUC,
		AllocationUC: allocationUC,
		TransferUC:   transferUC,
		AdjustmentUC: adjustmentUC,
		ExpiryUC:     expiryUC,
		ReportUC:     reportUC,
		JWTSecret:    cfg.JWT.Secret,
		Location:     loc,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
		if sweeps != nil {
			sweeps.Stop()
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("cierre de Redis")
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}

	log.Info().Msg("aplicación detenida")
}
