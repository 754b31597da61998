// sweep ejecuta una sola vez el barrido de vencimientos, para programadores externos
// (cron del sistema, Kubernetes CronJob) cuando el barrido interno de la API está apagado.
//
// Uso: go run ./cmd/sweep [--as-of 2026-10-16] [--dry-run]
// Sin --as-of usa la fecha de hoy en LEDGER_SWEEP_TIMEZONE.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/postgres"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/redislock"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/scheduler"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/config"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

func main() {
	asOfFlag := pflag.String("as-of", "", "fecha de corte YYYY-MM-DD (vacío = hoy)")
	dryRun := pflag.Bool("dry-run", false, "solo lista los lotes que se marcarían")
	timeout := pflag.Duration("timeout", 5*time.Minute, "límite de la ejecución")
	pflag.Parse()

	p := message.NewPrinter(language.LatinAmericanSpanish)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	loc, err := cfg.Ledger.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Zona horaria: %v\n", err)
		os.Exit(1)
	}
	now := time.Now().In(loc)
	asOf := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if *asOfFlag != "" {
		if asOf, err = dto.ParseDate(*asOfFlag); err != nil {
			fmt.Fprintf(os.Stderr, "--as-of: %v\n", err)
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	read := postgres.NewReadRepos(pool)
	opts := inventory.Options{
		TransferRequiresDistinctApprover: cfg.Ledger.TransferRequiresDistinctApprover,
		ExpiringSoonDays:                 cfg.Ledger.ExpiringSoonDays,
	}
	expiryUC := inventory.NewExpiryUseCase(postgres.NewTxRunner(pool, cfg.DB.LockTimeout, cfg.DB.StatementTimeout), read, log, opts)

	if *dryRun {
		lots, err := expiryUC.Pending(ctx, asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Simulación: %v\n", err)
			os.Exit(1)
		}
		for _, l := range lots {
			p.Printf("  %s  vence %s  existencia %s\n", l.ID, l.ExpiryDate.Format(dto.DateLayout), l.RemainingQuantity.String())
		}
		p.Printf("Corte %s: %d lotes se marcarían como vencidos (simulación)\n", asOf.Format(dto.DateLayout), len(lots))
		return
	}

	var locker scheduler.Locker
	if cfg.Redis.Enabled() {
		client, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Conexión a Redis: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		locker = redislock.New(client, cfg.App.Name)
	}

	runner, err := scheduler.New(scheduler.Config{
		Spec:     cfg.Ledger.SweepCron,
		Location: loc,
		LockTTL:  cfg.Ledger.SweepLockTTL,
		Timeout:  *timeout,
	}, expiryUC, locker, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Barrido: %v\n", err)
		os.Exit(1)
	}
	res, err := runner.RunAt(ctx, asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Barrido: %v\n", err)
		os.Exit(1)
	}
	if res == nil {
		p.Printf("Corte %s: otra instancia está ejecutando el barrido\n", asOf.Format(dto.DateLayout))
		return
	}
	p.Printf("Corte %s: %d lotes marcados como vencidos\n", res.AsOf, res.Flagged)
	for _, id := range res.LotIDs {
		p.Printf("  %s\n", id)
	}
}
