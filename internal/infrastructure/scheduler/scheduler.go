package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// sweepLockKey llave del candado compartido entre réplicas.
const sweepLockKey = "expiry-sweep"

// Sweeper ejecuta el barrido de vencimientos (inventory.ExpiryUseCase).
type Sweeper interface {
	Sweep(ctx context.Context, actor string, asOf time.Time) (*dto.SweepResponse, error)
}

// Locker candado distribuido opcional (redislock.Locker).
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error)
}

// Config opciones del barrido programado.
type Config struct {
	Spec     string         // expresión cron de 5 campos, ej. "15 0 * * *"
	Location *time.Location // zona horaria para la expresión y para decidir "hoy"
	LockTTL  time.Duration
	Timeout  time.Duration // límite por ejecución
}

// SweepScheduler corre el barrido de vencimientos según una expresión cron.
type SweepScheduler struct {
	cron    *cron.Cron
	cfg     Config
	sweeper Sweeper
	locker  Locker
	log     *logger.Logger
	now     func() time.Time
}

// New valida la expresión y registra el trabajo. locker puede ser nil (una sola réplica).
func New(cfg Config, sweeper Sweeper, locker Locker, log *logger.Logger) (*SweepScheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	s := &SweepScheduler{
		cron:    cron.New(cron.WithLocation(cfg.Location)),
		cfg:     cfg,
		sweeper: sweeper,
		locker:  locker,
		log:     log.Component("scheduler"),
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(cfg.Spec, s.run); err != nil {
		return nil, fmt.Errorf("expresión cron inválida %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start inicia el scheduler en segundo plano.
func (s *SweepScheduler) Start() {
	s.log.Info().Str("spec", s.cfg.Spec).Str("tz", s.cfg.Location.String()).Msg("barrido programado iniciado")
	s.cron.Start()
}

// Stop detiene el scheduler y espera a que termine una ejecución en curso.
func (s *SweepScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("barrido programado detenido")
}

func (s *SweepScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("barrido programado falló")
	}
}

// RunOnce ejecuta un barrido con la fecha de hoy en la zona configurada. Con locker,
// si otra réplica tiene el candado no hace nada y devuelve nil, nil.
func (s *SweepScheduler) RunOnce(ctx context.Context) (*dto.SweepResponse, error) {
	today := s.now().In(s.cfg.Location)
	return s.RunAt(ctx, time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
}

// RunAt igual que RunOnce con una fecha de corte explícita (cmd/sweep -as-of).
func (s *SweepScheduler) RunAt(ctx context.Context, asOf time.Time) (*dto.SweepResponse, error) {
	var res *dto.SweepResponse
	sweep := func(ctx context.Context) error {
		var err error
		res, err = s.sweeper.Sweep(ctx, inventory.SystemActor, asOf)
		return err
	}
	if s.locker == nil {
		return res, sweep(ctx)
	}
	ran, err := s.locker.WithLock(ctx, sweepLockKey, s.cfg.LockTTL, sweep)
	if err != nil {
		return nil, err
	}
	if !ran {
		s.log.Debug().Str("as_of", asOf.Format(dto.DateLayout)).Msg("barrido en curso en otra réplica")
	}
	return res, nil
}
