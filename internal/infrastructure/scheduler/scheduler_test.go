package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/redislock"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

type fakeSweeper struct {
	mu     sync.Mutex
	calls  []time.Time
	actors []string
	err    error
}

func (f *fakeSweeper) Sweep(_ context.Context, actor string, asOf time.Time) (*dto.SweepResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, asOf)
	f.actors = append(f.actors, actor)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SweepResponse{AsOf: asOf.Format(dto.DateLayout)}, nil
}

func TestNew_ExpresionInvalida(t *testing.T) {
	_, err := New(Config{Spec: "cada noche"}, &fakeSweeper{}, nil, logger.Nop())
	assert.Error(t, err)
}

// A las 03:00 UTC del 16, en UTC-6 todavía es 15.
func TestRunOnce_FechaEnZonaConfigurada(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	sw := &fakeSweeper{}
	s, err := New(Config{Spec: "15 0 * * *", Location: loc}, sw, nil, logger.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC) }

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", res.AsOf)
	require.Len(t, sw.calls, 1)
	assert.Equal(t, inventory.SystemActor, sw.actors[0])
}

func TestRunOnce_PropagaError(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("db caída")}
	s, err := New(Config{Spec: "@daily"}, sw, nil, logger.Nop())
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	assert.EqualError(t, err, "db caída")
}

func TestRunOnce_ConCandadoSoloUnaReplica(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := redislock.New(client, "gf:lock:")

	sw := &fakeSweeper{}
	s, err := New(Config{Spec: "15 0 * * *", LockTTL: time.Minute}, sw, locker, logger.Nop())
	require.NoError(t, err)

	// Otra réplica tiene el candado.
	held, err := locker.Acquire(context.Background(), sweepLockKey, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, held)

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, sw.calls)

	require.NoError(t, held.Release(context.Background()))
	res, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, sw.calls, 1)
	assert.False(t, mr.Exists("gf:lock:"+sweepLockKey), "el candado se libera al terminar")
}
