package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "gf:lock:"), mr
}

func TestAcquire_Exclusivo(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	first, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, mr.Exists("gf:lock:sweep"))

	second, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, second, "otro dueño no puede tomarlo mientras esté vigente")

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("gf:lock:sweep"))

	third, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, third)
}

func TestRelease_ExpiradoNoBorraAjeno(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	mine, err := l.Acquire(ctx, "sweep", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	other, err := l.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, other)

	assert.ErrorIs(t, mine.Release(ctx), ErrNotHeld)
	assert.True(t, mr.Exists("gf:lock:sweep"), "el candado del otro dueño sigue en pie")
}

func TestWithLock(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	calls := 0
	ran, err := l.WithLock(ctx, "sweep", time.Minute, func(context.Context) error {
		calls++
		// Mientras corre, nadie más lo obtiene.
		inner, err := l.WithLock(ctx, "sweep", time.Minute, func(context.Context) error {
			calls++
			return nil
		})
		assert.False(t, inner)
		return err
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, calls)

	boom := errors.New("falló")
	ran, err = l.WithLock(ctx, "sweep", time.Minute, func(context.Context) error { return boom })
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
}
