// Package redislock candado distribuido sobre Redis para tareas que solo una réplica
// debe ejecutar a la vez (el barrido programado de vencimientos).
package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/config"
)

// ErrNotHeld el candado ya no pertenece a este dueño (expiró o lo tomó otro).
var ErrNotHeld = errors.New("redislock: candado no pertenece a este dueño")

// releaseScript borra la llave solo si el valor sigue siendo nuestro token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redislock: ping: %w", err)
	}
	return client, nil
}

// Locker toma y libera candados con SET NX PX.
type Locker struct {
	client *redis.Client
	prefix string
}

// New construye el locker. prefix se antepone a todas las llaves.
func New(client *redis.Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lock candado tomado; Release lo suelta.
type Lock struct {
	l     *Locker
	key   string
	token string
}

// Acquire intenta tomar key por ttl. Devuelve nil, nil si otro dueño lo tiene.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	full := l.prefix + key
	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redislock: acquire %s: %w", full, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lock{l: l, key: full, token: token}, nil
}

// Release suelta el candado si sigue siendo nuestro.
func (k *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, k.l.client, []string{k.key}, k.token).Int64()
	if err != nil {
		return fmt.Errorf("redislock: release %s: %w", k.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// WithLock ejecuta fn solo si logra tomar key. ran=false indica que otro dueño lo tenía.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (ran bool, err error) {
	lock, err := l.Acquire(ctx, key, ttl)
	if err != nil || lock == nil {
		return false, err
	}
	defer func() {
		// Un candado expirado durante fn no invalida el trabajo ya hecho.
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil && !errors.Is(rerr, ErrNotHeld) && err == nil {
			err = rerr
		}
	}()
	return true, fn(ctx)
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("redislock: token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
