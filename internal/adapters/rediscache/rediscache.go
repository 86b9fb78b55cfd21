// internal/adapters/rediscache/rediscache.go
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"emailscope/internal/platform/cache"
	"emailscope/internal/platform/errors"
)

// Options configura la conexión a Redis.
type Options struct {
	Addr     string
	Password string
	DB       int

	// Prefix se antepone a todas las claves, p.ej. "emailscope:"
	Prefix string

	DialTimeout time.Duration
}

// Client es la conexión compartida por los stores de un proceso.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient crea el cliente. No abre conexiones hasta el primer uso; usar
// Ping para comprobar la disponibilidad al arrancar.
func NewClient(opts Options) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 2 * time.Second
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:         opts.Addr,
			Password:     opts.Password,
			DB:           opts.DB,
			DialTimeout:  opts.DialTimeout,
			ReadTimeout:  opts.DialTimeout,
			WriteTimeout: opts.DialTimeout,
		}),
		prefix: opts.Prefix,
	}
}

// Ping comprueba que el servidor responde.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrapf(errors.ErrConnectionFailed, "redis ping: %v", err)
	}
	return nil
}

// Close cierra el pool de conexiones.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Store implementa cache.Store[V] sobre Redis con valores en JSON. Permite
// que varias instancias compartan políticas de crawl y perfiles de correo.
type Store[V any] struct {
	client    *Client
	namespace string
}

var _ cache.Store[struct{}] = (*Store[struct{}])(nil)

// NewStore crea un store bajo prefix+namespace+":".
func NewStore[V any](client *Client, namespace string) *Store[V] {
	return &Store[V]{client: client, namespace: namespace}
}

func (s *Store[V]) key(k string) string {
	return s.client.prefix + s.namespace + ":" + k
}

// Load implementa cache.Store.
func (s *Store[V]) Load(ctx context.Context, key string) (V, bool, error) {
	var zero V

	data, err := s.client.rdb.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.Wrapf(errors.ErrConnectionFailed, "redis get %s: %v", key, err)
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, errors.Wrapf(errors.ErrInvalidResponse, "redis decode %s: %v", key, err)
	}
	return v, true, nil
}

// Save implementa cache.Store. ttl 0 = sin caducidad.
func (s *Store[V]) Save(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "redis encode %s: %v", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.rdb.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return errors.Wrapf(errors.ErrConnectionFailed, "redis set %s: %v", key, err)
	}
	return nil
}

// Delete borra una clave.
func (s *Store[V]) Delete(ctx context.Context, key string) error {
	return s.client.rdb.Del(ctx, s.key(key)).Err()
}
