// internal/platform/cache/loader.go
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produce el valor para una clave ausente. El ttl devuelto puede
// sobrescribir el ttl por defecto del Loader (0 = usar el por defecto).
type LoadFunc[V any] func(ctx context.Context) (V, time.Duration, error)

// Loader envuelve un Store con un populate-once por clave: llamadas
// concurrentes para la misma clave comparten una sola carga en vuelo.
//
// La carga compartida no depende del contexto de ningún caller: corre sobre
// un contexto desligado con su propio timeout. Un caller que se cancela deja
// de esperar, pero la carga sigue para los demás y su resultado se guarda.
type Loader[V any] struct {
	store   Store[V]
	ttl     time.Duration
	timeout time.Duration // 0 = sin límite propio
	group   singleflight.Group
}

// NewLoader crea un Loader sobre store con un ttl por defecto y un timeout
// para cada carga compartida.
func NewLoader[V any](store Store[V], ttl, timeout time.Duration) *Loader[V] {
	return &Loader[V]{store: store, ttl: ttl, timeout: timeout}
}

// Get devuelve el valor cacheado o espera a la carga en vuelo de la clave.
// Si ctx termina antes, devuelve ctx.Err() sin afectar a la carga.
// Los errores de lectura del store se tratan como miss; los de escritura se
// ignoran porque el valor ya se obtuvo.
func (l *Loader[V]) Get(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if v, ok, err := l.store.Load(ctx, key); err == nil && ok {
		return v, nil
	}

	ch := l.group.DoChan(key, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		if l.timeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, l.timeout)
			defer cancel()
		}

		// Otro caller pudo completar la carga mientras esperábamos.
		if v, ok, err := l.store.Load(flightCtx, key); err == nil && ok {
			return v, nil
		}

		v, ttl, err := load(flightCtx)
		if err != nil {
			return v, err
		}
		if ttl <= 0 {
			ttl = l.ttl
		}
		_ = l.store.Save(flightCtx, key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
