// internal/platform/logx/sentry.go
package logx

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry configura el cliente global de Sentry. Devuelve una función flush
// que debe llamarse antes de salir. Con dsn vacío no hace nada.
func InitSentry(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// sentryHook reenvía los Err() a Sentry cuando hay un cliente inicializado.
type sentryHook struct{}

func (sentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (sentryHook) Fire(e *logrus.Entry) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}
	err, ok := e.Data[logrus.ErrorKey].(error)
	if !ok {
		return nil
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range e.Data {
			if k == logrus.ErrorKey {
				continue
			}
			scope.SetExtra(k, v)
		}
		if c, ok := e.Data["component"].(string); ok {
			scope.SetTag("component", c)
		}
		sentry.CaptureException(err)
	})
	return nil
}
