package logger

import (
	"go.uber.org/zap"
)

// New creates the service logger. Development builds get the console encoder,
// everything else logs JSON. A logger that fails to build degrades to a no-op.
func New(env string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if env == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("service", "pagila-reports"))
}
