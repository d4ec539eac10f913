package config

import (
	"context"
	"io"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level, format string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type loggerKey struct{}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// WithContext returns the logger carried by ctx, tagged with the chi
// request id when there is one.
func WithContext(ctx context.Context) logrus.FieldLogger {
	log, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger)
	if !ok {
		log = logrus.StandardLogger()
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log
}
