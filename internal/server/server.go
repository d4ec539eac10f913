// Package server runs the HTTP front of the quiz generator.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/api"
	"github.com/pdfquiz/pdfquiz/internal/config"
)

// shutdownGrace bounds how long in-flight generations may finish on stop.
const shutdownGrace = 30 * time.Second

// Options configures the router.
type Options struct {
	Handler     *api.Handler
	CORSOrigins []string
	Log         logrus.FieldLogger
}

// NewRouter builds the full route tree with middleware.
func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", opts.Handler.Health)
	r.Mount("/api", api.Routes(opts.Handler))
	return r
}

// requestLogger attaches log to the request context and writes one entry
// per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := config.WithLogger(r.Context(), log)

			next.ServeHTTP(ww, r.WithContext(ctx))

			config.WithContext(ctx).WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).Round(time.Millisecond).String(),
			}).Info("request")
		})
	}
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
