package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/api"
	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz generation HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PDFQUIZ_HTTP_ADDR)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin, repeatable (overrides PDFQUIZ_CORS_ORIGINS)")
	serveCmd.Flags().String("backend", "", "PDF backend for /api/extract: native or poppler")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.HTTPAddr = v
	}
	if v, _ := cmd.Flags().GetStringSlice("cors-origin"); len(v) > 0 {
		cfg.CORSOrigins = v
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Extractor = v
	}

	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, dbPath, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	gen, err := newGenerator(ctx, cfg, st.Events(), log)
	if err != nil {
		return err
	}
	x, err := newExtractor(cfg.Extractor, log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"model":     gen.ModelID(),
		"extractor": cfg.Extractor,
		"strict":    cfg.Strict,
		"db":        dbPath,
	}).Info("quiz service starting")

	h := api.NewHandler(gen, x, gen.ModelID(), cfg.MaxBodyBytes)
	router := server.NewRouter(server.Options{
		Handler:     h,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})
	return server.Serve(ctx, cfg.HTTPAddr, router, log)
}
