package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/api"
	"github.com/pdfquiz/pdfquiz/internal/app"
	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

// healthTimeout bounds the reachability check against --server.
const healthTimeout = 5 * time.Second

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz on a PDF in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuiz(cmd)
	},
}

func init() {
	addQuizFlags(quizCmd)
}

func addQuizFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "PDF to pre-fill in the file prompt")
	cmd.Flags().String("server", "", "Use a running pdfquiz server instead of calling the model directly (overrides PDFQUIZ_SERVER)")
	cmd.Flags().Bool("resume", false, "Resume the last saved quiz")
	cmd.Flags().String("backend", "", "PDF backend: native or poppler")
}

// runQuiz opens the store, builds the controller, and launches the TUI.
func runQuiz(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Extractor = v
	}
	initialPath, _ := cmd.Flags().GetString("file")
	resume, _ := cmd.Flags().GetBool("resume")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, dbPath, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// The alt screen owns stdout and stderr while the program runs.
	logPath := filepath.Join(filepath.Dir(dbPath), "pdfquiz.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, logFile)

	x, gen, err := quizBackends(ctx, cfg, st.Events(), log)
	if err != nil {
		return err
	}

	notifier := app.NewPhaseNotifier()
	ctrl := session.New(x, gen, session.Config{
		ExtractTimeout:  cfg.ExtractTimeout,
		GenerateTimeout: cfg.GenerateTimeout,
		Recorder:        st.Events(),
		OnPhase:         notifier.Notify,
		Log:             log,
	})

	snaps := st.Snapshots()
	if resume {
		ok, err := app.RestoreLatest(ctx, snaps, ctrl)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "No saved quiz to resume.")
		}
	}

	return app.Run(app.Options{
		Controller:  ctrl,
		Notifier:    notifier,
		Snapshots:   snaps,
		InitialPath: initialPath,
		Log:         log,
	})
}

// quizBackends picks in-process extraction and generation, or the remote
// service when a server URL is configured.
func quizBackends(ctx context.Context, cfg config.Config, repo store.EventRepo, log logrus.FieldLogger) (extract.Extractor, quizgen.Generator, error) {
	if cfg.ServerURL != "" {
		client := api.NewClient(cfg.ServerURL, nil)
		hctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		health, err := client.Health(hctx)
		if err != nil {
			return nil, nil, fmt.Errorf("server %s unreachable: %w", cfg.ServerURL, err)
		}
		log.WithFields(logrus.Fields{"server": cfg.ServerURL, "model": health.Model}).Info("using remote quiz service")
		return client, client, nil
	}

	x, err := newExtractor(cfg.Extractor, log)
	if err != nil {
		return nil, nil, err
	}
	gen, err := newGenerator(ctx, cfg, repo, log)
	if err != nil {
		return nil, nil, err
	}
	return x, gen, nil
}
