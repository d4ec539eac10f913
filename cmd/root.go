package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pdfquiz",
	Short: "Turn lecture PDFs into Korean practice quizzes",
	Long:  "pdfquiz extracts the text of a PDF and asks an LLM for eight multiple-choice and two short-answer questions in Korean.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFiles()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuiz(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PDFQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides PDFQUIZ_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides PDFQUIZ_LOG_FORMAT)")
	addQuizFlags(rootCmd)

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PDFQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadConfig reads the environment and applies the persistent flag
// overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	return cfg
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, string, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, "", err
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	return s, dbPath, nil
}
