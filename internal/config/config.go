// Package config loads process configuration from the environment and
// builds the shared logger.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdfquiz/pdfquiz/internal/llm"
)

// EnvFiles are loaded in order; variables already set are never overridden.
var EnvFiles = []string{".env.local", ".env"}

// Config is everything the commands need besides flags.
type Config struct {
	LLM llm.Config

	HTTPAddr     string
	CORSOrigins  []string
	MaxBodyBytes int64

	LogLevel  string
	LogFormat string

	// Strict turns on question contract validation.
	Strict bool

	// Extractor selects the PDF backend: "native" or "poppler".
	Extractor string

	ExtractTimeout  time.Duration
	GenerateTimeout time.Duration

	// ServerURL, when set, makes the terminal client call a running server
	// instead of the model directly.
	ServerURL string
}

// LoadEnvFiles reads EnvFiles that exist. Missing files are not an error.
func LoadEnvFiles() error {
	for _, f := range EnvFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from PDFQUIZ_* variables.
func FromEnv() Config {
	return Config{
		LLM:             llm.ConfigFromEnv(),
		HTTPAddr:        envOr("PDFQUIZ_HTTP_ADDR", ":8080"),
		CORSOrigins:     envList("PDFQUIZ_CORS_ORIGINS", []string{"http://localhost:3000"}),
		MaxBodyBytes:    envInt64("PDFQUIZ_MAX_BODY_BYTES", 20<<20),
		LogLevel:        envOr("PDFQUIZ_LOG_LEVEL", "info"),
		LogFormat:       envOr("PDFQUIZ_LOG_FORMAT", "text"),
		Strict:          envBool("PDFQUIZ_STRICT", true),
		Extractor:       envOr("PDFQUIZ_EXTRACTOR", "native"),
		ExtractTimeout:  envDuration("PDFQUIZ_EXTRACT_TIMEOUT", 0),
		GenerateTimeout: envDuration("PDFQUIZ_GENERATE_TIMEOUT", 0),
		ServerURL:       os.Getenv("PDFQUIZ_SERVER"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d >= 0 {
		return d
	}
	return def
}
