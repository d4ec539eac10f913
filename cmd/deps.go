package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/llm"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

// newGenerator wires the configured model provider into a quiz generator.
// Model calls are recorded in repo.
func newGenerator(ctx context.Context, cfg config.Config, repo store.EventRepo, log logrus.FieldLogger) (*quizgen.Service, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM, repo, log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	qcfg := quizgen.DefaultConfig()
	qcfg.Strict = cfg.Strict
	return quizgen.New(provider, qcfg, log), nil
}

// newExtractor returns the named PDF backend with log attached where the
// backend takes one.
func newExtractor(name string, log logrus.FieldLogger) (extract.Extractor, error) {
	x, err := extract.New(name)
	if err != nil {
		return nil, err
	}
	if n, ok := x.(*extract.Native); ok {
		n.Log = log
	}
	return x, nil
}
