// Package quizgen turns extracted document text into a ten-question Korean
// quiz using a language model.
package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/llm"
)

// Purpose labels model calls made by this package in the diagnostic store.
const Purpose = "quiz-gen"

// Generator produces a question set from page texts. The session
// controller and the HTTP client both satisfy it.
type Generator interface {
	Generate(ctx context.Context, texts []string) (*Result, error)
}

// Service implements Generator on top of an llm.Provider. It holds no
// per-request state.
type Service struct {
	provider llm.Provider
	config   Config
	log      logrus.FieldLogger
}

// New creates a Service. A nil log uses the logrus standard logger.
func New(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{provider: provider, config: cfg, log: log}
}

// ModelID reports the configured model.
func (s *Service) ModelID() string {
	return s.provider.ModelID()
}

// Generate builds the prompt from texts, calls the model once and parses the
// question set. Every error is a *GenerationError.
func (s *Service) Generate(ctx context.Context, texts []string) (*Result, error) {
	if len(texts) == 0 {
		return nil, &GenerationError{Kind: ValidationError, Err: errors.New("texts is empty")}
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	document := joinDocument(texts)

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(document)},
		},
		JSONMode:    true,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, s.classify(err)
	}

	set, err := s.parse(resp.Content)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"model": resp.Model,
			"raw":   string(resp.Content),
		}).WithError(err).Error("model returned unusable question set")
		return nil, &GenerationError{Kind: InvalidModelOutput, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"model":         resp.Model,
		"questions":     len(set.Questions),
		"pages":         len(texts),
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	}).Info("quiz generated")

	return &Result{
		Set: *set,
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model: resp.Model,
	}, nil
}

func (s *Service) parse(content json.RawMessage) (*QuestionSet, error) {
	if len(content) == 0 {
		return nil, errors.New("empty model output")
	}
	if s.config.Strict {
		if err := llm.ValidateResponse(QuestionSetSchema, content); err != nil {
			return nil, err
		}
	}

	var set QuestionSet
	if err := json.Unmarshal(content, &set); err != nil {
		return nil, fmt.Errorf("parse question set: %w", err)
	}

	if s.config.Strict {
		for _, v := range s.config.Validators {
			if verr := v.Validate(&set); verr != nil {
				return nil, verr
			}
		}
	}
	return &set, nil
}

// classify maps provider errors. Content-level failures are logged with the
// raw output they carry.
func (s *Service) classify(err error) *GenerationError {
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		s.log.WithField("raw", string(invalid.Content)).WithError(err).Error("model returned invalid output")
		return &GenerationError{Kind: InvalidModelOutput, Err: err}
	}
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		s.log.WithField("raw", string(truncated.Content)).WithError(err).Error("model output truncated")
		return &GenerationError{Kind: InvalidModelOutput, Err: err}
	}
	s.log.WithError(err).Error("quiz generation failed")
	return &GenerationError{Kind: UpstreamFailure, Err: err}
}
