package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/store"
)

// LoggingProvider records every call, with the request and the raw
// response, in the diagnostic store and in the operator log.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       logrus.FieldLogger
}

// WithLogging wraps p. repo may be nil, in which case only the operator
// log is written.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log logrus.FieldLogger) Provider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LoggingProvider{inner: p, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		SessionID:   SessionIDFrom(ctx),
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		// Keep the unusable output for `pdfquiz llm view`.
		var inv *ErrInvalidResponse
		if errors.As(err, &inv) {
			data.ResponseBody = string(inv.Content)
		}
	}

	entry := l.log.WithFields(logrus.Fields{
		"provider":   l.provider,
		"model":      data.Model,
		"purpose":    data.Purpose,
		"latency_ms": data.LatencyMs,
		"tokens_in":  data.InputTokens,
		"tokens_out": data.OutputTokens,
	})
	if err != nil {
		entry.WithError(err).Warn("llm request failed")
	} else {
		entry.Debug("llm request")
	}

	// Record the event but don't fail the request if recording fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.WithError(logErr).Warn("failed to record llm request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders the request the way `pdfquiz llm view` shows it.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.JSONMode {
		b.WriteString("[response_format: json_object]\n")
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	fmt.Fprintf(&b, "[max_tokens: %d, temperature: %.2f]\n", req.MaxTokens, req.Temperature)

	return b.String()
}
