// Package api serves the quiz generation HTTP endpoints and provides a
// client for them.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 20 << 20

// Handler serves /api/generate, /api/extract and /healthz.
type Handler struct {
	generator quizgen.Generator
	extractor extract.Extractor
	model     string
	maxBody   int64
}

// NewHandler wires the endpoints. extractor may be nil, in which case
// /api/extract answers 503.
func NewHandler(gen quizgen.Generator, extractor extract.Extractor, model string, maxBody int64) *Handler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{generator: gen, extractor: extractor, model: model, maxBody: maxBody}
}

// Generate handles POST /api/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req GenerateRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, MsgTooLarge)
			return
		}
		log.WithError(err).Warn("malformed generate request")
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, quizgen.MsgMissingTexts)
		return
	}

	res, err := h.generator.Generate(r.Context(), req.Texts)
	if err != nil {
		var gerr *quizgen.GenerationError
		if errors.As(err, &gerr) {
			writeError(w, gerr.HTTPStatus(), gerr.UserMessage())
		} else {
			writeError(w, http.StatusInternalServerError, quizgen.MsgUpstream)
		}
		log.WithError(err).Error("generate failed")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{Result: res.Set, Usage: res.Usage})
}

// Extract handles POST /api/extract with a multipart "file" field.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	if h.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, extract.MsgEnvironment)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, MsgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, MsgMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, MsgMissingFile)
		return
	}
	if !extract.IsPDF(data) {
		writeError(w, http.StatusBadRequest, MsgNotPDF)
		return
	}

	pages, err := h.extractor.Extract(r.Context(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.WithError(err).Error("extract failed")
		var xerr *extract.ExtractionError
		switch {
		case errors.Is(err, extract.ErrEnvironment):
			writeError(w, http.StatusServiceUnavailable, extract.UserMessage(err))
		case errors.As(err, &xerr):
			writeError(w, http.StatusUnprocessableEntity, extract.UserMessage(err))
		default:
			writeError(w, http.StatusInternalServerError, extract.UserMessage(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{Pages: pages})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Model: h.model})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
