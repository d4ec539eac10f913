package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the API endpoints under /api.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/generate", h.Generate)
	r.Post("/extract", h.Extract)
	return r
}
