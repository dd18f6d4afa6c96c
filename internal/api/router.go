package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/chat"
	"github.com/starford/ansuz/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// Downloads referenced by source cards live at the root /files tree and
// are mounted by the caller.
func NewRouter(ctrl *chat.Controller, db index.FileIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(ctrl, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Chat.
	r.Post("/chat", h.Chat)
	r.Get("/history", h.History)

	// File index.
	r.Get("/files", h.Files)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
