package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/ansuz/internal/chat"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	ctrl *chat.Controller
	db   index.FileIndex
}

// NewHandler creates a new Handler.
func NewHandler(ctrl *chat.Controller, db index.FileIndex) *Handler {
	return &Handler{ctrl: ctrl, db: db}
}

// Chat handles POST /api/chat: records the user message, streams the
// agent's reply through the SSE sink, and responds with the final history
// once the turn (including link rewriting) has completed. Agent failures
// are reflected in the assistant message content, not in the HTTP status.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	history := h.ctrl.Send(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, TurnResponse{Messages: nonNilMessages(history)})
}

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TurnResponse{Messages: nonNilMessages(h.ctrl.History())})
}

// Files handles GET /api/files. With a q parameter it searches the file
// index; without one it returns a paginated inventory listing.
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if query := q.Get("q"); query != "" {
		limit, _ := strconv.Atoi(q.Get("limit"))
		results, err := h.db.Search(query, limit)
		if err != nil {
			slog.Error("file search failed", slog.String("query", query), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		if results == nil {
			results = []index.SearchResult{}
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: results})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	rows, total, err := h.db.ListFiles(limit, offset)
	if err != nil {
		slog.Error("file listing failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	files := make([]FileItem, len(rows))
	for i, f := range rows {
		files[i] = FileItem{Path: f.Path, Name: f.Name, Checksum: f.Checksum, UpdatedAt: f.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files, Total: total})
}

func nonNilMessages(ms []models.Message) []models.Message {
	if ms == nil {
		return []models.Message{}
	}
	return ms
}
