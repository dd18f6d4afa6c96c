package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// maxMessageLength bounds a single user message.
const maxMessageLength = 8000

// ChatRequest is the request body for submitting a user message.
type ChatRequest struct {
	Message string `json:"message" example:"Where can I find the quarterly report?"`
}

// Validate validates the chat request.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required, validation.Length(1, maxMessageLength)),
	)
}

// TurnResponse wraps the ordered conversation history.
type TurnResponse struct {
	Messages []models.Message `json:"messages"`
}

// FileItem is one inventory entry in a list response.
type FileItem struct {
	Path      string    `json:"path" example:"docs/report_final.pdf"`
	Name      string    `json:"name" example:"report_final.pdf"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileListResponse wraps paginated inventory listings.
type FileListResponse struct {
	Files []FileItem `json:"files"`
	Total int        `json:"total" example:"42"`
}

// SearchResponse wraps file search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
