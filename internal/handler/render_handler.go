package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"notedown/internal/domain"
	"notedown/pkg/markdown"
	"notedown/pkg/response"
)

// RenderHandler exposes the markdown renderer so the preview pane and
// notectl share one conversion with the server.
type RenderHandler struct{}

func NewRenderHandler() *RenderHandler {
	return &RenderHandler{}
}

func (h *RenderHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req domain.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request payload")
		return
	}

	html, err := markdown.Render(req.Content)
	if err != nil {
		log.Printf("Error rendering markdown: %v", err)
		response.InternalError(w, "failed to render markdown")
		return
	}

	response.Success(w, domain.RenderResponse{HTML: html})
}
