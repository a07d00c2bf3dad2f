package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"notedown/internal/domain"
	"notedown/internal/service"
	"notedown/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request payload")
		return
	}

	note, err := h.service.Create(req.Content)
	if err != nil {
		log.Printf("Error creating note: %v", err)
		response.InternalError(w, "failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List()
	if err != nil {
		log.Printf("Error listing notes: %v", err)
		response.InternalError(w, "failed to list notes")
		return
	}

	if notes == nil {
		notes = []*domain.Note{}
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	note, err := h.service.GetByID(noteID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			response.NotFound(w, "note not found")
			return
		}
		log.Printf("Error fetching note %s: %v", noteID, err)
		response.InternalError(w, "failed to fetch note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, "content is required")
		return
	}

	note, err := h.service.UpdateContent(noteID, *req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			response.NotFound(w, "note not found")
			return
		}
		log.Printf("Error updating note %s: %v", noteID, err)
		response.InternalError(w, "failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	if err := h.service.Delete(noteID); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			response.NotFound(w, "note not found")
			return
		}
		log.Printf("Error deleting note %s: %v", noteID, err)
		response.InternalError(w, "failed to delete note")
		return
	}

	response.NoContent(w)
}
