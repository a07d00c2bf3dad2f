package domain

import (
	"errors"
	"time"
)

// ErrNoteNotFound is returned when a note id resolves to no record.
// A lookup miss is a distinct outcome, never an empty result: create
// and update read the record back after writing, and a concurrent
// delete between the write and the read-back lands here too.
var ErrNoteNotFound = errors.New("note not found")

// Note is a persisted markdown note. The title is always derived from
// the first line of the content and is recomputed on every write.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	// Pointer so a missing field is rejected while an empty string
	// (clearing the note) stays valid.
	Content *string `json:"content" validate:"required"`
}

type RenderRequest struct {
	Content string `json:"content"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}
