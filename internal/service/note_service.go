package service

import (
	"errors"
	"fmt"
	"time"

	"notedown/internal/domain"
	"notedown/internal/repository"
	"notedown/pkg/title"

	"github.com/google/uuid"
)

// NoteService owns the note business rules: UUID assignment,
// timestamps, and the invariant that the stored title always equals
// the derived title of the stored content. Create and UpdateContent
// both derive through pkg/title; there is no second derivation path.
type NoteService struct {
	repo repository.NoteRepository
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// Create persists a new note and returns the stored record. The write
// and the read-back are separate statements; if another request
// deletes the row in between, the miss surfaces as ErrNoteNotFound
// rather than an empty note.
func (s *NoteService) Create(content string) (*domain.Note, error) {
	now := time.Now().UTC()

	note := &domain.Note{
		ID:        uuid.New().String(),
		Title:     title.Derive(content),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(note); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByID(note.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, fmt.Errorf("note %s missing on read-back after create: %w", note.ID, err)
		}
		return nil, err
	}

	return stored, nil
}

func (s *NoteService) List() ([]*domain.Note, error) {
	return s.repo.FindAll()
}

func (s *NoteService) GetByID(id string) (*domain.Note, error) {
	return s.repo.FindByID(id)
}

// UpdateContent rewrites a note's content, recomputes its title, and
// refreshes updated_at. Returns the stored record read back after the
// write.
func (s *NoteService) UpdateContent(id, content string) (*domain.Note, error) {
	if err := s.repo.UpdateContent(id, title.Derive(content), content, time.Now().UTC()); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, fmt.Errorf("note %s missing on read-back after update: %w", id, err)
		}
		return nil, err
	}

	return stored, nil
}

func (s *NoteService) Delete(id string) error {
	return s.repo.Delete(id)
}
