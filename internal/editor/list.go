package editor

import (
	"sync"
	"time"

	"notedown/internal/domain"
)

// Entry is the client-side projection of a note shown in the list.
type Entry struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// List keeps the visible note list consistent with confirmed server
// state: server order on load, newly created notes prepended, updates
// patched in place, deletions removed.
type List struct {
	mu      sync.Mutex
	entries []Entry
}

func NewList() *List {
	return &List{}
}

// Replace installs the server listing, replacing all entries.
func (l *List) Replace(notes []*domain.Note) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make([]Entry, 0, len(notes))
	for _, n := range notes {
		l.entries = append(l.entries, Entry{ID: n.ID, Title: n.Title, UpdatedAt: n.UpdatedAt})
	}
}

// Prepend inserts a freshly created note at the head of the list.
func (l *List) Prepend(note *domain.Note) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{ID: note.ID, Title: note.Title, UpdatedAt: note.UpdatedAt}
	l.entries = append([]Entry{entry}, l.entries...)
}

// Patch updates the display fields of the matching entry in place.
// The list is not re-sorted by recency; live reordering on update is
// a possible future behavior, not current behavior. Reports false
// when no entry matches, such as after a delete.
func (l *List) Patch(id, title string, updatedAt time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Title = title
			l.entries[i].UpdatedAt = updatedAt
			return true
		}
	}
	return false
}

// Remove deletes the matching entry, reporting whether one existed.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the current list in display order.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
