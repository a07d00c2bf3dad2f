package editor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"notedown/internal/domain"
)

// NoteAPI is the store contract the dispatcher issues calls against.
// internal/client implements it over the REST surface.
type NoteAPI interface {
	Create(ctx context.Context, content string) (*domain.Note, error)
	Get(ctx context.Context, id string) (*domain.Note, error)
	ListAll(ctx context.Context) ([]*domain.Note, error)
	UpdateContent(ctx context.Context, id, content string) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
}

// ConfirmFunc asks the user to confirm a destructive action. Deletes
// are only issued after it returns true.
type ConfirmFunc func(noteID string) bool

// NotifyFunc receives failures from asynchronous dispatches, which
// have no caller to return an error to.
type NotifyFunc func(err error)

// Dispatcher turns editor intents into store calls and reconciles the
// responses with the session and the note list. It enforces per-note
// write ordering (updates for one note are never pipelined) and
// discards stale responses by identity comparison, so a reply for a
// deselected or deleted note never mutates visible state.
type Dispatcher struct {
	api       NoteAPI
	session   *Session
	list      *List
	scheduler *Scheduler
	confirm   ConfirmFunc
	notify    NotifyFunc

	mu       sync.Mutex
	inflight map[string]bool
	queued   map[string]string
}

func NewDispatcher(api NoteAPI, confirm ConfirmFunc, notify NotifyFunc, debounce time.Duration) *Dispatcher {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	if notify == nil {
		notify = func(err error) { log.Printf("sync error: %v", err) }
	}

	d := &Dispatcher{
		api:      api,
		session:  NewSession(),
		list:     NewList(),
		confirm:  confirm,
		notify:   notify,
		inflight: make(map[string]bool),
		queued:   make(map[string]string),
	}
	d.scheduler = NewScheduler(debounce, d.dispatchUpdate)
	return d
}

// Refresh loads the full note list from the store.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	notes, err := d.api.ListAll(ctx)
	if err != nil {
		return err
	}
	d.list.Replace(notes)
	return nil
}

// CreateNote asks the store for a fresh empty note, prepends it to
// the list, and opens it in the editor. Unsaved edits to the
// previously open note are flushed first.
func (d *Dispatcher) CreateNote(ctx context.Context) (*domain.Note, error) {
	d.flushDirty()

	note, err := d.api.Create(ctx, "")
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.list.Prepend(note)
	d.session.Open(note.ID, note.Content)
	d.mu.Unlock()

	return note, nil
}

// SelectNote opens a note. Unsaved edits to the previous note are
// force-saved, bypassing the debounce timer. If another select is
// issued before this one's response arrives, the later selection
// wins: this response is discarded.
func (d *Dispatcher) SelectNote(ctx context.Context, id string) error {
	d.flushDirty()

	d.mu.Lock()
	d.scheduler.Cancel()
	token := d.session.BeginSelect()
	d.mu.Unlock()

	note, err := d.api.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			// The note vanished under us: drop it rather than
			// presenting empty content.
			d.mu.Lock()
			if token == d.session.selectGen {
				d.session.Clear()
			}
			d.list.Remove(id)
			d.mu.Unlock()
		}
		return err
	}

	d.mu.Lock()
	// ApplyLoad rejects the response when a later selection
	// superseded this one; the reply is discarded, not applied.
	d.session.ApplyLoad(token, note.ID, note.Content)
	d.mu.Unlock()

	return nil
}

// Edit records a keystroke's worth of new content and arms the
// debounce timer. Earlier edits inside the delay window never reach
// the store; only the content at the moment the timer fires is
// written.
func (d *Dispatcher) Edit(content string) error {
	d.mu.Lock()
	id, err := d.session.Edit(content)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.scheduler.Schedule(id, content, false)
	d.mu.Unlock()
	return nil
}

// ForceSave writes the current buffer immediately, cancelling any
// pending timer. A no-op when there is nothing unsaved.
func (d *Dispatcher) ForceSave() {
	d.flushDirty()
}

// DeleteNote removes a note after user confirmation. A declined
// confirmation issues no store call and changes nothing. On success
// the list entry is removed and, if the deleted note was open, the
// session is cleared and its pending save discarded in the same
// critical section, so no orphaned write can fire afterwards.
func (d *Dispatcher) DeleteNote(ctx context.Context, id string) error {
	if !d.confirm(id) {
		return nil
	}

	if err := d.api.Delete(ctx, id); err != nil {
		d.notify(err)
		return err
	}

	d.mu.Lock()
	d.list.Remove(id)
	if d.session.SelectedID() == id {
		d.scheduler.Cancel()
		d.session.Clear()
	}
	delete(d.queued, id)
	d.mu.Unlock()

	return nil
}

// Entries returns the current note list projection.
func (d *Dispatcher) Entries() []Entry {
	return d.list.Entries()
}

// Selected returns the open note's id, buffer, and session state.
func (d *Dispatcher) Selected() (string, string, State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.SelectedID(), d.session.Buffer(), d.session.State()
}

// flushDirty force-saves the buffer when local edits exist.
func (d *Dispatcher) flushDirty() {
	d.mu.Lock()
	if d.session.State() != StateDirty {
		d.mu.Unlock()
		return
	}
	id, content := d.session.SelectedID(), d.session.Buffer()
	d.mu.Unlock()

	// Outside the lock: a forced schedule dispatches synchronously.
	d.scheduler.Schedule(id, content, true)
}

// dispatchUpdate is the scheduler's dispatch target. Updates for one
// note are serialized: if one is already in flight, the new content
// is parked and written when the first completes, so an older write
// can never land after a newer one.
func (d *Dispatcher) dispatchUpdate(id, content string) {
	d.mu.Lock()
	if d.inflight[id] {
		d.queued[id] = content
		d.mu.Unlock()
		return
	}
	d.inflight[id] = true
	d.session.MarkSaving(id)
	d.mu.Unlock()

	note, err := d.api.UpdateContent(context.Background(), id, content)

	d.mu.Lock()
	delete(d.inflight, id)

	if err != nil {
		// No visible state changes on failure; the session stays
		// Dirty so a later edit or forced save retries.
		d.session.FailSave(id)
		next, has := d.queued[id]
		delete(d.queued, id)
		d.mu.Unlock()

		d.notify(err)
		if has {
			d.dispatchUpdate(id, next)
		}
		return
	}

	// The response must still match the intended target before any
	// UI state moves: the note may have been deleted meanwhile, in
	// which case Patch finds no entry and nothing changes.
	if note.ID == id {
		d.list.Patch(note.ID, note.Title, note.UpdatedAt)
		d.session.CompleteSave(id, content)
	}

	next, has := d.queued[id]
	delete(d.queued, id)
	d.mu.Unlock()

	if has {
		d.dispatchUpdate(id, next)
	}
}
