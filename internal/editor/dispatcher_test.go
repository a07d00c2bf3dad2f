package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"notedown/internal/domain"
	"notedown/pkg/title"
)

type mockAPI struct {
	mu      sync.Mutex
	notes   map[string]*domain.Note
	order   []string
	seq     int
	updates [][2]string
	deletes []string

	failUpdate bool
	getHook    func(id string)
	updateHook func(id, content string)
}

func newMockAPI() *mockAPI {
	return &mockAPI{notes: make(map[string]*domain.Note)}
}

func (m *mockAPI) seed(content string) *domain.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now().UTC()
	note := &domain.Note{
		ID:        fmt.Sprintf("note-%d", m.seq),
		Title:     title.Derive(content),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.notes[note.ID] = note
	m.order = append(m.order, note.ID)
	return note
}

func (m *mockAPI) Create(ctx context.Context, content string) (*domain.Note, error) {
	note := m.seed(content)
	copied := *note
	return &copied, nil
}

func (m *mockAPI) Get(ctx context.Context, id string) (*domain.Note, error) {
	if m.getHook != nil {
		m.getHook(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, exists := m.notes[id]; exists {
		copied := *n
		return &copied, nil
	}
	return nil, domain.ErrNoteNotFound
}

func (m *mockAPI) ListAll(ctx context.Context) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var notes []*domain.Note
	for _, id := range m.order {
		if n, exists := m.notes[id]; exists {
			copied := *n
			notes = append(notes, &copied)
		}
	}
	return notes, nil
}

func (m *mockAPI) UpdateContent(ctx context.Context, id, content string) (*domain.Note, error) {
	if m.updateHook != nil {
		m.updateHook(id, content)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate {
		return nil, errors.New("storage unavailable")
	}
	n, exists := m.notes[id]
	if !exists {
		return nil, domain.ErrNoteNotFound
	}
	n.Title = title.Derive(content)
	n.Content = content
	n.UpdatedAt = time.Now().UTC()
	m.updates = append(m.updates, [2]string{id, content})
	copied := *n
	return &copied, nil
}

func (m *mockAPI) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notes[id]; !exists {
		return domain.ErrNoteNotFound
	}
	delete(m.notes, id)
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockAPI) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

func (m *mockAPI) lastUpdate() [2]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.updates) == 0 {
		return [2]string{}
	}
	return m.updates[len(m.updates)-1]
}

func confirmAlways(string) bool { return true }
func confirmNever(string) bool  { return false }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDispatcher_CreatePrependsAndOpens(t *testing.T) {
	api := newMockAPI()
	existing := api.seed("# Existing\nbody")
	d := NewDispatcher(api, confirmAlways, nil, time.Hour)

	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	note, err := d.CreateNote(context.Background())
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	if note.Title != "" || note.Content != "" {
		t.Errorf("new note = %q/%q, want empty", note.Title, note.Content)
	}

	entries := d.Entries()
	if len(entries) != 2 || entries[0].ID != note.ID || entries[1].ID != existing.ID {
		t.Errorf("entries after create = %+v", entries)
	}

	id, buffer, state := d.Selected()
	if id != note.ID || buffer != "" || state != StateLoaded {
		t.Errorf("selection after create = %s/%q/%v", id, buffer, state)
	}
}

func TestDispatcher_DebouncedEditsCoalesce(t *testing.T) {
	api := newMockAPI()
	note := api.seed("")
	d := NewDispatcher(api, confirmAlways, nil, 100*time.Millisecond)
	d.Refresh(context.Background())

	if err := d.SelectNote(context.Background(), note.ID); err != nil {
		t.Fatalf("SelectNote() error = %v", err)
	}

	d.Edit("# T")
	d.Edit("# T\nb")
	d.Edit("# T\nbody")

	waitFor(t, "debounced update", func() bool { return api.updateCount() == 1 })

	if got := api.lastUpdate(); got[0] != note.ID || got[1] != "# T\nbody" {
		t.Errorf("update = %v, want last edit for %s", got, note.ID)
	}

	waitFor(t, "session back to loaded", func() bool {
		_, _, state := d.Selected()
		return state == StateLoaded
	})

	// Exactly one write for the whole burst.
	time.Sleep(250 * time.Millisecond)
	if got := api.updateCount(); got != 1 {
		t.Errorf("update count = %d, want 1", got)
	}

	entries := d.Entries()
	if entries[0].Title != "T" {
		t.Errorf("list title = %q, want %q", entries[0].Title, "T")
	}
}

func TestDispatcher_ForceSaveProducesSingleDispatch(t *testing.T) {
	api := newMockAPI()
	note := api.seed("")
	d := NewDispatcher(api, confirmAlways, nil, 200*time.Millisecond)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), note.ID)

	d.Edit("typed")
	d.ForceSave()

	if got := api.updateCount(); got != 1 {
		t.Fatalf("update count after force = %d, want 1", got)
	}

	time.Sleep(500 * time.Millisecond)
	if got := api.updateCount(); got != 1 {
		t.Errorf("update count after debounce window = %d, want 1", got)
	}

	_, _, state := d.Selected()
	if state != StateLoaded {
		t.Errorf("state = %v, want %v", state, StateLoaded)
	}
}

func TestDispatcher_EditWithoutSelection(t *testing.T) {
	d := NewDispatcher(newMockAPI(), confirmAlways, nil, time.Hour)

	if err := d.Edit("text"); !errors.Is(err, ErrNoNoteSelected) {
		t.Errorf("Edit() error = %v, want ErrNoNoteSelected", err)
	}
}

func TestDispatcher_LastSelectWins(t *testing.T) {
	api := newMockAPI()
	slow := api.seed("# Slow")
	fast := api.seed("# Fast")

	release := make(chan struct{})
	api.getHook = func(id string) {
		if id == slow.ID {
			<-release
		}
	}

	d := NewDispatcher(api, confirmAlways, nil, time.Hour)
	d.Refresh(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.SelectNote(context.Background(), slow.ID) }()

	// The second select supersedes the first while it is in flight.
	time.Sleep(20 * time.Millisecond)
	if err := d.SelectNote(context.Background(), fast.ID); err != nil {
		t.Fatalf("SelectNote(fast) error = %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SelectNote(slow) error = %v", err)
	}

	id, buffer, state := d.Selected()
	if id != fast.ID || buffer != "# Fast" || state != StateLoaded {
		t.Errorf("stale select response applied: %s/%q/%v", id, buffer, state)
	}
}

func TestDispatcher_DeleteSelectedClearsSessionAndList(t *testing.T) {
	api := newMockAPI()
	note := api.seed("# Bye")
	d := NewDispatcher(api, confirmAlways, nil, 200*time.Millisecond)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), note.ID)

	// An armed timer for the deleted note must never fire.
	d.Edit("# Bye\nedited")

	if err := d.DeleteNote(context.Background(), note.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}

	id, _, state := d.Selected()
	if state != StateEmpty || id != "" {
		t.Errorf("session after delete = %s/%v, want empty", id, state)
	}
	if len(d.Entries()) != 0 {
		t.Errorf("entries after delete = %+v, want none", d.Entries())
	}

	time.Sleep(500 * time.Millisecond)
	if got := api.updateCount(); got != 0 {
		t.Errorf("orphaned update dispatched after delete: count = %d", got)
	}
}

func TestDispatcher_DeleteUnselectedLeavesSession(t *testing.T) {
	api := newMockAPI()
	keep := api.seed("# Keep")
	drop := api.seed("# Drop")
	d := NewDispatcher(api, confirmAlways, nil, time.Hour)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), keep.ID)

	if err := d.DeleteNote(context.Background(), drop.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}

	id, buffer, state := d.Selected()
	if id != keep.ID || buffer != "# Keep" || state != StateLoaded {
		t.Errorf("session disturbed by unrelated delete: %s/%q/%v", id, buffer, state)
	}
	if len(d.Entries()) != 1 || d.Entries()[0].ID != keep.ID {
		t.Errorf("entries = %+v, want only kept note", d.Entries())
	}
}

func TestDispatcher_DeleteRequiresConfirmation(t *testing.T) {
	api := newMockAPI()
	note := api.seed("# Safe")
	d := NewDispatcher(api, confirmNever, nil, time.Hour)
	d.Refresh(context.Background())

	if err := d.DeleteNote(context.Background(), note.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}

	if len(api.deletes) != 0 {
		t.Error("store delete issued despite declined confirmation")
	}
	if len(d.Entries()) != 1 {
		t.Errorf("entries = %+v, want untouched list", d.Entries())
	}
}

func TestDispatcher_FailedSaveStaysDirtyAndRetries(t *testing.T) {
	api := newMockAPI()
	note := api.seed("")

	var notified []error
	var notifyMu sync.Mutex
	notify := func(err error) {
		notifyMu.Lock()
		notified = append(notified, err)
		notifyMu.Unlock()
	}

	d := NewDispatcher(api, confirmAlways, notify, time.Hour)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), note.ID)

	api.failUpdate = true
	d.Edit("unlucky")
	d.ForceSave()

	_, buffer, state := d.Selected()
	if state != StateDirty || buffer != "unlucky" {
		t.Fatalf("after failed save: state=%v buffer=%q, want dirty with buffer intact", state, buffer)
	}

	notifyMu.Lock()
	if len(notified) != 1 {
		t.Errorf("notify calls = %d, want 1", len(notified))
	}
	notifyMu.Unlock()

	if d.Entries()[0].Title != "" {
		t.Error("failed save mutated list entry")
	}

	// A later forced save retries the buffered content.
	api.mu.Lock()
	api.failUpdate = false
	api.mu.Unlock()
	d.ForceSave()

	if got := api.lastUpdate(); got[1] != "unlucky" {
		t.Errorf("retried content = %q, want %q", got[1], "unlucky")
	}
	_, _, state = d.Selected()
	if state != StateLoaded {
		t.Errorf("state after retry = %v, want %v", state, StateLoaded)
	}
}

func TestDispatcher_UpdatesForOneNoteNotPipelined(t *testing.T) {
	api := newMockAPI()
	note := api.seed("")

	started := make(chan string, 2)
	gate := make(chan struct{})
	api.updateHook = func(id, content string) {
		started <- content
		if content == "v1" {
			<-gate
		}
	}

	d := NewDispatcher(api, confirmAlways, nil, time.Hour)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), note.ID)

	d.Edit("v1")
	go d.ForceSave()

	if got := <-started; got != "v1" {
		t.Fatalf("first dispatch = %q, want v1", got)
	}

	// While v1 is in flight, v2 must be parked, not sent.
	d.Edit("v2")
	d.ForceSave()

	select {
	case got := <-started:
		t.Fatalf("second update %q dispatched while first in flight", got)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)

	waitFor(t, "queued update", func() bool { return api.updateCount() == 2 })
	if got := api.lastUpdate(); got[1] != "v2" {
		t.Errorf("second update = %q, want v2", got[1])
	}

	waitFor(t, "session settled", func() bool {
		_, _, state := d.Selected()
		return state == StateLoaded
	})
}

func TestDispatcher_SelectFlushesDirtyBuffer(t *testing.T) {
	api := newMockAPI()
	first := api.seed("# First")
	second := api.seed("# Second")
	d := NewDispatcher(api, confirmAlways, nil, time.Hour)
	d.Refresh(context.Background())
	d.SelectNote(context.Background(), first.ID)

	d.Edit("# First\nunsaved")
	if err := d.SelectNote(context.Background(), second.ID); err != nil {
		t.Fatalf("SelectNote() error = %v", err)
	}

	// The switch forced the pending edit out before loading.
	if got := api.updateCount(); got != 1 {
		t.Fatalf("update count = %d, want 1", got)
	}
	if got := api.lastUpdate(); got[0] != first.ID || got[1] != "# First\nunsaved" {
		t.Errorf("flushed update = %v", got)
	}

	id, buffer, state := d.Selected()
	if id != second.ID || buffer != "# Second" || state != StateLoaded {
		t.Errorf("selection after switch = %s/%q/%v", id, buffer, state)
	}
}

func TestDispatcher_SelectMissingClearsSelection(t *testing.T) {
	api := newMockAPI()
	note := api.seed("# Gone")
	d := NewDispatcher(api, confirmAlways, nil, time.Hour)
	d.Refresh(context.Background())

	// Deleted behind the client's back.
	api.mu.Lock()
	delete(api.notes, note.ID)
	api.mu.Unlock()

	err := d.SelectNote(context.Background(), note.ID)
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("SelectNote() error = %v, want ErrNoteNotFound", err)
	}

	_, _, state := d.Selected()
	if state != StateEmpty {
		t.Errorf("state = %v, want %v", state, StateEmpty)
	}
	if len(d.Entries()) != 0 {
		t.Errorf("entries = %+v, want stale entry dropped", d.Entries())
	}
}
