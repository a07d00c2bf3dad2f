package editor

import "errors"

// ErrNoNoteSelected is returned when an edit or save is attempted
// with no note open.
var ErrNoNoteSelected = errors.New("no note selected")

type State int

const (
	// StateEmpty: no note open, editing disabled.
	StateEmpty State = iota
	// StateLoaded: note open, buffer matches server content.
	StateLoaded
	// StateDirty: local edits not yet persisted.
	StateDirty
	// StateSaving: a write for the buffer is in flight.
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Session tracks which note is open, the last content observed from
// the editor, and whether a save is pending. It is a plain value; the
// Dispatcher serializes access to it.
//
// selectGen is bumped whenever the selection changes, so a response
// that was issued for an earlier selection can be recognized as stale
// and discarded instead of applied.
type Session struct {
	state      State
	selectedID string
	buffer     string
	selectGen  uint64
}

func NewSession() *Session {
	return &Session{state: StateEmpty}
}

func (s *Session) State() State       { return s.state }
func (s *Session) SelectedID() string { return s.selectedID }
func (s *Session) Buffer() string     { return s.buffer }

// BeginSelect invalidates any in-flight load and returns the token
// the eventual response must present to ApplyLoad.
func (s *Session) BeginSelect() uint64 {
	s.selectGen++
	return s.selectGen
}

// ApplyLoad installs a select response. It reports false, leaving the
// session untouched, when the token belongs to a superseded selection.
func (s *Session) ApplyLoad(token uint64, id, content string) bool {
	if token != s.selectGen {
		return false
	}
	s.state = StateLoaded
	s.selectedID = id
	s.buffer = content
	return true
}

// Open selects a note whose content is already known, such as one
// just created.
func (s *Session) Open(id, content string) {
	s.selectGen++
	s.state = StateLoaded
	s.selectedID = id
	s.buffer = content
}

// Edit records a local edit. Returns the selected note id, or
// ErrNoNoteSelected when editing is disabled.
func (s *Session) Edit(content string) (string, error) {
	if s.state == StateEmpty {
		return "", ErrNoNoteSelected
	}
	s.buffer = content
	s.state = StateDirty
	return s.selectedID, nil
}

// MarkSaving moves Dirty to Saving for the given note. A no-op when
// the selection has moved on since the save was scheduled.
func (s *Session) MarkSaving(id string) {
	if s.selectedID == id && s.state == StateDirty {
		s.state = StateSaving
	}
}

// CompleteSave settles a successful save. The session returns to
// Loaded only when the saved note is still selected and the buffer
// still equals the content that was written; otherwise a newer edit
// exists and the session stays Dirty.
func (s *Session) CompleteSave(id, content string) bool {
	if s.selectedID != id || s.state != StateSaving {
		return false
	}
	if s.buffer != content {
		s.state = StateDirty
		return false
	}
	s.state = StateLoaded
	return true
}

// FailSave returns a failed save to Dirty so a later edit or forced
// save retries it.
func (s *Session) FailSave(id string) {
	if s.selectedID == id && s.state == StateSaving {
		s.state = StateDirty
	}
}

// Clear deselects. Any in-flight response for the old selection
// becomes stale.
func (s *Session) Clear() {
	s.selectGen++
	s.state = StateEmpty
	s.selectedID = ""
	s.buffer = ""
}
