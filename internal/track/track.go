// internal/track/track.go
package track

import (
	"fmt"
	"sort"

	"funedit/internal/funscript"
)

// Track owns the loaded funscript's action list and the transient
// selection state. It is a pure state holder: it never talks to the
// player or storage itself; the orchestrator turns its answers into
// effects. Not safe for concurrent use; the owning session serializes
// access.
type Track struct {
	script      *funscript.Funscript
	byID        map[string]int // id -> index into script.Actions
	selection   map[string]struct{}
	currentIdx  int
	nextOrdinal int
}

// New creates an empty track.
func New() *Track {
	return &Track{
		byID:      make(map[string]int),
		selection: make(map[string]struct{}),
	}
}

// Load replaces the whole track with a freshly parsed funscript. Action
// IDs must be unique; Parse guarantees that for its own output, so a
// collision here is a programming error.
func (t *Track) Load(fs *funscript.Funscript) error {
	byID := make(map[string]int, len(fs.Actions))
	for i, a := range fs.Actions {
		if a.ID == "" {
			return fmt.Errorf("action %d has no id", i)
		}
		if _, dup := byID[a.ID]; dup {
			return fmt.Errorf("duplicate action id %q", a.ID)
		}
		byID[a.ID] = i
	}

	t.script = fs
	t.byID = byID
	t.selection = make(map[string]struct{})
	t.currentIdx = 0
	t.nextOrdinal = len(fs.Actions) + 1
	return nil
}

// Loaded reports whether a funscript is present.
func (t *Track) Loaded() bool {
	return t.script != nil
}

// Script returns the underlying funscript, nil if none is loaded.
func (t *Track) Script() *funscript.Funscript {
	return t.script
}

// Actions returns the actions in storage (insertion) order.
func (t *Track) Actions() []funscript.Action {
	if t.script == nil {
		return nil
	}
	return t.script.Actions
}

// ActionsByTime returns a copy of the actions sorted by time.
func (t *Track) ActionsByTime() []funscript.Action {
	if t.script == nil {
		return nil
	}
	sorted := append([]funscript.Action{}, t.script.Actions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return sorted
}

// Get looks up an action by id.
func (t *Track) Get(id string) (funscript.Action, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return funscript.Action{}, false
	}
	return t.script.Actions[idx], true
}

// Select replaces the selection with a single action. Unknown ids are a
// no-op; the second return value reports whether the selection changed.
func (t *Track) Select(id string) (funscript.Action, bool) {
	a, ok := t.Get(id)
	if !ok {
		return funscript.Action{}, false
	}
	t.selection = map[string]struct{}{id: {}}
	return a, true
}

// Toggle adds or removes an action from the multi-select set.
func (t *Track) Toggle(id string) bool {
	if _, ok := t.byID[id]; !ok {
		return false
	}
	if _, selected := t.selection[id]; selected {
		delete(t.selection, id)
	} else {
		t.selection[id] = struct{}{}
	}
	return true
}

// ClearSelection empties the selection set.
func (t *Track) ClearSelection() {
	t.selection = make(map[string]struct{})
}

// SelectedIDs returns the selected ids in sorted order.
func (t *Track) SelectedIDs() []string {
	ids := make([]string, 0, len(t.selection))
	for id := range t.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether an action is in the selection set.
func (t *Track) IsSelected(id string) bool {
	_, ok := t.selection[id]
	return ok
}

// SetCurrentIndex moves the prev/next navigation cursor. The index is
// bounds-checked against the current action count.
func (t *Track) SetCurrentIndex(idx int) bool {
	if t.script == nil || idx < 0 || idx >= len(t.script.Actions) {
		return false
	}
	t.currentIdx = idx
	return true
}

// CurrentIndex returns the navigation cursor.
func (t *Track) CurrentIndex() int {
	return t.currentIdx
}

// CurrentAction returns the action at the cursor in time order.
func (t *Track) CurrentAction() (funscript.Action, bool) {
	sorted := t.ActionsByTime()
	if t.currentIdx < 0 || t.currentIdx >= len(sorted) {
		return funscript.Action{}, false
	}
	return sorted[t.currentIdx], true
}

// Move updates an action's time and position in place (drag). Unknown
// ids are a no-op; out-of-range values are rejected. The storage order
// is untouched, consumers re-sort by time as needed.
func (t *Track) Move(id string, at int64, pos int) (bool, error) {
	if at < 0 {
		return false, fmt.Errorf("action time must be >= 0, got %d", at)
	}
	if pos < 0 || pos > 100 {
		return false, fmt.Errorf("action position must be in 0..100, got %d", pos)
	}
	idx, ok := t.byID[id]
	if !ok {
		return false, nil
	}
	t.script.Actions[idx].At = at
	t.script.Actions[idx].Pos = pos
	return true, nil
}

// Insert appends a user-added action and returns it. The new id
// continues the ordinal sequence and never collides with a live id.
func (t *Track) Insert(at int64, pos int) (funscript.Action, error) {
	if t.script == nil {
		return funscript.Action{}, fmt.Errorf("no funscript loaded")
	}
	if at < 0 {
		return funscript.Action{}, fmt.Errorf("action time must be >= 0, got %d", at)
	}
	if pos < 0 || pos > 100 {
		return funscript.Action{}, fmt.Errorf("action position must be in 0..100, got %d", pos)
	}

	var id string
	for {
		id = fmt.Sprintf("%05d", t.nextOrdinal)
		t.nextOrdinal++
		if _, taken := t.byID[id]; !taken {
			break
		}
	}

	a := funscript.Action{ID: id, At: at, Pos: pos}
	t.script.Actions = append(t.script.Actions, a)
	t.byID[id] = len(t.script.Actions) - 1
	return a, nil
}
