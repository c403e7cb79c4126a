// internal/region/chapter.go
package region

import (
	"fmt"
	"sort"
)

// Chapter is a named, colored time range over the timeline. Times are
// seconds.
type Chapter struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Title     string  `json:"title"`
	Color     string  `json:"color"`
}

// ValidationError reports a record rejected by the data layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Window is the currently visible time range of the timeline, in seconds.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// chapterColors is the palette used for deterministic color assignment
// when chapters are imported from funscript metadata.
var chapterColors = []string{
	"red", "orange", "amber", "green", "teal", "blue", "indigo", "purple", "pink",
}

// ColorForIndex returns the palette color for the i-th imported chapter.
func ColorForIndex(i int) string {
	return chapterColors[i%len(chapterColors)]
}

// ChapterSet owns the chapter collection and the chapter selection.
// Chapters are keyed by id; views sort by start time. Sibling chapters
// must not overlap; Add and Update reject records that would break that.
// Not safe for concurrent use.
type ChapterSet struct {
	records  map[string]Chapter
	selected string
}

// NewChapterSet creates an empty chapter set.
func NewChapterSet() *ChapterSet {
	return &ChapterSet{records: make(map[string]Chapter)}
}

// validate checks a chapter's time range against the set, ignoring the
// record with the chapter's own id.
func (cs *ChapterSet) validate(c Chapter) error {
	if c.ID == "" {
		return &ValidationError{Message: "chapter id must not be empty"}
	}
	if c.StartTime < 0 || c.StartTime >= c.EndTime {
		return &ValidationError{Message: fmt.Sprintf("chapter %q: start must satisfy 0 <= start < end (got %v..%v)", c.ID, c.StartTime, c.EndTime)}
	}
	for id, other := range cs.records {
		if id == c.ID {
			continue
		}
		if c.StartTime < other.EndTime && other.StartTime < c.EndTime {
			return &ValidationError{Message: fmt.Sprintf("chapter %q overlaps chapter %q", c.ID, id)}
		}
	}
	return nil
}

// Add inserts a new chapter.
func (cs *ChapterSet) Add(c Chapter) error {
	if _, exists := cs.records[c.ID]; exists {
		return &ValidationError{Message: fmt.Sprintf("chapter %q already exists", c.ID)}
	}
	if err := cs.validate(c); err != nil {
		return err
	}
	cs.records[c.ID] = c
	return nil
}

// Update replaces an existing chapter. Updating an unknown id is a
// no-op; the first return value reports whether anything changed.
func (cs *ChapterSet) Update(c Chapter) (bool, error) {
	if _, exists := cs.records[c.ID]; !exists {
		return false, nil
	}
	if err := cs.validate(c); err != nil {
		return false, err
	}
	cs.records[c.ID] = c
	return true, nil
}

// Remove deletes a chapter. Unknown ids are a no-op.
func (cs *ChapterSet) Remove(id string) bool {
	if _, exists := cs.records[id]; !exists {
		return false
	}
	delete(cs.records, id)
	if cs.selected == id {
		cs.selected = ""
	}
	return true
}

// Get looks up a chapter by id.
func (cs *ChapterSet) Get(id string) (Chapter, bool) {
	c, ok := cs.records[id]
	return c, ok
}

// Len returns the number of chapters.
func (cs *ChapterSet) Len() int {
	return len(cs.records)
}

// All returns the chapters sorted by start time.
func (cs *ChapterSet) All() []Chapter {
	out := make([]Chapter, 0, len(cs.records))
	for _, c := range cs.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// Replace swaps in a whole chapter collection (project load).
func (cs *ChapterSet) Replace(chapters []Chapter) error {
	fresh := NewChapterSet()
	for _, c := range chapters {
		if err := fresh.Add(c); err != nil {
			return err
		}
	}
	cs.records = fresh.records
	cs.selected = ""
	return nil
}

// ActiveAt returns the chapter containing t (startTime <= t < endTime).
// Given the non-overlap invariant there is at most one.
func (cs *ChapterSet) ActiveAt(seconds float64) (Chapter, bool) {
	for _, c := range cs.records {
		if c.StartTime <= seconds && seconds < c.EndTime {
			return c, true
		}
	}
	return Chapter{}, false
}

// Select marks a chapter as selected and returns the recomputed visible
// window: a third of the chapter length of margin on each side, clamped
// to [0, duration]. Selecting "" deselects and resets the window to the
// whole video. Selecting an unknown id behaves like deselecting.
func (cs *ChapterSet) Select(id string, duration float64) Window {
	c, ok := cs.records[id]
	if id == "" || !ok {
		cs.selected = ""
		return Window{Start: 0, End: duration}
	}

	cs.selected = id
	margin := (c.EndTime - c.StartTime) / 3
	w := Window{Start: c.StartTime - margin, End: c.EndTime + margin}
	if w.Start < 0 {
		w.Start = 0
	}
	if w.End > duration {
		w.End = duration
	}
	return w
}

// SelectedID returns the selected chapter id, "" if none.
func (cs *ChapterSet) SelectedID() string {
	return cs.selected
}
