// internal/region/roi.go
package region

import (
	"fmt"
	"sort"
)

// ROI is a time-anchored rectangle over the video frame, used for zoom
// and motion-tracking workflows. Times are milliseconds. A nil TimeEnd
// means the region stays active until the next ROI's start supersedes
// it.
type ROI struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w"`
	H         float64 `json:"h"`
	TimeStart int64   `json:"timeStart"`
	TimeEnd   *int64  `json:"timeEnd,omitempty"`
	Title     string  `json:"title,omitempty"`
	Zoomed    bool    `json:"zoomed,omitempty"`

	// Seq is the insertion sequence; it breaks ties between ROIs sharing
	// a start time (last inserted wins).
	Seq int64 `json:"seq"`
}

// ROISet owns the ROI collection plus the selected and active pointers.
// Not safe for concurrent use.
type ROISet struct {
	records  map[string]ROI
	selected string
	active   string
	nextSeq  int64
}

// NewROISet creates an empty ROI set.
func NewROISet() *ROISet {
	return &ROISet{records: make(map[string]ROI)}
}

func validateROI(r ROI) error {
	if r.ID == "" {
		return &ValidationError{Message: "roi id must not be empty"}
	}
	if r.W <= 0 || r.H <= 0 {
		return &ValidationError{Message: fmt.Sprintf("roi %q: width and height must be > 0", r.ID)}
	}
	if r.TimeStart < 0 {
		return &ValidationError{Message: fmt.Sprintf("roi %q: timeStart must be >= 0", r.ID)}
	}
	if r.TimeEnd != nil && *r.TimeEnd <= r.TimeStart {
		return &ValidationError{Message: fmt.Sprintf("roi %q: timeEnd must be > timeStart", r.ID)}
	}
	return nil
}

// Add inserts a new ROI.
func (rs *ROISet) Add(r ROI) error {
	if _, exists := rs.records[r.ID]; exists {
		return &ValidationError{Message: fmt.Sprintf("roi %q already exists", r.ID)}
	}
	if err := validateROI(r); err != nil {
		return err
	}
	rs.nextSeq++
	r.Seq = rs.nextSeq
	rs.records[r.ID] = r
	return nil
}

// Update replaces an existing ROI, preserving its insertion sequence.
// Updating an unknown id is a no-op.
func (rs *ROISet) Update(r ROI) (bool, error) {
	old, exists := rs.records[r.ID]
	if !exists {
		return false, nil
	}
	if err := validateROI(r); err != nil {
		return false, err
	}
	r.Seq = old.Seq
	rs.records[r.ID] = r
	return true, nil
}

// Remove deletes an ROI. Unknown ids are a no-op.
func (rs *ROISet) Remove(id string) bool {
	if _, exists := rs.records[id]; !exists {
		return false
	}
	delete(rs.records, id)
	if rs.selected == id {
		rs.selected = ""
	}
	if rs.active == id {
		rs.active = ""
	}
	return true
}

// Get looks up an ROI by id.
func (rs *ROISet) Get(id string) (ROI, bool) {
	r, ok := rs.records[id]
	return r, ok
}

// Len returns the number of ROIs.
func (rs *ROISet) Len() int {
	return len(rs.records)
}

// All returns the ROIs sorted by start time, then insertion order.
func (rs *ROISet) All() []ROI {
	out := make([]ROI, 0, len(rs.records))
	for _, r := range rs.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeStart != out[j].TimeStart {
			return out[i].TimeStart < out[j].TimeStart
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Replace swaps in a whole ROI collection (project load).
func (rs *ROISet) Replace(rois []ROI) error {
	fresh := NewROISet()
	for _, r := range rois {
		if err := validateROI(r); err != nil {
			return err
		}
		if _, dup := fresh.records[r.ID]; dup {
			return &ValidationError{Message: fmt.Sprintf("duplicate roi id %q", r.ID)}
		}
		fresh.records[r.ID] = r
		if r.Seq > fresh.nextSeq {
			fresh.nextSeq = r.Seq
		}
	}
	rs.records = fresh.records
	rs.nextSeq = fresh.nextSeq
	rs.selected = ""
	rs.active = ""
	return nil
}

// ActiveAt resolves the ROI active at t seconds: the one with the
// greatest TimeStart <= t, ties broken by insertion order (last wins).
// An ROI with an explicit TimeEnd stops being active once t passes it.
func (rs *ROISet) ActiveAt(seconds float64) (ROI, bool) {
	ms := int64(seconds * 1000)
	if seconds < 0 {
		return ROI{}, false
	}

	var best ROI
	found := false
	for _, r := range rs.records {
		if r.TimeStart > ms {
			continue
		}
		if !found || r.TimeStart > best.TimeStart || (r.TimeStart == best.TimeStart && r.Seq > best.Seq) {
			best = r
			found = true
		}
	}
	if !found {
		return ROI{}, false
	}
	if best.TimeEnd != nil && ms >= *best.TimeEnd {
		return ROI{}, false
	}
	return best, true
}

// Select marks an ROI as selected without touching the active pointer.
// Selecting "" or an unknown id deselects.
func (rs *ROISet) Select(id string) {
	if _, ok := rs.records[id]; !ok {
		rs.selected = ""
		return
	}
	rs.selected = id
}

// SelectAndFocus selects an ROI for editing and also makes it the
// visually active one. The returned ROI carries the start time the
// caller should seek to.
func (rs *ROISet) SelectAndFocus(id string) (ROI, bool) {
	r, ok := rs.records[id]
	if !ok {
		return ROI{}, false
	}
	rs.selected = id
	rs.active = id
	return r, true
}

// SetActive records the ROI resolved as active for the current playback
// time and reports whether the pointer changed.
func (rs *ROISet) SetActive(id string) bool {
	if rs.active == id {
		return false
	}
	rs.active = id
	return true
}

// SelectedID returns the selected ROI id, "" if none.
func (rs *ROISet) SelectedID() string {
	return rs.selected
}

// ActiveID returns the active ROI id, "" if none.
func (rs *ROISet) ActiveID() string {
	return rs.active
}
