// internal/funscript/funscript.go
package funscript

import (
	"encoding/json"
	"fmt"
)

// Action is one timestamped position sample. The ID is assigned at parse
// time and is internal to the editor; Export strips it again.
type Action struct {
	ID  string `json:"id"`
	At  int64  `json:"at"`  // milliseconds
	Pos int    `json:"pos"` // 0..100
}

// Bookmark is a named point in time from the metadata block.
type Bookmark struct {
	Name string    `json:"name"`
	Time TimeValue `json:"time"`
}

// MetadataChapter is a chapter as it appears in the funscript metadata
// block. Start/end times may be numeric seconds or "HH:MM:SS.mmm" strings.
type MetadataChapter struct {
	Name      string    `json:"name"`
	StartTime TimeValue `json:"startTime"`
	EndTime   TimeValue `json:"endTime"`
}

// Metadata is the optional funscript metadata block. Unknown fields are
// not preserved; the identity fields the editor cares about are.
type Metadata struct {
	Duration  float64           `json:"duration,omitempty"`
	Chapters  []MetadataChapter `json:"chapters,omitempty"`
	Bookmarks []Bookmark        `json:"bookmarks,omitempty"`
}

// Funscript is a parsed funscript document. Version, Inverted and Range
// pass through to export unchanged.
type Funscript struct {
	Version  json.RawMessage `json:"version,omitempty"`
	Inverted bool            `json:"inverted,omitempty"`
	Range    int             `json:"range,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Actions  []Action        `json:"actions"`
}

// ParseError reports an invalid funscript document.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "invalid funscript: " + e.Message
}

// rawAction lets us distinguish "missing field" from "zero value" during
// validation.
type rawAction struct {
	At  *float64 `json:"at"`
	Pos *float64 `json:"pos"`
}

type rawScript struct {
	Version  json.RawMessage `json:"version"`
	Inverted bool            `json:"inverted"`
	Range    int             `json:"range"`
	Metadata *Metadata       `json:"metadata"`
	Actions  json.RawMessage `json:"actions"`
}

// Parse decodes and validates a funscript document. Every action is
// assigned a 5-digit zero-padded ordinal ID in original array order.
func Parse(data []byte) (*Funscript, error) {
	var raw rawScript
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	if len(raw.Actions) == 0 || string(raw.Actions) == "null" {
		return nil, &ParseError{Message: "missing actions array"}
	}

	var actions []rawAction
	if err := json.Unmarshal(raw.Actions, &actions); err != nil {
		return nil, &ParseError{Message: "actions is not an array of {at, pos}: " + err.Error()}
	}

	fs := &Funscript{
		Version:  raw.Version,
		Inverted: raw.Inverted,
		Range:    raw.Range,
		Metadata: raw.Metadata,
		Actions:  make([]Action, 0, len(actions)),
	}

	for i, a := range actions {
		if a.At == nil {
			return nil, &ParseError{Message: fmt.Sprintf("action %d: missing numeric 'at'", i)}
		}
		if a.Pos == nil {
			return nil, &ParseError{Message: fmt.Sprintf("action %d: missing numeric 'pos'", i)}
		}
		fs.Actions = append(fs.Actions, Action{
			ID:  fmt.Sprintf("%05d", i+1),
			At:  int64(*a.At),
			Pos: int(*a.Pos),
		})
	}

	return fs, nil
}

// exportAction is the on-disk shape of an action: internal IDs are never
// written back.
type exportAction struct {
	At  int64 `json:"at"`
	Pos int   `json:"pos"`
}

type exportScript struct {
	Version  json.RawMessage `json:"version,omitempty"`
	Inverted bool            `json:"inverted,omitempty"`
	Range    int             `json:"range,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Actions  []exportAction  `json:"actions"`
}

// Export serializes a funscript back to JSON, emitting only at/pos per
// action plus the original top-level fields.
func Export(fs *Funscript) ([]byte, error) {
	out := exportScript{
		Version:  fs.Version,
		Inverted: fs.Inverted,
		Range:    fs.Range,
		Metadata: fs.Metadata,
		Actions:  make([]exportAction, 0, len(fs.Actions)),
	}
	for _, a := range fs.Actions {
		out.Actions = append(out.Actions, exportAction{At: a.At, Pos: a.Pos})
	}
	return json.MarshalIndent(out, "", "  ")
}
