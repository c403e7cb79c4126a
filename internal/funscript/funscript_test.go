package funscript

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParse_AssignsOrdinalIDs(t *testing.T) {
	doc := `{"version":"1.0","actions":[{"at":0,"pos":0},{"at":500,"pos":90},{"at":1000,"pos":10}]}`

	fs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(fs.Actions) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(fs.Actions))
	}

	expected := []string{"00001", "00002", "00003"}
	for i, a := range fs.Actions {
		if a.ID != expected[i] {
			t.Errorf("Action %d: expected id %s, got %s", i, expected[i], a.ID)
		}
	}
}

func TestParse_MissingActions(t *testing.T) {
	for _, doc := range []string{`{}`, `{"version":"1.0"}`} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Expected error for %s", doc)
		}
	}
}

func TestParse_ActionsNotArray(t *testing.T) {
	_, err := Parse([]byte(`{"actions":"nope"}`))
	if err == nil {
		t.Fatal("Expected error for non-array actions")
	}
	if !strings.Contains(err.Error(), "invalid funscript") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestParse_ActionMissingFields(t *testing.T) {
	_, err := Parse([]byte(`{"actions":[{"at":100}]}`))
	if err == nil {
		t.Fatal("Expected error for action without pos")
	}

	_, err = Parse([]byte(`{"actions":[{"pos":50}]}`))
	if err == nil {
		t.Fatal("Expected error for action without at")
	}
}

func TestExport_StripsInternalIDs(t *testing.T) {
	doc := `{"inverted":true,"range":90,"actions":[{"at":0,"pos":0},{"at":250,"pos":100}]}`

	fs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := Export(fs)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded struct {
		Inverted bool                     `json:"inverted"`
		Range    int                      `json:"range"`
		Actions  []map[string]interface{} `json:"actions"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Export produced invalid JSON: %v", err)
	}

	if !decoded.Inverted || decoded.Range != 90 {
		t.Error("Identity fields did not round-trip")
	}

	for i, a := range decoded.Actions {
		if len(a) != 2 {
			t.Errorf("Action %d: expected only at/pos keys, got %v", i, a)
		}
		if _, ok := a["id"]; ok {
			t.Errorf("Action %d: internal id leaked into export", i)
		}
	}
}

func TestRoundTrip_PreservesActionPayload(t *testing.T) {
	doc := `{"version":"1.0","actions":[{"at":0,"pos":5},{"at":1234,"pos":77},{"at":99999,"pos":0}]}`

	first, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := Export(first)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	second, err := Parse(out)
	if err != nil {
		t.Fatalf("Re-parse failed: %v", err)
	}

	if len(first.Actions) != len(second.Actions) {
		t.Fatalf("Action count changed: %d vs %d", len(first.Actions), len(second.Actions))
	}
	for i := range first.Actions {
		if first.Actions[i].At != second.Actions[i].At || first.Actions[i].Pos != second.Actions[i].Pos {
			t.Errorf("Action %d changed: %+v vs %+v", i, first.Actions[i], second.Actions[i])
		}
		if second.Actions[i].ID != first.Actions[i].ID {
			t.Errorf("Action %d: id not reassigned deterministically", i)
		}
	}
}

func TestParse_MetadataChapterTimeStrings(t *testing.T) {
	doc := `{"metadata":{"duration":120,"chapters":[
		{"name":"intro","startTime":"00:00:05.500","endTime":"00:01:00.000"},
		{"name":"main","startTime":"01:30.250","endTime":90.5}
	]},"actions":[{"at":0,"pos":50}]}`

	fs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	chapters := fs.Metadata.Chapters
	if len(chapters) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(chapters))
	}

	if chapters[0].StartTime.Seconds() != 5.5 {
		t.Errorf("Expected 5.5, got %v", chapters[0].StartTime.Seconds())
	}
	if chapters[0].EndTime.Seconds() != 60 {
		t.Errorf("Expected 60, got %v", chapters[0].EndTime.Seconds())
	}
	if chapters[1].StartTime.Seconds() != 90.25 {
		t.Errorf("Expected 90.25, got %v", chapters[1].StartTime.Seconds())
	}
	if chapters[1].EndTime.Seconds() != 90.5 {
		t.Errorf("Expected 90.5, got %v", chapters[1].EndTime.Seconds())
	}
}

func TestParseTimeString_Invalid(t *testing.T) {
	for _, s := range []string{"", "12", "1:2:3:4", "aa:bb", "-1:30"} {
		if _, err := ParseTimeString(s); err == nil {
			t.Errorf("Expected error for %q", s)
		}
	}
}
