package project

import (
	"testing"

	"funedit/internal/funscript"
)

func parsedScript(t *testing.T) *funscript.Funscript {
	t.Helper()
	fs, err := funscript.Parse([]byte(`{"actions":[{"at":0,"pos":50}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return fs
}

func countSaves(effects []Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(SaveEffect); ok {
			n++
		}
	}
	return n
}

func TestCheckProject_RoutesToMissingResource(t *testing.T) {
	// Neither resource: default to video selection.
	m := NewMachine()
	effects, err := m.Handle(SelectProjectEvent{Project: &Project{ID: "p1", Name: "empty"}})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateSelectVideo {
		t.Errorf("Expected select_video, got %s", m.State())
	}
	if countSaves(effects) != 0 {
		t.Error("No save expected before ready")
	}

	// Video but no funscript.
	m = NewMachine()
	p := &Project{ID: "p2", VideoFile: &VideoFile{Name: "a.mp4"}}
	if _, err := m.Handle(SelectProjectEvent{Project: p}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateSelectFunscript {
		t.Errorf("Expected select_funscript, got %s", m.State())
	}
}

func TestCheckProject_ReadySavesOnce(t *testing.T) {
	m := NewMachine()
	p := &Project{
		ID:        "p3",
		VideoFile: &VideoFile{Name: "a.mp4"},
		Funscript: parsedScript(t),
	}
	effects, err := m.Handle(SelectProjectEvent{Project: p})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateReady {
		t.Fatalf("Expected ready, got %s", m.State())
	}
	if countSaves(effects) != 1 {
		t.Errorf("Expected exactly one save on ready entry, got %d", countSaves(effects))
	}
}

func TestResourceSelection_WalksToReady(t *testing.T) {
	m := NewMachine()
	if _, err := m.Handle(SelectProjectEvent{Project: &Project{ID: "p4"}}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	effects, err := m.Handle(SelectVideoEvent{Video: VideoFile{Name: "v.webm", Size: 100, Type: "video/webm"}})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateSelectFunscript || countSaves(effects) != 0 {
		t.Fatalf("Expected select_funscript with no save, got %s", m.State())
	}

	effects, err = m.Handle(SelectFunscriptEvent{Script: parsedScript(t)})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateReady || countSaves(effects) != 1 {
		t.Fatalf("Expected ready with one save, got %s / %d saves", m.State(), countSaves(effects))
	}

	// Replacing the video from ready routes back through the check and
	// saves again on re-entry.
	effects, err = m.Handle(SelectVideoEvent{Video: VideoFile{Name: "v2.mp4", Type: "video/mp4"}})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != StateReady || countSaves(effects) != 1 {
		t.Errorf("Replace video: expected ready with one save, got %s / %d", m.State(), countSaves(effects))
	}
	if m.Project().VideoFile.Name != "v2.mp4" {
		t.Error("Video not replaced")
	}
}

func TestReset_ReleasesMediaAndClears(t *testing.T) {
	m := NewMachine()
	p := &Project{ID: "p5", VideoFile: &VideoFile{Name: "a.mp4"}, Funscript: parsedScript(t)}
	if _, err := m.Handle(SelectProjectEvent{Project: p}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if _, err := m.Handle(SetErrorEvent{Message: "boom"}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	effects, err := m.Handle(ResetEvent{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	released := false
	for _, e := range effects {
		if _, ok := e.(ReleaseMediaEffect); ok {
			released = true
		}
	}
	if !released {
		t.Error("Reset with a held video must release it")
	}
	if m.State() != StateSelectProject || m.Project() != nil || m.Err() != "" {
		t.Errorf("Reset did not clear: %s %v %q", m.State(), m.Project(), m.Err())
	}
}

func TestErrorOverlay_DoesNotMoveMachine(t *testing.T) {
	m := NewMachine()
	if _, err := m.Handle(SelectProjectEvent{Project: &Project{ID: "p6"}}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	before := m.State()

	if _, err := m.Handle(SetErrorEvent{Message: "storage quota exceeded"}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.State() != before || m.Err() != "storage quota exceeded" {
		t.Errorf("Error overlay misbehaved: %s %q", m.State(), m.Err())
	}

	if _, err := m.Handle(ClearErrorEvent{}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if m.Err() != "" {
		t.Error("ClearError did not clear")
	}
}

func TestGuards(t *testing.T) {
	m := NewMachine()
	if _, err := m.Handle(SelectVideoEvent{Video: VideoFile{Name: "x"}}); err == nil {
		t.Error("Video before project should be rejected")
	}
	if _, err := m.Handle(SelectProjectEvent{}); err == nil {
		t.Error("Nil project should be rejected")
	}
}
