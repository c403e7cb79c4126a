// internal/snapshot/storage_test.go
package snapshot

import (
	"testing"
	"time"

	"funedit/internal/funscript"
	"funedit/internal/project"
	"funedit/internal/region"
)

func testProject() *project.Project {
	return &project.Project{
		ID:   "proj-1",
		Name: "session",
		Funscript: &funscript.Funscript{
			Actions: []funscript.Action{
				{ID: "00001", At: 0, Pos: 0},
				{ID: "00002", At: 500, Pos: 100},
			},
		},
		Chapters: map[string]region.Chapter{
			"c1": {ID: "c1", StartTime: 0, EndTime: 10, Title: "intro"},
		},
	}
}

func TestStorage_SaveLoad(t *testing.T) {
	s := NewStorage(t.TempDir(), 3)

	snap, err := s.Save(testProject(), "before cleanup")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if snap.ID == "" || snap.Actions != 2 || snap.Chapters != 1 {
		t.Errorf("Unexpected metadata: %+v", snap)
	}

	p, err := s.Load("proj-1", snap.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Name != "session" || len(p.Funscript.Actions) != 2 {
		t.Errorf("Unexpected project: %+v", p)
	}
	if p.Chapters["c1"].Title != "intro" {
		t.Errorf("Chapter lost in round trip: %+v", p.Chapters)
	}
}

func TestStorage_ListNewestFirst(t *testing.T) {
	s := NewStorage(t.TempDir(), 3)
	p := testProject()

	first, err := s.Save(p, "first")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := s.Save(p, "second")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snaps, err := s.List("proj-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].ID != second.ID || snaps[1].ID != first.ID {
		t.Errorf("List not newest first: %v", snaps)
	}
}

func TestStorage_ListEmpty(t *testing.T) {
	s := NewStorage(t.TempDir(), 3)

	snaps, err := s.List("nothing")
	if err != nil || snaps != nil {
		t.Errorf("Expected empty list, got %v %v", snaps, err)
	}
}

func TestStorage_Delete(t *testing.T) {
	s := NewStorage(t.TempDir(), 3)

	snap, err := s.Save(testProject(), "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("proj-1", snap.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Load("proj-1", snap.ID); err == nil {
		t.Error("Snapshot survived delete")
	}
}
