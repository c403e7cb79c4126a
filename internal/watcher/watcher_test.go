package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	w, err := New(100*time.Millisecond, func(c Change) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if w == nil {
		t.Fatal("New() returned nil watcher")
	}
}

func TestWatchInvalidDir(t *testing.T) {
	w, err := New(100*time.Millisecond, func(c Change) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	err = w.Watch("/nonexistent/path/script.funscript")
	if err == nil {
		t.Fatal("Watch() should return error for missing directory")
	}
}

func TestScriptModified(t *testing.T) {
	tmpDir := t.TempDir()
	scriptFile := filepath.Join(tmpDir, "clip.funscript")
	if err := os.WriteFile(scriptFile, []byte(`{"actions":[]}`), 0644); err != nil {
		t.Fatalf("Failed to create script file: %v", err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(scriptFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Give the watcher time to start
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(scriptFile, []byte(`{"actions":[{"at":0,"pos":0}]}`), 0644); err != nil {
		t.Fatalf("Failed to modify script file: %v", err)
	}

	// Wait for debounce and event processing
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Fatal("Expected at least one change, got none")
	}
	if changes[0].Type != ChangeModified {
		t.Errorf("Expected modified change, got %+v", changes[0])
	}
}

func TestOtherFilesIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	scriptFile := filepath.Join(tmpDir, "clip.funscript")
	if err := os.WriteFile(scriptFile, []byte(`{"actions":[]}`), 0644); err != nil {
		t.Fatalf("Failed to create script file: %v", err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(scriptFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// Sibling file in the same directory.
	other := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write sibling file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) != 0 {
		t.Errorf("Expected no changes for sibling files, got %+v", changes)
	}
}

func TestScriptRemoved(t *testing.T) {
	tmpDir := t.TempDir()
	scriptFile := filepath.Join(tmpDir, "clip.funscript")
	if err := os.WriteFile(scriptFile, []byte(`{"actions":[]}`), 0644); err != nil {
		t.Fatalf("Failed to create script file: %v", err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(scriptFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(scriptFile); err != nil {
		t.Fatalf("Failed to delete script file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Fatal("Expected at least one change, got none")
	}
	if changes[0].Type != ChangeRemoved {
		t.Errorf("Expected removed change, got %+v", changes[0])
	}
}

func TestDebouncing(t *testing.T) {
	tmpDir := t.TempDir()
	scriptFile := filepath.Join(tmpDir, "clip.funscript")
	if err := os.WriteFile(scriptFile, []byte(`{"actions":[]}`), 0644); err != nil {
		t.Fatalf("Failed to create script file: %v", err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(100*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(scriptFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// Write the file rapidly
	for i := 0; i < 10; i++ {
		if err := os.WriteFile(scriptFile, []byte(`{"actions":[]}`), 0644); err != nil {
			t.Fatalf("Failed to write script file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	changeCount := len(changes)
	mu.Unlock()

	// Due to debouncing, we should get significantly fewer callbacks than 10
	if changeCount >= 10 {
		t.Errorf("Expected debouncing to reduce callbacks, got %d", changeCount)
	}
}

func TestRetarget(t *testing.T) {
	tmpA := t.TempDir()
	tmpB := t.TempDir()
	first := filepath.Join(tmpA, "a.funscript")
	second := filepath.Join(tmpB, "b.funscript")
	for _, f := range []string{first, second} {
		if err := os.WriteFile(f, []byte(`{"actions":[]}`), 0644); err != nil {
			t.Fatalf("Failed to create script file: %v", err)
		}
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(first); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Watch(second); err != nil {
		t.Fatalf("Watch() retarget error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// Old target no longer reports.
	if err := os.WriteFile(first, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write old target: %v", err)
	}
	if err := os.WriteFile(second, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write new target: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	for _, c := range changes {
		if c.Path != w.Target() {
			t.Errorf("Change for stale target: %+v", c)
		}
	}
	if len(changes) == 0 {
		t.Fatal("Expected a change for the new target")
	}
}

func TestClose(t *testing.T) {
	w, err := New(100*time.Millisecond, func(c Change) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Calling Close again should not panic or error
	if err := w.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}

	if err := w.Watch("/tmp"); err == nil {
		t.Error("Watch() after Close should error")
	}
}
