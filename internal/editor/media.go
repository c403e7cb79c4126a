// internal/editor/media.go
package editor

import (
	"fmt"
	"sync"

	"funedit/internal/project"
)

// DefaultMaxVideoSize caps attached videos when no limit is configured.
const DefaultMaxVideoSize int64 = 500 * 1024 * 1024

// ResourceError reports a previously granted file handle that has gone
// stale; the UI reacts by re-prompting for the file.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s unavailable: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

var allowedVideoTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
	"video/ogg":  true,
}

// ValidateVideo checks a candidate video file before it is attached to
// the project. The message is meant for the UI, not for wrapping.
// maxSize <= 0 falls back to DefaultMaxVideoSize.
func ValidateVideo(v project.VideoFile, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxVideoSize
	}
	if !allowedVideoTypes[v.Type] {
		return fmt.Errorf("unsupported video type %q, use mp4, webm or ogg", v.Type)
	}
	if v.Size > maxSize {
		return fmt.Errorf("video exceeds the %dMB limit (%d bytes)", maxSize/(1024*1024), v.Size)
	}
	return nil
}

// MediaRegistry keeps at most one served video path alive. Attaching a
// new video releases the previous one.
type MediaRegistry struct {
	mu   sync.Mutex
	path string
}

func NewMediaRegistry() *MediaRegistry {
	return &MediaRegistry{}
}

// Serve registers path as the served video and returns the path it
// replaced, "" if none.
func (m *MediaRegistry) Serve(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.path
	m.path = path
	return prev
}

// Current returns the served path, "" if none.
func (m *MediaRegistry) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Release forgets the served path and returns it.
func (m *MediaRegistry) Release() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.path
	m.path = ""
	return prev
}
