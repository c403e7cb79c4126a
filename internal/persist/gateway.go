// internal/persist/gateway.go
// Package persist defines the storage gateway used by the editor session.
// The SQLite implementation backs normal operation; the memory
// implementation backs tests and ephemeral sessions.
package persist

import (
	"fmt"

	"funedit/internal/database"
	"funedit/internal/funscript"
	"funedit/internal/project"
	"funedit/internal/region"
)

// NotFoundError is returned when a project or facet does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// StorageError wraps a backend failure with the operation that caused it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// BatchUpdate carries the facets to write in one atomic operation.
// Nil slices and pointers are skipped, not cleared.
type BatchUpdate struct {
	Chapters []region.Chapter
	ROIs     []region.ROI
	Actions  []funscript.Action
	Settings *project.Settings
}

func (b *BatchUpdate) empty() bool {
	return b.Chapters == nil && b.ROIs == nil && b.Actions == nil && b.Settings == nil
}

// merge overlays later writes on top of earlier ones, facet by facet.
func (b *BatchUpdate) merge(next *BatchUpdate) {
	if next.Chapters != nil {
		b.Chapters = next.Chapters
	}
	if next.ROIs != nil {
		b.ROIs = next.ROIs
	}
	if next.Actions != nil {
		b.Actions = next.Actions
	}
	if next.Settings != nil {
		b.Settings = next.Settings
	}
}

// Gateway is the persistence surface the editor talks to.
type Gateway interface {
	SaveProject(p *project.Project) error
	LoadProject(id string) (*project.Project, error)
	LoadAllProjects() ([]*project.Project, error)
	DeleteProject(id string) error

	SaveChapters(projectID string, chapters []region.Chapter) error
	LoadChapters(projectID string) ([]region.Chapter, error)
	SaveROIs(projectID string, rois []region.ROI) error
	LoadROIs(projectID string) ([]region.ROI, error)
	SaveActions(projectID string, actions []funscript.Action) error
	LoadActions(projectID string) ([]funscript.Action, error)
	SaveSettings(projectID string, settings *project.Settings) error
	LoadSettings(projectID string) (*project.Settings, error)

	ApplyBatch(projectID string, batch *BatchUpdate) error

	AppendEvent(projectID, eventType, payload string) error
	Events(projectID string, limit int) ([]*database.EventRecord, error)

	Clear() error
	Close() error
}
