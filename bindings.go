// bindings.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"funedit/internal/database"
	"funedit/internal/editmode"
	"funedit/internal/editor"
	"funedit/internal/funscript"
	"funedit/internal/persist"
	"funedit/internal/project"
	"funedit/internal/region"
	"funedit/internal/snapshot"
)

// ===== Projects =====

// CreateProject creates and opens a new empty project
func (a *App) CreateProject(name string) (*project.Project, error) {
	p := &project.Project{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := a.session.SelectProject(p); err != nil {
		return nil, err
	}
	if err := a.gateway.SaveProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenProject loads a stored project and rehydrates the session,
// overlaying any separately saved facets
func (a *App) OpenProject(id string) (*project.Project, error) {
	p, err := a.gateway.LoadProject(id)
	if err != nil {
		return nil, err
	}

	var notFound *persist.NotFoundError

	if chapters, err := a.gateway.LoadChapters(id); err == nil {
		p.Chapters = make(map[string]region.Chapter, len(chapters))
		for _, c := range chapters {
			p.Chapters[c.ID] = c
		}
	} else if !errors.As(err, &notFound) {
		return nil, err
	}

	if rois, err := a.gateway.LoadROIs(id); err == nil {
		p.ROIs = make(map[string]region.ROI, len(rois))
		for _, r := range rois {
			p.ROIs[r.ID] = r
		}
	} else if !errors.As(err, &notFound) {
		return nil, err
	}

	if actions, err := a.gateway.LoadActions(id); err == nil && p.Funscript != nil {
		p.Funscript.Actions = actions
	} else if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}

	if settings, err := a.gateway.LoadSettings(id); err == nil {
		p.Settings = settings
	} else if !errors.As(err, &notFound) {
		return nil, err
	}

	if err := a.session.SelectProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns all projects, most recently updated first
func (a *App) ListProjects() ([]*project.Project, error) {
	return a.gateway.LoadAllProjects()
}

// DeleteProject removes a project and all of its facets and events
func (a *App) DeleteProject(id string) error {
	return a.gateway.DeleteProject(id)
}

// ClearAllProjects wipes the store
func (a *App) ClearAllProjects() error {
	return a.gateway.Clear()
}

// SaveProject forces an immediate save of the open project and flushes
// pending facet writes
func (a *App) SaveProject() error {
	p := a.session.Project()
	if p == nil {
		return fmt.Errorf("no project selected")
	}
	if err := a.session.Flush(); err != nil {
		return err
	}
	return a.gateway.SaveProject(p)
}

// ResetProject abandons the open project
func (a *App) ResetProject() error {
	return a.session.Reset()
}

// GetProjectState returns the lifecycle state
func (a *App) GetProjectState() string {
	return string(a.session.State())
}

// SetError raises the dismissable error overlay
func (a *App) SetError(message string) {
	a.session.SetError(message)
}

// ClearError dismisses the error overlay
func (a *App) ClearError() {
	a.session.ClearError()
}

// ===== Media =====

// SelectVideo validates and attaches a video file to the project
func (a *App) SelectVideo(name string, size int64, mimeType string, path string) error {
	return a.session.SelectVideo(project.VideoFile{
		Name: name,
		Size: size,
		Type: mimeType,
		Path: path,
	})
}

// ServedVideoPath returns the path the asset server is allowed to serve
func (a *App) ServedVideoPath() string {
	return a.session.ServedVideoPath()
}

// ===== Funscript =====

// LoadFunscriptFromFile parses a funscript from disk and watches it
// for external edits
func (a *App) LoadFunscriptFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read funscript: %w", err)
	}
	if err := a.session.SelectFunscript(data, path); err != nil {
		return err
	}
	if a.scriptWatcher != nil {
		if err := a.scriptWatcher.Watch(path); err != nil {
			// Watching is best effort; the script is already loaded.
			a.session.SetError(fmt.Sprintf("cannot watch %s: %v", path, err))
		}
	}
	return nil
}

// LoadFunscriptData parses funscript JSON uploaded by the frontend
func (a *App) LoadFunscriptData(data string) error {
	return a.session.SelectFunscript([]byte(data), "")
}

// ReloadFunscriptFromDisk re-reads the watched script after an
// external edit, discarding in-memory actions
func (a *App) ReloadFunscriptFromDisk() error {
	path := a.session.ScriptPath()
	if path == "" {
		return fmt.Errorf("funscript was not loaded from a file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// The handle went stale; the UI re-prompts for the file.
		return &editor.ResourceError{Path: path, Err: err}
	}
	return a.session.SelectFunscript(data, path)
}

// ExportFunscript returns the script as funscript JSON without editor ids
func (a *App) ExportFunscript() (string, error) {
	data, err := a.session.ExportFunscript()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExportFunscriptToFile writes the exported script to path
func (a *App) ExportFunscriptToFile(path string) error {
	data, err := a.session.ExportFunscript()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ===== Playhead =====

// Seek moves the playhead, clamped to the media duration
func (a *App) Seek(seconds float64) {
	a.session.Seek(seconds)
}

// HandleTimeUpdate ingests a video element timeupdate tick
func (a *App) HandleTimeUpdate(seconds float64) {
	a.session.HandleTimeUpdate(seconds)
}

// HandleSeekStart marks a user scrub as in flight
func (a *App) HandleSeekStart() {
	a.session.HandleSeekStart()
}

// HandleSeekComplete closes the in-flight seek
func (a *App) HandleSeekComplete() {
	a.session.HandleSeekComplete()
}

// HandleDurationKnown records the media duration
func (a *App) HandleDurationKnown(seconds float64) {
	a.session.HandleDurationKnown(seconds)
}

// GetCurrentTime returns the playhead position in seconds
func (a *App) GetCurrentTime() float64 {
	return a.session.CurrentTime()
}

// GetDuration returns the media duration in seconds
func (a *App) GetDuration() float64 {
	return a.session.Duration()
}

// ===== Edit modes =====

// SwitchMode moves the edit mode machine
func (a *App) SwitchMode(mode string) error {
	return a.session.SwitchMode(editmode.Mode(mode))
}

// GetCurrentMode returns the edit mode
func (a *App) GetCurrentMode() string {
	return string(a.session.Mode())
}

// ===== Actions =====

// GetActions returns the track's actions in time order
func (a *App) GetActions() []funscript.Action {
	return a.session.Actions()
}

// GetSelectedActionIDs returns the selected action ids
func (a *App) GetSelectedActionIDs() []string {
	return a.session.SelectedActionIDs()
}

// SelectAction selects an action and seeks the playhead to it
func (a *App) SelectAction(id string) bool {
	return a.session.SelectAction(id)
}

// ToggleAction toggles an action in the multi-selection
func (a *App) ToggleAction(id string) bool {
	return a.session.ToggleAction(id)
}

// ClearActionSelection drops the selection
func (a *App) ClearActionSelection() {
	a.session.ClearActionSelection()
}

// SetCurrentActionIndex moves the action cursor, bounds-checked
func (a *App) SetCurrentActionIndex(idx int) bool {
	return a.session.SetCurrentActionIndex(idx)
}

// MoveAction changes an action's time and position
func (a *App) MoveAction(id string, at int64, pos int) (bool, error) {
	return a.session.MoveAction(id, at, pos)
}

// InsertAction creates a new action
func (a *App) InsertAction(at int64, pos int) (funscript.Action, error) {
	return a.session.InsertAction(at, pos)
}

// ===== Chapters =====

// GetChapters returns all chapters sorted by start time
func (a *App) GetChapters() []region.Chapter {
	return a.session.Chapters()
}

// AddChapter validates and stores a chapter
func (a *App) AddChapter(c region.Chapter) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Color == "" {
		c.Color = region.ColorForIndex(len(a.session.Chapters()))
	}
	return a.session.AddChapter(c)
}

// UpdateChapter replaces a chapter; unknown ids are a no-op
func (a *App) UpdateChapter(c region.Chapter) (bool, error) {
	return a.session.UpdateChapter(c)
}

// RemoveChapter deletes a chapter; unknown ids are a no-op
func (a *App) RemoveChapter(id string) bool {
	return a.session.RemoveChapter(id)
}

// SelectChapter selects a chapter and returns the graph window it
// implies; empty id deselects
func (a *App) SelectChapter(id string) region.Window {
	return a.session.SelectChapter(id)
}

// ===== Regions of interest =====

// GetROIs returns all regions of interest
func (a *App) GetROIs() []region.ROI {
	return a.session.ROIs()
}

// AddROI validates and stores a region of interest
func (a *App) AddROI(r region.ROI) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return a.session.AddROI(r)
}

// UpdateROI replaces a region; unknown ids are a no-op
func (a *App) UpdateROI(r region.ROI) (bool, error) {
	return a.session.UpdateROI(r)
}

// RemoveROI deletes a region; unknown ids are a no-op
func (a *App) RemoveROI(id string) bool {
	return a.session.RemoveROI(id)
}

// SelectROI selects a region without moving the playhead
func (a *App) SelectROI(id string) {
	a.session.SelectROI(id)
}

// FocusROI selects a region and seeks to its start
func (a *App) FocusROI(id string) bool {
	return a.session.FocusROI(id)
}

// ===== Settings =====

// UpdateSettings stores playback settings for the open project
func (a *App) UpdateSettings(settings project.Settings) error {
	return a.session.UpdateSettings(settings)
}

// ===== Snapshots =====

// CreateSnapshot stores a point-in-time copy of the open project
func (a *App) CreateSnapshot(label string) (*snapshot.Snapshot, error) {
	p := a.session.Project()
	if p == nil {
		return nil, fmt.Errorf("no project selected")
	}
	// Capture what the components hold, not a stale project blob.
	p.Chapters = make(map[string]region.Chapter)
	for _, c := range a.session.Chapters() {
		p.Chapters[c.ID] = c
	}
	p.ROIs = make(map[string]region.ROI)
	for _, r := range a.session.ROIs() {
		p.ROIs[r.ID] = r
	}
	if p.Funscript != nil {
		p.Funscript.Actions = a.session.Actions()
	}
	return a.snapshots.Save(p, label)
}

// ListSnapshots lists the open project's snapshots, newest first
func (a *App) ListSnapshots() ([]snapshot.Snapshot, error) {
	p := a.session.Project()
	if p == nil {
		return nil, fmt.Errorf("no project selected")
	}
	return a.snapshots.List(p.ID)
}

// RestoreSnapshot replaces the session state with a stored snapshot
func (a *App) RestoreSnapshot(snapshotID string) error {
	p := a.session.Project()
	if p == nil {
		return fmt.Errorf("no project selected")
	}
	restored, err := a.snapshots.Load(p.ID, snapshotID)
	if err != nil {
		return err
	}
	if err := a.session.Reset(); err != nil {
		return err
	}
	if err := a.session.SelectProject(restored); err != nil {
		return err
	}
	return a.gateway.SaveProject(restored)
}

// DeleteSnapshot removes a stored snapshot
func (a *App) DeleteSnapshot(snapshotID string) error {
	p := a.session.Project()
	if p == nil {
		return fmt.Errorf("no project selected")
	}
	return a.snapshots.Delete(p.ID, snapshotID)
}

// ===== Event log =====

// GetProjectEvents returns the audit trail, newest first
func (a *App) GetProjectEvents(limit int) ([]*database.EventRecord, error) {
	p := a.session.Project()
	if p == nil {
		return nil, fmt.Errorf("no project selected")
	}
	return a.gateway.Events(p.ID, limit)
}

// ===== Window =====

// ToggleFullscreen toggles native fullscreen for video playback
func (a *App) ToggleFullscreen() {
	ToggleNativeFullscreen()
}

// IsFullscreen reports whether the window is fullscreen
func (a *App) IsFullscreen() bool {
	return IsNativeFullscreen()
}
