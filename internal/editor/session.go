// internal/editor/session.go
// Package editor owns one editing session: the playhead, the action
// track, chapters and regions of interest, the edit mode machine and
// the project lifecycle. All UI intents enter through Session methods,
// which run to completion under a single mutex.
package editor

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"funedit/internal/editmode"
	"funedit/internal/eventhub"
	"funedit/internal/funscript"
	"funedit/internal/persist"
	"funedit/internal/project"
	"funedit/internal/region"
	"funedit/internal/timesource"
	"funedit/internal/track"
)

// Options tunes a session; zero values select the defaults.
type Options struct {
	WriteDelay   time.Duration // debounced-writer flush delay
	MaxVideoSize int64         // attached-video size cap in bytes
}

// Session is the orchestrator for one open project.
type Session struct {
	mu           sync.Mutex
	hub          *eventhub.EventHub
	gateway      persist.Gateway
	writer       *persist.DebouncedWriter
	maxVideoSize int64

	clock     *timesource.TimeSource
	track     *track.Track
	chapters  *region.ChapterSet
	rois      *region.ROISet
	modes     *editmode.Controller
	lifecycle *project.Machine
	media     *MediaRegistry

	activeChapter string
	activeROI     string
	scriptPath    string
}

// hubPlayer forwards seek commands to the frontend video element.
type hubPlayer struct {
	hub *eventhub.EventHub
}

func (p *hubPlayer) Seek(seconds float64) {
	p.hub.EmitSeekRequest(eventhub.SeekRequestEvent{Seconds: seconds})
}

// NewSession builds a session over the given gateway and hub.
func NewSession(gateway persist.Gateway, hub *eventhub.EventHub, opts Options) *Session {
	if opts.WriteDelay <= 0 {
		opts.WriteDelay = persist.DefaultWriteDelay
	}
	if opts.MaxVideoSize <= 0 {
		opts.MaxVideoSize = DefaultMaxVideoSize
	}
	s := &Session{
		hub:          hub,
		gateway:      gateway,
		writer:       persist.NewDebouncedWriter(gateway, opts.WriteDelay),
		maxVideoSize: opts.MaxVideoSize,
		track:        track.New(),
		chapters:     region.NewChapterSet(),
		rois:         region.NewROISet(),
		modes:        editmode.New(),
		lifecycle:    project.NewMachine(),
		media:        NewMediaRegistry(),
	}
	s.clock = timesource.New(&hubPlayer{hub: hub})
	s.writer.OnError(func(projectID string, err error) {
		hub.EmitError(fmt.Sprintf("auto-save failed: %v", err))
	})
	return s
}

// Close flushes pending writes.
func (s *Session) Close() error {
	return s.writer.Close()
}

// Flush writes any pending facet updates immediately.
func (s *Session) Flush() error {
	p := s.Project()
	if p == nil {
		return nil
	}
	return s.writer.Flush(p.ID)
}

// ===== Lifecycle =====

// Project returns the project under edit, nil before selection.
func (s *Session) Project() *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.Project()
}

// State returns the lifecycle state.
func (s *Session) State() project.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.State()
}

// Mode returns the edit mode.
func (s *Session) Mode() editmode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modes.Mode()
}

// SelectProject opens a project and routes through the check step.
func (s *Session) SelectProject(p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	effects, err := s.lifecycle.Handle(project.SelectProjectEvent{Project: p})
	if err != nil {
		return err
	}

	// Rehydrate components from an already-populated project.
	if p.Funscript != nil {
		if err := s.loadScriptLocked(p.Funscript); err != nil {
			return err
		}
	}
	if len(p.Chapters) > 0 {
		chapters := make([]region.Chapter, 0, len(p.Chapters))
		for _, c := range p.Chapters {
			chapters = append(chapters, c)
		}
		if err := s.chapters.Replace(chapters); err != nil {
			return err
		}
	}
	if len(p.ROIs) > 0 {
		rois := make([]region.ROI, 0, len(p.ROIs))
		for _, r := range p.ROIs {
			rois = append(rois, r)
		}
		if err := s.rois.Replace(rois); err != nil {
			return err
		}
	}
	if p.VideoFile != nil {
		s.attachVideoLocked(*p.VideoFile)
	}

	s.runEffects(effects)
	s.publishStateLocked()
	return nil
}

// SelectVideo validates and attaches a video file.
func (s *Session) SelectVideo(v project.VideoFile) error {
	if err := ValidateVideo(v, s.maxVideoSize); err != nil {
		s.SetError(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	effects, err := s.lifecycle.Handle(project.SelectVideoEvent{Video: v})
	if err != nil {
		return err
	}
	s.attachVideoLocked(v)
	s.runEffects(effects)
	s.publishStateLocked()
	return nil
}

// SelectFunscript parses raw funscript JSON and attaches it. path may
// be "" when the script came from an upload rather than disk.
func (s *Session) SelectFunscript(data []byte, path string) error {
	fs, err := funscript.Parse(data)
	if err != nil {
		s.SetError(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	effects, err := s.lifecycle.Handle(project.SelectFunscriptEvent{Script: fs})
	if err != nil {
		return err
	}
	if err := s.loadScriptLocked(fs); err != nil {
		return err
	}
	s.scriptPath = path

	s.runEffects(effects)
	s.publishStateLocked()
	s.hub.EmitScriptLoaded(eventhub.ScriptLoadedEvent{
		Actions:  len(fs.Actions),
		Chapters: s.chapters.Len(),
	})
	s.queueActionsLocked()
	return nil
}

// Reset abandons the project and returns every component to its
// initial state.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	effects, err := s.lifecycle.Handle(project.ResetEvent{})
	if err != nil {
		return err
	}
	s.runEffects(effects)

	s.track = track.New()
	s.chapters = region.NewChapterSet()
	s.rois = region.NewROISet()
	s.modes.Reset()
	s.activeChapter = ""
	s.activeROI = ""
	s.scriptPath = ""

	s.publishStateLocked()
	return nil
}

// SetError raises the dismissable error overlay.
func (s *Session) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lifecycle.Handle(project.SetErrorEvent{Message: message})
	s.publishStateLocked()
}

// ClearError dismisses the error overlay.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lifecycle.Handle(project.ClearErrorEvent{})
	s.publishStateLocked()
}

// ServedVideoPath returns the path the asset server may serve, "" if
// no video is attached.
func (s *Session) ServedVideoPath() string {
	return s.media.Current()
}

// ScriptPath returns the on-disk origin of the loaded funscript, "" if
// it was not loaded from a file.
func (s *Session) ScriptPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scriptPath
}

// HandleScriptFileChanged reports an external edit of the loaded
// script. In-memory edits are never clobbered; the UI decides.
func (s *Session) HandleScriptFileChanged(path string, removed bool) {
	s.hub.EmitScriptFileChanged(eventhub.ScriptFileChangedEvent{
		Path:    path,
		Removed: removed,
	})
}

// ===== Playhead =====

// CurrentTime returns the playhead position in seconds.
func (s *Session) CurrentTime() float64 {
	return s.clock.CurrentTime()
}

// Duration returns the media duration in seconds, 0 until known.
func (s *Session) Duration() float64 {
	return s.clock.Duration()
}

// Seek moves the playhead, clamped to the media duration.
func (s *Session) Seek(seconds float64) {
	s.clock.Seek(seconds)
	s.refreshActive(s.clock.CurrentTime())
}

// HandleTimeUpdate ingests a player time tick. Echoes of an in-flight
// seek are dropped inside the time source.
func (s *Session) HandleTimeUpdate(seconds float64) {
	before := s.clock.CurrentTime()
	s.clock.HandleTimeUpdate(seconds)
	after := s.clock.CurrentTime()
	if after != before {
		s.hub.EmitTimeChanged(eventhub.TimeChangedEvent{Seconds: after})
		s.refreshActive(after)
	}
}

// HandleSeekStart marks a user-initiated scrub.
func (s *Session) HandleSeekStart() {
	s.clock.HandleSeekStart()
}

// HandleSeekComplete closes the in-flight seek and opens the echo
// grace window.
func (s *Session) HandleSeekComplete() {
	s.clock.HandleSeekComplete()
	s.refreshActive(s.clock.CurrentTime())
}

// HandleDurationKnown records the media duration once the player
// reports it.
func (s *Session) HandleDurationKnown(seconds float64) {
	s.clock.HandleDurationKnown(seconds)
	s.hub.EmitDurationKnown(eventhub.DurationKnownEvent{Seconds: seconds})
}

// refreshActive recomputes the active chapter and region of interest,
// publishing only transitions.
func (s *Session) refreshActive(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshActiveLocked(seconds)
}

func (s *Session) refreshActiveLocked(seconds float64) {
	chapterID := ""
	var chapterTitle string
	if c, ok := s.chapters.ActiveAt(seconds); ok {
		chapterID = c.ID
		chapterTitle = c.Title
	}
	if chapterID != s.activeChapter {
		s.activeChapter = chapterID
		s.hub.EmitActiveChapter(eventhub.ActiveChapterEvent{
			ChapterID: chapterID,
			Title:     chapterTitle,
		})
	}

	roiID := ""
	var zoomed bool
	if r, ok := s.rois.ActiveAt(seconds); ok {
		roiID = r.ID
		zoomed = r.Zoomed
	}
	if s.rois.SetActive(roiID) || roiID != s.activeROI {
		s.activeROI = roiID
		s.hub.EmitActiveROI(eventhub.ActiveROIEvent{ROIID: roiID, Zoomed: zoomed})
	}
}

// ===== Edit modes =====

// SwitchMode moves the edit mode machine.
func (s *Session) SwitchMode(m editmode.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.modes.Mode()
	if err := s.modes.SwitchTo(m); err != nil {
		return err
	}
	s.hub.EmitModeChanged(eventhub.ModeChangedEvent{
		Previous: string(prev),
		Mode:     string(m),
	})
	return nil
}

// ===== Actions =====

// Actions returns the track's actions in time order.
func (s *Session) Actions() []funscript.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.ActionsByTime()
}

// SelectedActionIDs returns the selected action ids.
func (s *Session) SelectedActionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.SelectedIDs()
}

// SelectAction selects an action and seeks the playhead to it.
func (s *Session) SelectAction(id string) bool {
	s.mu.Lock()
	action, ok := s.track.Select(id)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.clock.Seek(float64(action.At) / 1000.0)
	s.refreshActive(s.clock.CurrentTime())
	return true
}

// ToggleAction toggles an action in the multi-selection without moving
// the playhead.
func (s *Session) ToggleAction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.Toggle(id)
}

// ClearActionSelection drops the selection.
func (s *Session) ClearActionSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track.ClearSelection()
}

// SetCurrentActionIndex moves the cursor, bounds-checked.
func (s *Session) SetCurrentActionIndex(idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.SetCurrentIndex(idx)
}

// MoveAction changes an action's time and position and queues a
// debounced save. Unknown ids are a silent no-op.
func (s *Session) MoveAction(id string, at int64, pos int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := s.track.Move(id, at, pos)
	if err != nil {
		return false, err
	}
	if moved {
		s.queueActionsLocked()
	}
	return moved, nil
}

// InsertAction creates an action and queues a debounced save.
func (s *Session) InsertAction(at int64, pos int) (funscript.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, err := s.track.Insert(at, pos)
	if err != nil {
		return funscript.Action{}, err
	}
	s.queueActionsLocked()
	return action, nil
}

// ExportFunscript serializes the current script without editor ids.
func (s *Session) ExportFunscript() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.track.Loaded() {
		return nil, fmt.Errorf("no funscript loaded")
	}
	return funscript.Export(s.track.Script())
}

// ===== Chapters =====

// Chapters returns all chapters sorted by start time.
func (s *Session) Chapters() []region.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters.All()
}

// AddChapter validates, stores and persists a chapter.
func (s *Session) AddChapter(c region.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chapters.Add(c); err != nil {
		return err
	}
	s.queueChaptersLocked()
	s.appendEventLocked("chapter:added", c)
	s.refreshActiveLocked(s.clock.CurrentTime())
	return nil
}

// UpdateChapter replaces a chapter; unknown ids are a silent no-op.
func (s *Session) UpdateChapter(c region.Chapter) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.chapters.Update(c)
	if err != nil {
		return false, err
	}
	if updated {
		s.queueChaptersLocked()
		s.appendEventLocked("chapter:updated", c)
		s.refreshActiveLocked(s.clock.CurrentTime())
	}
	return updated, nil
}

// RemoveChapter deletes a chapter; unknown ids are a silent no-op.
func (s *Session) RemoveChapter(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.chapters.Remove(id) {
		return false
	}
	s.queueChaptersLocked()
	s.appendEventLocked("chapter:removed", map[string]string{"id": id})
	s.refreshActiveLocked(s.clock.CurrentTime())
	return true
}

// SelectChapter selects a chapter and publishes the graph window it
// implies. Empty or unknown ids deselect and reset the window.
func (s *Session) SelectChapter(id string) region.Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.chapters.Select(id, s.clock.Duration())
	s.hub.EmitSelectionWindow(eventhub.SelectionWindowEvent{
		Start: window.Start,
		End:   window.End,
	})
	return window
}

// ===== Regions of interest =====

// ROIs returns all regions of interest.
func (s *Session) ROIs() []region.ROI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rois.All()
}

// AddROI validates, stores and persists a region of interest.
func (s *Session) AddROI(r region.ROI) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rois.Add(r); err != nil {
		return err
	}
	s.queueROIsLocked()
	s.appendEventLocked("roi:added", r)
	s.refreshActiveLocked(s.clock.CurrentTime())
	return nil
}

// UpdateROI replaces a region; unknown ids are a silent no-op.
func (s *Session) UpdateROI(r region.ROI) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.rois.Update(r)
	if err != nil {
		return false, err
	}
	if updated {
		s.queueROIsLocked()
		s.appendEventLocked("roi:updated", r)
		s.refreshActiveLocked(s.clock.CurrentTime())
	}
	return updated, nil
}

// RemoveROI deletes a region; unknown ids are a silent no-op.
func (s *Session) RemoveROI(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rois.Remove(id) {
		return false
	}
	s.queueROIsLocked()
	s.appendEventLocked("roi:removed", map[string]string{"id": id})
	s.refreshActiveLocked(s.clock.CurrentTime())
	return true
}

// SelectROI selects a region without moving the playhead.
func (s *Session) SelectROI(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rois.Select(id)
}

// FocusROI selects a region, marks it active and seeks to its start.
func (s *Session) FocusROI(id string) bool {
	s.mu.Lock()
	r, ok := s.rois.SelectAndFocus(id)
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.clock.Seek(float64(r.TimeStart) / 1000.0)
	s.refreshActive(s.clock.CurrentTime())
	return true
}

// ===== Settings =====

// UpdateSettings stores the settings and queues a debounced save.
func (s *Session) UpdateSettings(settings project.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.lifecycle.Project()
	if p == nil {
		return fmt.Errorf("no project selected")
	}
	cp := settings
	p.Settings = &cp
	s.writer.Queue(p.ID, &persist.BatchUpdate{Settings: &cp})
	return nil
}

// ===== internals =====

// loadScriptLocked loads the script into the track and derives
// chapters from its metadata when none exist yet.
func (s *Session) loadScriptLocked(fs *funscript.Funscript) error {
	if err := s.track.Load(fs); err != nil {
		return err
	}

	if s.chapters.Len() == 0 && fs.Metadata != nil {
		for i, mc := range fs.Metadata.Chapters {
			c := region.Chapter{
				ID:        fmt.Sprintf("ch-%04d", i+1),
				StartTime: float64(mc.StartTime),
				EndTime:   float64(mc.EndTime),
				Title:     mc.Name,
				Color:     region.ColorForIndex(i),
			}
			if err := s.chapters.Add(c); err != nil {
				// Malformed metadata chapters are skipped, not fatal.
				continue
			}
		}
	}

	if fs.Metadata != nil && fs.Metadata.Duration > 0 && s.clock.Duration() == 0 {
		s.clock.HandleDurationKnown(fs.Metadata.Duration)
	}
	return nil
}

func (s *Session) attachVideoLocked(v project.VideoFile) {
	if v.Path != "" {
		s.media.Serve(v.Path)
	}
	s.modes.SetVideoReady(true)
}

// runEffects executes lifecycle effects on the caller's goroutine.
func (s *Session) runEffects(effects []project.Effect) {
	for _, effect := range effects {
		switch effect := effect.(type) {
		case project.SaveEffect:
			if err := s.gateway.SaveProject(effect.Project); err != nil {
				s.hub.EmitError(fmt.Sprintf("save failed: %v", err))
				continue
			}
			s.hub.EmitProjectSaved(eventhub.ProjectSavedEvent{ProjectID: effect.Project.ID})
			s.appendEventLocked("project:saved", map[string]string{"id": effect.Project.ID})
		case project.ReleaseMediaEffect:
			s.media.Release()
		}
	}

	// Readiness follows what the machine now holds.
	if p := s.lifecycle.Project(); p != nil {
		s.modes.SetVideoReady(p.HasVideo())
		s.modes.SetFunscriptReady(p.HasFunscript())
	} else {
		s.modes.Reset()
	}
}

func (s *Session) publishStateLocked() {
	ev := eventhub.ProjectStateEvent{
		State: string(s.lifecycle.State()),
		Error: s.lifecycle.Err(),
	}
	if p := s.lifecycle.Project(); p != nil {
		ev.ProjectID = p.ID
	}
	s.hub.EmitProjectState(ev)
}

func (s *Session) queueActionsLocked() {
	p := s.lifecycle.Project()
	if p == nil {
		return
	}
	// The writer flushes on its own goroutine, so it must not see the
	// track's live slice.
	actions := append([]funscript.Action(nil), s.track.Actions()...)
	s.writer.Queue(p.ID, &persist.BatchUpdate{Actions: actions})
}

func (s *Session) queueChaptersLocked() {
	p := s.lifecycle.Project()
	if p == nil {
		return
	}
	s.writer.Queue(p.ID, &persist.BatchUpdate{Chapters: s.chapters.All()})
}

func (s *Session) queueROIsLocked() {
	p := s.lifecycle.Project()
	if p == nil {
		return
	}
	s.writer.Queue(p.ID, &persist.BatchUpdate{ROIs: s.rois.All()})
}

// appendEventLocked writes an audit row; failures are not fatal.
func (s *Session) appendEventLocked(eventType string, payload interface{}) {
	p := s.lifecycle.Project()
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.gateway.AppendEvent(p.ID, eventType, string(body))
}
