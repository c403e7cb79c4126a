package eventhub

import (
	"context"
)

// Broadcaster delivers events to the connected frontend
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// EventHub is the single dispatch point for frontend events
type EventHub struct {
	ctx         context.Context
	broadcaster Broadcaster
}

// New creates an EventHub
func New(ctx context.Context) *EventHub {
	return &EventHub{ctx: ctx}
}

// SetBroadcaster installs the websocket broadcaster
func (h *EventHub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

func (h *EventHub) emit(eventName string, payload interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastEvent(eventName, payload)
	}
}

// Emit sends an arbitrary event
func (h *EventHub) Emit(eventName string, payload interface{}) {
	h.emit(eventName, payload)
}

// Playhead events
type TimeChangedEvent struct {
	Seconds float64 `json:"seconds"`
}

func (h *EventHub) EmitTimeChanged(event TimeChangedEvent) {
	h.emit("time:changed", event)
}

type DurationKnownEvent struct {
	Seconds float64 `json:"seconds"`
}

func (h *EventHub) EmitDurationKnown(event DurationKnownEvent) {
	h.emit("time:duration", event)
}

// SeekRequestEvent asks the frontend player to jump the video element
type SeekRequestEvent struct {
	Seconds float64 `json:"seconds"`
}

func (h *EventHub) EmitSeekRequest(event SeekRequestEvent) {
	h.emit("player:seek", event)
}

// Mode events
type ModeChangedEvent struct {
	Previous string `json:"previous"`
	Mode     string `json:"mode"`
}

func (h *EventHub) EmitModeChanged(event ModeChangedEvent) {
	h.emit("mode:changed", event)
}

// Project lifecycle events
type ProjectStateEvent struct {
	State     string `json:"state"`
	ProjectID string `json:"projectId,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *EventHub) EmitProjectState(event ProjectStateEvent) {
	h.emit("project:state", event)
}

type ProjectSavedEvent struct {
	ProjectID string `json:"projectId"`
}

func (h *EventHub) EmitProjectSaved(event ProjectSavedEvent) {
	h.emit("project:saved", event)
}

// Active region events, published only on transitions
type ActiveChapterEvent struct {
	ChapterID string `json:"chapterId"` // empty when leaving all chapters
	Title     string `json:"title,omitempty"`
}

func (h *EventHub) EmitActiveChapter(event ActiveChapterEvent) {
	h.emit("chapter:active", event)
}

type ActiveROIEvent struct {
	ROIID  string `json:"roiId"` // empty when no region applies
	Zoomed bool   `json:"zoomed,omitempty"`
}

func (h *EventHub) EmitActiveROI(event ActiveROIEvent) {
	h.emit("roi:active", event)
}

// SelectionWindowEvent narrows the timeline graph to a chapter
type SelectionWindowEvent struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (h *EventHub) EmitSelectionWindow(event SelectionWindowEvent) {
	h.emit("graph:window", event)
}

// Script events
type ScriptLoadedEvent struct {
	Actions  int `json:"actions"`
	Chapters int `json:"chapters"`
}

func (h *EventHub) EmitScriptLoaded(event ScriptLoadedEvent) {
	h.emit("script:loaded", event)
}

// ScriptFileChangedEvent reports an external edit on disk
type ScriptFileChangedEvent struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed,omitempty"`
}

func (h *EventHub) EmitScriptFileChanged(event ScriptFileChangedEvent) {
	h.emit("script:file-changed", event)
}

// Error overlay
func (h *EventHub) EmitError(message string) {
	h.emit("app:error", map[string]interface{}{
		"message": message,
	})
}
