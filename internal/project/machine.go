// internal/project/machine.go
package project

import (
	"fmt"

	"funedit/internal/funscript"
)

// State identifies where the project lifecycle machine is.
type State string

const (
	StateSelectProject   State = "select_project"
	StateSelectVideo     State = "select_video"
	StateSelectFunscript State = "select_funscript"
	StateReady           State = "ready"
)

// Event is a closed union of lifecycle intents. Each event carries only
// the fields it needs.
type Event interface{ isEvent() }

// SelectProjectEvent opens (or creates) a project.
type SelectProjectEvent struct {
	Project *Project
}

// SelectVideoEvent attaches a video to the current project.
type SelectVideoEvent struct {
	Video VideoFile
}

// SelectFunscriptEvent attaches a parsed funscript to the current
// project.
type SelectFunscriptEvent struct {
	Script *funscript.Funscript
}

// ResetEvent abandons the current project from any state.
type ResetEvent struct{}

// SetErrorEvent sets the out-of-band error overlay without moving the
// machine.
type SetErrorEvent struct {
	Message string
}

// ClearErrorEvent clears the error overlay.
type ClearErrorEvent struct{}

func (SelectProjectEvent) isEvent()   {}
func (SelectVideoEvent) isEvent()     {}
func (SelectFunscriptEvent) isEvent() {}
func (ResetEvent) isEvent()           {}
func (SetErrorEvent) isEvent()        {}
func (ClearErrorEvent) isEvent()      {}

// Effect is a closed union of commands the machine asks its owner to
// run. The machine itself never touches storage or media resources.
type Effect interface{ isEffect() }

// SaveEffect asks the owner to persist the project (ready entry action).
type SaveEffect struct {
	Project *Project
}

// ReleaseMediaEffect asks the owner to release the held video resource
// before the machine forgets it.
type ReleaseMediaEffect struct{}

func (SaveEffect) isEffect()         {}
func (ReleaseMediaEffect) isEffect() {}

// Machine sequences project creation, video selection, funscript
// selection and readiness. The check step is a pure decision evaluated
// inline on entry, so callers only ever observe the four resting
// states. Not safe for concurrent use.
type Machine struct {
	state   State
	current *Project
	errMsg  string
}

// NewMachine creates a machine waiting for a project.
func NewMachine() *Machine {
	return &Machine{state: StateSelectProject}
}

// State returns the current resting state.
func (m *Machine) State() State {
	return m.state
}

// Project returns the project being edited, nil before selection.
func (m *Machine) Project() *Project {
	return m.current
}

// Err returns the error overlay, "" if none. The overlay never blocks
// transitions.
func (m *Machine) Err() string {
	return m.errMsg
}

// Handle runs one event to completion and returns the effects the owner
// must execute. Events that make no sense in the current state return an
// error and leave the machine untouched.
func (m *Machine) Handle(ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case SelectProjectEvent:
		if ev.Project == nil {
			return nil, fmt.Errorf("select project: project is required")
		}
		m.current = ev.Project
		return m.checkProject(), nil

	case SelectVideoEvent:
		if m.current == nil {
			return nil, fmt.Errorf("select video: no project selected")
		}
		v := ev.Video
		m.current.VideoFile = &v
		return m.checkProject(), nil

	case SelectFunscriptEvent:
		if m.current == nil {
			return nil, fmt.Errorf("select funscript: no project selected")
		}
		if ev.Script == nil {
			return nil, fmt.Errorf("select funscript: script is required")
		}
		m.current.Funscript = ev.Script
		return m.checkProject(), nil

	case ResetEvent:
		effects := []Effect{}
		if m.current.HasVideo() {
			effects = append(effects, ReleaseMediaEffect{})
		}
		m.current = nil
		m.errMsg = ""
		m.state = StateSelectProject
		return effects, nil

	case SetErrorEvent:
		m.errMsg = ev.Message
		return nil, nil

	case ClearErrorEvent:
		m.errMsg = ""
		return nil, nil

	default:
		return nil, fmt.Errorf("unhandled lifecycle event %T", ev)
	}
}

// checkProject is the pure decision state: route to whichever resource
// is still missing, defaulting to the video, or to ready when both are
// present. Entering ready emits the save entry action.
func (m *Machine) checkProject() []Effect {
	switch {
	case !m.current.HasVideo():
		m.state = StateSelectVideo
		return nil
	case !m.current.HasFunscript():
		m.state = StateSelectFunscript
		return nil
	default:
		m.state = StateReady
		return []Effect{SaveEffect{Project: m.current}}
	}
}
