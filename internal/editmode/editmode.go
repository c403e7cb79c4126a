// internal/editmode/editmode.go
package editmode

import "fmt"

// Mode identifies which editing surface is live.
type Mode string

const (
	// ModeLoading is the pre-editing state while video and funscript are
	// still being gathered. It is left automatically, never by a user
	// intent.
	ModeLoading Mode = "loading"

	ModePlaying        Mode = "playing"
	ModeActionEditing  Mode = "action_editing"
	ModeChapterEditing Mode = "chapter_editing"
	ModeZoomEditing    Mode = "zoom_editing"
	ModeROIEditing     Mode = "roi_editing"
	ModeMotionEditing  Mode = "motion_editing"
)

// EditingModes lists every user-switchable mode. The transition graph
// over these is fully connected.
var EditingModes = []Mode{
	ModePlaying,
	ModeActionEditing,
	ModeChapterEditing,
	ModeZoomEditing,
	ModeROIEditing,
	ModeMotionEditing,
}

func isEditingMode(m Mode) bool {
	for _, mode := range EditingModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Controller is the edit-mode state machine. It starts in loading and
// enters playing automatically once both the video and the funscript
// are present; from then on any mode can switch to any other. Not safe
// for concurrent use.
type Controller struct {
	mode           Mode
	videoReady     bool
	funscriptReady bool
}

// New creates a controller in the loading state.
func New() *Controller {
	return &Controller{mode: ModeLoading}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetVideoReady records video availability and fires the guarded
// automatic transition into playing when both resources are present.
// Returns true if the mode changed.
func (c *Controller) SetVideoReady(ready bool) bool {
	c.videoReady = ready
	return c.maybeEnterEditing()
}

// SetFunscriptReady records funscript availability; see SetVideoReady.
func (c *Controller) SetFunscriptReady(ready bool) bool {
	c.funscriptReady = ready
	return c.maybeEnterEditing()
}

func (c *Controller) maybeEnterEditing() bool {
	if c.mode != ModeLoading || !c.videoReady || !c.funscriptReady {
		return false
	}
	c.mode = ModePlaying
	return true
}

// SwitchTo handles a user mode-switch intent. Every editing mode is
// reachable from every other; switching is rejected only while the
// machine is still loading or for an unknown mode.
func (c *Controller) SwitchTo(m Mode) error {
	if !isEditingMode(m) {
		return fmt.Errorf("unknown edit mode %q", m)
	}
	if c.mode == ModeLoading {
		return fmt.Errorf("cannot switch mode before video and funscript are loaded")
	}
	c.mode = m
	return nil
}

// Reset returns the machine to loading (project reset/unload).
func (c *Controller) Reset() {
	c.mode = ModeLoading
	c.videoReady = false
	c.funscriptReady = false
}
