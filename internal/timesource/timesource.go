// internal/timesource/timesource.go
package timesource

import (
	"math"
	"sync"
	"time"
)

// Player is the externally-owned video element, seen from the core. Seek
// commands flow out through it; time/duration notifications flow back in
// through the Handle* methods.
type Player interface {
	Seek(seconds float64)
}

// echoGrace is how long after a seek completes we keep absorbing
// duplicate time-update echoes for the seek target.
const echoGrace = 150 * time.Millisecond

// echoEpsilon is the tolerance when matching an echoed time update
// against the last seek target.
const echoEpsilon = 0.010

// TimeSource is the single authority for current playback time and total
// duration. Programmatic seeks suppress the player's echoed time-update
// for the same value so sliders and graphs don't feed back into
// themselves.
type TimeSource struct {
	mu         sync.Mutex
	player     Player
	current    float64
	duration   float64
	seeking    bool
	seekTarget float64
	graceUntil time.Time
	now        func() time.Time

	onTime     []func(seconds float64)
	onDuration []func(seconds float64)
}

// New creates a TimeSource driving the given player.
func New(player Player) *TimeSource {
	return &TimeSource{
		player: player,
		now:    time.Now,
	}
}

// SubscribeTime registers a callback for accepted time updates.
func (ts *TimeSource) SubscribeTime(fn func(seconds float64)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.onTime = append(ts.onTime, fn)
}

// SubscribeDuration registers a callback for duration changes.
func (ts *TimeSource) SubscribeDuration(fn func(seconds float64)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.onDuration = append(ts.onDuration, fn)
}

// CurrentTime returns the last accepted playback time in seconds.
func (ts *TimeSource) CurrentTime() float64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.current
}

// Duration returns the total duration in seconds, 0 if unknown.
func (ts *TimeSource) Duration() float64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.duration
}

// Seek moves playback to the given time, clamped to [0, duration]. The
// echo the player emits for this seek will be dropped.
func (ts *TimeSource) Seek(seconds float64) {
	ts.mu.Lock()
	target := seconds
	if target < 0 {
		target = 0
	}
	if ts.duration > 0 && target > ts.duration {
		target = ts.duration
	}
	ts.seeking = true
	ts.seekTarget = target
	ts.current = target
	player := ts.player
	subs := append([]func(float64){}, ts.onTime...)
	ts.mu.Unlock()

	if player != nil {
		player.Seek(target)
	}
	for _, fn := range subs {
		fn(target)
	}
}

// HandleTimeUpdate processes a time-update notification from the player.
// Updates arriving while a seek is in flight, or matching the seek target
// within the grace window, are dropped.
func (ts *TimeSource) HandleTimeUpdate(seconds float64) {
	ts.mu.Lock()
	if ts.seeking {
		ts.mu.Unlock()
		return
	}
	if ts.now().Before(ts.graceUntil) && math.Abs(seconds-ts.seekTarget) < echoEpsilon {
		ts.mu.Unlock()
		return
	}
	ts.current = seconds
	subs := append([]func(float64){}, ts.onTime...)
	ts.mu.Unlock()

	for _, fn := range subs {
		fn(seconds)
	}
}

// HandleSeekStart marks an externally-observed seek as in flight.
func (ts *TimeSource) HandleSeekStart() {
	ts.mu.Lock()
	ts.seeking = true
	ts.mu.Unlock()
}

// HandleSeekComplete clears the in-flight flag and opens a short grace
// window that still absorbs duplicate echoes of the seek target.
func (ts *TimeSource) HandleSeekComplete() {
	ts.mu.Lock()
	ts.seeking = false
	ts.graceUntil = ts.now().Add(echoGrace)
	ts.mu.Unlock()
}

// HandleDurationKnown records the duration reported by the player once
// metadata is loaded.
func (ts *TimeSource) HandleDurationKnown(seconds float64) {
	ts.mu.Lock()
	ts.duration = seconds
	subs := append([]func(float64){}, ts.onDuration...)
	ts.mu.Unlock()

	for _, fn := range subs {
		fn(seconds)
	}
}
