package timesource

import (
	"testing"
	"time"
)

type fakePlayer struct {
	seeks []float64
}

func (p *fakePlayer) Seek(seconds float64) {
	p.seeks = append(p.seeks, seconds)
}

func TestSeek_ClampsToDuration(t *testing.T) {
	player := &fakePlayer{}
	ts := New(player)
	ts.HandleDurationKnown(100)

	ts.Seek(150)
	if ts.CurrentTime() != 100 {
		t.Errorf("Expected clamp to 100, got %v", ts.CurrentTime())
	}

	ts.Seek(-5)
	if ts.CurrentTime() != 0 {
		t.Errorf("Expected clamp to 0, got %v", ts.CurrentTime())
	}

	if len(player.seeks) != 2 || player.seeks[0] != 100 || player.seeks[1] != 0 {
		t.Errorf("Unexpected player seeks: %v", player.seeks)
	}
}

func TestEchoSuppression_WhileSeeking(t *testing.T) {
	player := &fakePlayer{}
	ts := New(player)
	ts.HandleDurationKnown(100)

	var updates []float64
	ts.SubscribeTime(func(s float64) { updates = append(updates, s) })

	ts.Seek(42)
	// The player echoes a time-update for the programmatic seek before
	// reporting seek completion. It must be dropped.
	ts.HandleTimeUpdate(42)

	if len(updates) != 1 || updates[0] != 42 {
		t.Errorf("Expected exactly the seek notification, got %v", updates)
	}
	if len(player.seeks) != 1 {
		t.Errorf("Echo re-triggered a seek: %v", player.seeks)
	}
}

func TestEchoSuppression_GraceWindow(t *testing.T) {
	player := &fakePlayer{}
	ts := New(player)
	ts.HandleDurationKnown(100)

	base := time.Now()
	now := base
	ts.now = func() time.Time { return now }

	var updates []float64
	ts.SubscribeTime(func(s float64) { updates = append(updates, s) })

	ts.Seek(42)
	ts.HandleSeekComplete()

	// Duplicate echo just after completion is still absorbed.
	ts.HandleTimeUpdate(42)
	if len(updates) != 1 {
		t.Fatalf("Echo inside grace window leaked: %v", updates)
	}

	// A different time inside the window is a genuine update.
	ts.HandleTimeUpdate(43)
	if len(updates) != 2 || updates[1] != 43 {
		t.Fatalf("Genuine update was dropped: %v", updates)
	}

	// After the grace window even the target value flows again.
	now = base.Add(time.Second)
	ts.HandleTimeUpdate(42)
	if len(updates) != 3 {
		t.Fatalf("Update after grace window was dropped: %v", updates)
	}
}

func TestHandleSeekStart_DropsUpdatesUntilComplete(t *testing.T) {
	ts := New(&fakePlayer{})
	ts.HandleDurationKnown(100)

	var updates []float64
	ts.SubscribeTime(func(s float64) { updates = append(updates, s) })

	ts.HandleSeekStart()
	ts.HandleTimeUpdate(10)
	ts.HandleTimeUpdate(11)
	ts.HandleSeekComplete()
	ts.HandleTimeUpdate(12)

	if len(updates) != 1 || updates[0] != 12 {
		t.Errorf("Expected only post-seek update, got %v", updates)
	}
}

func TestDurationSubscription(t *testing.T) {
	ts := New(&fakePlayer{})

	var got float64
	ts.SubscribeDuration(func(s float64) { got = s })

	ts.HandleDurationKnown(250)
	if got != 250 || ts.Duration() != 250 {
		t.Errorf("Duration not propagated: got %v / %v", got, ts.Duration())
	}
}
