// internal/persist/debounce.go
package persist

import (
	"log"
	"sync"
	"time"
)

// DefaultWriteDelay is how long the writer waits after the last update
// before flushing to the gateway.
const DefaultWriteDelay = 1 * time.Second

// DebouncedWriter coalesces bursts of facet updates into a single
// batch write per project. A second timeline edit within the delay
// replaces the pending value for that facet and rearms the timer, so
// ten rapid moves cost one write.
type DebouncedWriter struct {
	mu      sync.Mutex
	gateway Gateway
	delay   time.Duration
	pending map[string]*BatchUpdate
	timers  map[string]*time.Timer
	closed  bool
	onError func(projectID string, err error)
}

func NewDebouncedWriter(gateway Gateway, delay time.Duration) *DebouncedWriter {
	if delay <= 0 {
		delay = DefaultWriteDelay
	}
	return &DebouncedWriter{
		gateway: gateway,
		delay:   delay,
		pending: make(map[string]*BatchUpdate),
		timers:  make(map[string]*time.Timer),
	}
}

// OnError installs a callback for background flush failures. Without
// one, failures are logged.
func (w *DebouncedWriter) OnError(fn func(projectID string, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Queue records a batch for the project and (re)arms its flush timer.
func (w *DebouncedWriter) Queue(projectID string, batch *BatchUpdate) {
	if batch == nil || batch.empty() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if pending, ok := w.pending[projectID]; ok {
		pending.merge(batch)
	} else {
		merged := &BatchUpdate{}
		merged.merge(batch)
		w.pending[projectID] = merged
	}

	if timer, ok := w.timers[projectID]; ok {
		timer.Reset(w.delay)
		return
	}
	w.timers[projectID] = time.AfterFunc(w.delay, func() {
		w.flush(projectID)
	})
}

// Flush writes any pending batch for the project immediately.
func (w *DebouncedWriter) Flush(projectID string) error {
	w.mu.Lock()
	batch := w.take(projectID)
	w.mu.Unlock()

	if batch == nil {
		return nil
	}
	return w.gateway.ApplyBatch(projectID, batch)
}

// FlushAll writes every pending batch. The first error is returned,
// remaining projects are still flushed.
func (w *DebouncedWriter) FlushAll() error {
	w.mu.Lock()
	batches := make(map[string]*BatchUpdate, len(w.pending))
	for id := range w.pending {
		batches[id] = w.take(id)
	}
	w.mu.Unlock()

	var firstErr error
	for id, batch := range batches {
		if err := w.gateway.ApplyBatch(id, batch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes everything and rejects further queueing.
func (w *DebouncedWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.FlushAll()
}

func (w *DebouncedWriter) flush(projectID string) {
	w.mu.Lock()
	batch := w.take(projectID)
	onError := w.onError
	w.mu.Unlock()

	if batch == nil {
		return
	}
	if err := w.gateway.ApplyBatch(projectID, batch); err != nil {
		if onError != nil {
			onError(projectID, err)
			return
		}
		log.Printf("debounced write for project %s failed: %v", projectID, err)
	}
}

// take removes and returns the pending batch, stopping its timer.
// Caller holds w.mu.
func (w *DebouncedWriter) take(projectID string) *BatchUpdate {
	batch, ok := w.pending[projectID]
	if !ok {
		return nil
	}
	delete(w.pending, projectID)
	if timer, ok := w.timers[projectID]; ok {
		timer.Stop()
		delete(w.timers, projectID)
	}
	return batch
}
