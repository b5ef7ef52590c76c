package ingest

import (
	"fmt"
	"sync"
	"time"

	"cardmirror/pkg/models"
)

// Tracker owns the shared status record. One mutex covers both the status
// fields and the run flags, so the check-then-transition at the start of a
// run is atomic: two concurrent triggers cannot both begin ingestion.
type Tracker struct {
	mu        sync.Mutex
	status    models.Status
	running   bool
	completed bool
	publish   func(models.Status)
}

// NewTracker creates a tracker in the not_started state. publish, when not
// nil, receives a snapshot after every mutation (the websocket feed).
func NewTracker(publish func(models.Status)) *Tracker {
	return &Tracker{
		status: models.Status{
			State:   models.StateNotStarted,
			Message: "Card store not initialized",
		},
		publish: publish,
	}
}

func (t *Tracker) Snapshot() models.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status.State == models.StateReady
}

func (t *Tracker) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// BeginRun claims the single-flight slot for the initial ingestion run.
// It returns false when a run already completed or is in flight.
func (t *Tracker) BeginRun(runID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completed || t.running {
		return false
	}
	t.running = true
	t.status = models.Status{
		State:   models.StateInitializing,
		Message: "Initializing card store...",
		RunID:   runID,
	}
	t.publishLocked()
	return true
}

// BeginRefresh claims the slot for an update pass over an already-ready
// store. The state stays ready; queries keep being served off the old rows
// while the refresh upserts in place.
func (t *Tracker) BeginRefresh(runID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.completed || t.running {
		return false
	}
	t.running = true
	t.status.RunID = runID
	t.status.Message = "Refreshing card data..."
	t.publishLocked()
	return true
}

func (t *Tracker) Fetching() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.State != models.StateReady {
		t.status.State = models.StateUpdating
		t.status.Progress = 10
	}
	t.status.Message = "Fetching card data from upstream..."
	t.publishLocked()
}

func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.TotalCards = total
	t.status.CurrentCard = 0
	t.status.SkippedCards = 0
	if t.status.State != models.StateReady {
		t.status.Progress = 20
	}
	t.status.Message = fmt.Sprintf("Processing %d cards...", total)
	t.publishLocked()
}

// Advance records chunk completion. Progress holds at 90 until the final
// ready transition pins it to 100, so it is non-decreasing across the run.
func (t *Tracker) Advance(processed, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.CurrentCard = processed
	t.status.SkippedCards = skipped
	if t.status.State != models.StateReady && t.status.TotalCards > 0 {
		p := 20 + 70*processed/t.status.TotalCards
		if p > 90 {
			p = 90
		}
		if p > t.status.Progress {
			t.status.Progress = p
		}
	}
	t.status.Message = fmt.Sprintf("Processing cards (%d/%d)", processed, t.status.TotalCards)
	t.publishLocked()
}

// Complete marks the initial run successful. Later Run calls become no-ops.
func (t *Tracker) Complete(stored int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.completed = true
	t.status.State = models.StateReady
	t.status.Progress = 100
	t.status.Error = ""
	t.status.Message = fmt.Sprintf("Card store ready with %d cards", stored)
	t.status.LastUpdated = time.Now().Format(time.RFC3339)
	t.publishLocked()
}

// Fail marks the run failed. The completed flag stays false, so a later
// trigger (operator refresh endpoint, process restart) may attempt again.
func (t *Tracker) Fail(cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.status.State = models.StateError
	t.status.Message = "Failed to initialize card store"
	t.status.Error = cause.Error()
	t.publishLocked()
}

// EndRefresh releases the refresh slot. On success the ready message and
// last_updated stamp are renewed; a failed refresh leaves the previous
// status intact apart from the message.
func (t *Tracker) EndRefresh(stored int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if err != nil {
		t.status.Message = fmt.Sprintf("Card store ready with %d cards (refresh failed)", t.status.TotalCards)
		t.publishLocked()
		return
	}
	t.status.Message = fmt.Sprintf("Card store ready with %d cards", stored)
	t.status.LastUpdated = time.Now().Format(time.RFC3339)
	t.publishLocked()
}

func (t *Tracker) publishLocked() {
	if t.publish != nil {
		t.publish(t.status)
	}
}
