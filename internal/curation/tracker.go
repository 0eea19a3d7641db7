package curation

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a curation run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
	StatusError     Status = "error"
)

// Terminal reports whether the status is final. A terminal run never
// transitions again; a new run replaces it.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusStopped || s == StatusError
}

// RunStatus is a snapshot of one curation run's progress.
type RunStatus struct {
	JobID               string        `json:"jobId"`
	Status              Status        `json:"status"`
	CurrentAction       string        `json:"currentAction"`
	TotalItems          int           `json:"totalItems"`
	ProcessedItems      int           `json:"processedItems"`
	ApprovedItems       int           `json:"approvedItems"`
	RejectedItems       int           `json:"rejectedItems"`
	Errors              []string      `json:"errors"`
	StartedAt           time.Time     `json:"startedAt"`
	CompletedAt         *time.Time    `json:"completedAt,omitempty"`
	EstimatedCompletion *time.Time    `json:"estimatedCompletion,omitempty"`
	Quota               QuotaSnapshot `json:"quota"`
}

// Tracker holds the state of the current (or most recent) run. All
// methods are safe for concurrent use. An optional notify callback
// receives a snapshot after every mutation; it is invoked without the
// tracker lock held, so callbacks may call back into the tracker.
type Tracker struct {
	mu     sync.Mutex
	run    *RunStatus
	stop   bool
	notify func(RunStatus)
	now    func() time.Time
}

// NewTracker creates a tracker. notify may be nil.
func NewTracker(notify func(RunStatus)) *Tracker {
	return &Tracker{
		notify: notify,
		now:    time.Now,
	}
}

// Initialize starts tracking a new run, replacing any previous one.
func (t *Tracker) Initialize(jobID string) {
	t.mu.Lock()
	t.run = &RunStatus{
		JobID:         jobID,
		Status:        StatusRunning,
		CurrentAction: "Starting curation run",
		Errors:        []string{},
		StartedAt:     t.now(),
	}
	t.stop = false
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(snapshot)
}

// Status returns a copy of the current run state, or nil if no run has
// been started since the last Reset.
func (t *Tracker) Status() *RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run == nil {
		return nil
	}
	snapshot := t.snapshotLocked()
	return &snapshot
}

// Running reports whether a run is currently active.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run != nil && t.run.Status == StatusRunning
}

// SetAction updates the human-readable description of the current step.
func (t *Tracker) SetAction(action string) {
	t.apply(func(r *RunStatus) {
		r.CurrentAction = action
	})
}

// AddError appends a non-fatal error message to the run log.
func (t *Tracker) AddError(msg string) {
	t.apply(func(r *RunStatus) {
		r.Errors = append(r.Errors, msg)
	})
}

// SetQuota records the latest external-call usage.
func (t *Tracker) SetQuota(q QuotaSnapshot) {
	t.apply(func(r *RunStatus) {
		r.Quota = q
	})
}

// AddTotal grows the expected item count as new candidates are fetched.
func (t *Tracker) AddTotal(n int) {
	t.apply(func(r *RunStatus) {
		r.TotalItems += n
	})
}

// ItemProcessed counts one fetched candidate as handled, whatever its
// eventual outcome.
func (t *Tracker) ItemProcessed() {
	t.apply(func(r *RunStatus) {
		r.ProcessedItems++
	})
}

// ItemApproved counts one candidate persisted as approved content.
func (t *Tracker) ItemApproved() {
	t.apply(func(r *RunStatus) {
		r.ApprovedItems++
	})
}

// ItemRejected counts one candidate rejected by a filter or the
// evaluator.
func (t *Tracker) ItemRejected() {
	t.apply(func(r *RunStatus) {
		r.RejectedItems++
	})
}

// RequestStop asks the active run to stop at its next checkpoint. The
// run transitions to stopped immediately for observers; in-flight
// external calls are not interrupted. Returns false when no run is
// active.
func (t *Tracker) RequestStop() bool {
	t.mu.Lock()
	if t.run == nil || t.run.Status != StatusRunning {
		t.mu.Unlock()
		return false
	}

	t.stop = true
	t.run.Status = StatusStopped
	t.run.CurrentAction = "Stopping..."
	now := t.now()
	t.run.CompletedAt = &now
	t.run.EstimatedCompletion = nil
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(snapshot)
	return true
}

// ShouldStop reports whether a stop has been requested. The pipeline
// polls this between units of work.
func (t *Tracker) ShouldStop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop
}

// Complete resolves the run to a terminal status. If the run is already
// terminal (for example after RequestStop) this is a no-op, so the
// completion timestamp is set exactly once.
func (t *Tracker) Complete(status Status) {
	t.mu.Lock()
	if t.run == nil || t.run.Status.Terminal() {
		t.mu.Unlock()
		return
	}

	t.run.Status = status
	switch status {
	case StatusCompleted:
		t.run.CurrentAction = "Curation run completed"
	case StatusError:
		t.run.CurrentAction = "Curation run failed"
	case StatusStopped:
		t.run.CurrentAction = "Curation run stopped"
	}
	now := t.now()
	t.run.CompletedAt = &now
	t.run.EstimatedCompletion = nil
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(snapshot)
}

// Reset clears the tracker back to its initial empty state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.run = nil
	t.stop = false
	t.mu.Unlock()
}

// apply runs a mutation on the active run, refreshes the completion
// estimate, and notifies observers. Mutations after the run turned
// terminal are still recorded (late counter updates from the winding-down
// pipeline) but cannot change the status.
func (t *Tracker) apply(mutate func(*RunStatus)) {
	t.mu.Lock()
	if t.run == nil {
		t.mu.Unlock()
		return
	}

	mutate(t.run)
	t.updateEstimateLocked()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(snapshot)
}

// updateEstimateLocked recomputes the linear completion estimate from
// elapsed time and progress so far.
func (t *Tracker) updateEstimateLocked() {
	r := t.run
	if r.Status != StatusRunning || r.ProcessedItems == 0 || r.TotalItems <= r.ProcessedItems {
		return
	}

	elapsed := t.now().Sub(r.StartedAt)
	perItem := elapsed / time.Duration(r.ProcessedItems)
	remaining := time.Duration(r.TotalItems-r.ProcessedItems) * perItem
	eta := t.now().Add(remaining)
	r.EstimatedCompletion = &eta
}

func (t *Tracker) snapshotLocked() RunStatus {
	snapshot := *t.run
	snapshot.Errors = append([]string(nil), t.run.Errors...)
	if t.run.CompletedAt != nil {
		completedAt := *t.run.CompletedAt
		snapshot.CompletedAt = &completedAt
	}
	if t.run.EstimatedCompletion != nil {
		eta := *t.run.EstimatedCompletion
		snapshot.EstimatedCompletion = &eta
	}
	return snapshot
}

func (t *Tracker) emit(snapshot RunStatus) {
	if t.notify != nil {
		t.notify(snapshot)
	}
}
