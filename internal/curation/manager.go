package curation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrRunActive is returned by Start while a run is in progress.
var ErrRunActive = errors.New("a curation run is already active")

// Manager serializes curation runs: at most one run is active at a
// time, started in a background goroutine and observed through the
// shared tracker.
type Manager struct {
	mu       sync.Mutex
	pipeline *Pipeline
	tracker  *Tracker
	logger   *slog.Logger
}

// NewManager creates a manager around a wired pipeline.
func NewManager(pipeline *Pipeline, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pipeline: pipeline,
		tracker:  pipeline.Tracker(),
		logger:   logger,
	}
}

// Start launches a new curation run in the background and returns its
// job ID. Returns ErrRunActive when one is already running. The tracker
// is initialized before Start returns, so a status read immediately
// after sees the new run.
func (m *Manager) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker.Running() {
		return "", ErrRunActive
	}

	jobID := uuid.New().String()[:8]
	m.tracker.Initialize(jobID)
	m.logger.Info("starting curation run", "jobId", jobID)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("curation run panicked", "jobId", jobID, "panic", r)
				m.tracker.AddError(fmt.Sprintf("internal error: %v", r))
				m.tracker.Complete(StatusError)
			}
		}()
		m.pipeline.execute(context.Background())
	}()

	return jobID, nil
}

// Status returns the current run snapshot, or nil when no run has been
// started yet.
func (m *Manager) Status() *RunStatus {
	return m.tracker.Status()
}

// RequestStop asks the active run to stop at its next checkpoint.
// Returns false when no run is active.
func (m *Manager) RequestStop() bool {
	stopped := m.tracker.RequestStop()
	if stopped {
		m.logger.Info("stop requested")
	}
	return stopped
}
