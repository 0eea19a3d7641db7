package curation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker(nil)

	assert.Nil(t, tracker.Status(), "no run before Initialize")
	assert.False(t, tracker.Running())

	tracker.Initialize("job1")
	status := tracker.Status()
	require.NotNil(t, status)
	assert.Equal(t, "job1", status.JobID)
	assert.Equal(t, StatusRunning, status.Status)
	assert.True(t, tracker.Running())
	assert.Nil(t, status.CompletedAt)

	tracker.Complete(StatusCompleted)
	status = tracker.Status()
	assert.Equal(t, StatusCompleted, status.Status)
	require.NotNil(t, status.CompletedAt)
	assert.False(t, tracker.Running())
}

func TestTrackerCounters(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Initialize("job1")

	tracker.AddTotal(3)
	tracker.ItemProcessed()
	tracker.ItemProcessed()
	tracker.ItemApproved()
	tracker.ItemRejected()
	tracker.SetAction("Evaluating: Morning Sit")
	tracker.AddError("channel UCx: details fetch failed")

	status := tracker.Status()
	assert.Equal(t, 3, status.TotalItems)
	assert.Equal(t, 2, status.ProcessedItems)
	assert.Equal(t, 1, status.ApprovedItems)
	assert.Equal(t, 1, status.RejectedItems)
	assert.Equal(t, "Evaluating: Morning Sit", status.CurrentAction)
	assert.Len(t, status.Errors, 1)
}

func TestTrackerRequestStop(t *testing.T) {
	tracker := NewTracker(nil)

	assert.False(t, tracker.RequestStop(), "stop without a run is rejected")

	tracker.Initialize("job1")
	assert.True(t, tracker.RequestStop())
	assert.True(t, tracker.ShouldStop())

	status := tracker.Status()
	assert.Equal(t, StatusStopped, status.Status)
	require.NotNil(t, status.CompletedAt)
	firstCompletedAt := *status.CompletedAt

	// Second stop request on a terminal run is rejected.
	assert.False(t, tracker.RequestStop())

	// The pipeline winding down must not move the run out of its
	// terminal state or reset the completion timestamp.
	tracker.Complete(StatusCompleted)
	status = tracker.Status()
	assert.Equal(t, StatusStopped, status.Status)
	assert.Equal(t, firstCompletedAt, *status.CompletedAt)
}

func TestTrackerTerminalStateIsFinal(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Initialize("job1")
	tracker.Complete(StatusError)

	tracker.Complete(StatusCompleted)
	assert.Equal(t, StatusError, tracker.Status().Status)
}

func TestTrackerLateCountersAfterStop(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Initialize("job1")
	tracker.RequestStop()

	// An in-flight item finishing after the stop request still lands in
	// the counters.
	tracker.ItemProcessed()
	tracker.ItemApproved()

	status := tracker.Status()
	assert.Equal(t, StatusStopped, status.Status)
	assert.Equal(t, 1, status.ProcessedItems)
	assert.Equal(t, 1, status.ApprovedItems)
}

func TestTrackerEstimatedCompletion(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	tracker := NewTracker(nil)
	tracker.now = func() time.Time { return now }

	tracker.Initialize("job1")
	tracker.AddTotal(10)

	status := tracker.Status()
	assert.Nil(t, status.EstimatedCompletion, "no estimate before progress")

	// 5 of 10 items after 50s: 10s/item, 50s remaining.
	now = now.Add(50 * time.Second)
	for i := 0; i < 5; i++ {
		tracker.ItemProcessed()
	}

	status = tracker.Status()
	require.NotNil(t, status.EstimatedCompletion)
	assert.Equal(t, now.Add(50*time.Second), *status.EstimatedCompletion)

	tracker.Complete(StatusCompleted)
	assert.Nil(t, tracker.Status().EstimatedCompletion, "estimate cleared on completion")
}

func TestTrackerNotify(t *testing.T) {
	var updates []RunStatus
	tracker := NewTracker(func(s RunStatus) {
		updates = append(updates, s)
	})

	tracker.Initialize("job1")
	tracker.AddTotal(1)
	tracker.ItemProcessed()
	tracker.Complete(StatusCompleted)

	require.Len(t, updates, 4)
	assert.Equal(t, StatusRunning, updates[0].Status)
	assert.Equal(t, 1, updates[2].ProcessedItems)
	assert.Equal(t, StatusCompleted, updates[3].Status)
}

func TestTrackerInitializeReplacesPreviousRun(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Initialize("job1")
	tracker.AddTotal(5)
	tracker.RequestStop()

	tracker.Initialize("job2")
	status := tracker.Status()
	assert.Equal(t, "job2", status.JobID)
	assert.Equal(t, StatusRunning, status.Status)
	assert.Equal(t, 0, status.TotalItems)
	assert.False(t, tracker.ShouldStop(), "stop flag cleared for new run")
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Initialize("job1")
	tracker.Reset()

	assert.Nil(t, tracker.Status())
	assert.False(t, tracker.ShouldStop())
}
