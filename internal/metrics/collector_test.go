package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordAndSnapshot(t *testing.T) {
	c := NewCollector()

	c.Record(OpEvaluation, 100*time.Millisecond, nil)
	c.Record(OpEvaluation, 300*time.Millisecond, nil)
	c.Record(OpEvaluation, 200*time.Millisecond, errors.New("boom"))

	snap := c.Snapshot()
	op, ok := snap.Operations[OpEvaluation]
	require.True(t, ok)
	assert.Equal(t, int64(3), op.Count)
	assert.Equal(t, int64(1), op.Errors)
	assert.Equal(t, int64(100), op.MinTimeMs)
	assert.Equal(t, int64(300), op.MaxTimeMs)
	assert.InDelta(t, 200.0, op.AvgTimeMs, 0.001)
}

func TestCollectorEmptySnapshot(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	assert.Empty(t, snap.Operations)
}

func TestCollectorNilSafe(t *testing.T) {
	var c *Collector
	c.Record(OpStoreWrite, time.Second, nil)
	snap := c.Snapshot()
	assert.Empty(t, snap.Operations)
}
