package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elskow/deployit/internal/pipeline/types"
)

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()

	mc.StartStage(types.StageStart)
	mc.EndStage(types.StageStart, StatusSucceeded)
	mc.StartStage(types.StageConfirm)
	mc.EndStage(types.StageConfirm, StatusCancelled)
	mc.StartStage(types.StageBuild)

	snapshot := mc.Snapshot()
	require.Len(t, snapshot, 3)

	assert.Equal(t, types.StageStart, snapshot[0].Stage)
	assert.Equal(t, StatusSucceeded, snapshot[0].Status)
	assert.False(t, snapshot[0].EndTime.Before(snapshot[0].StartTime))

	assert.Equal(t, types.StageConfirm, snapshot[1].Stage)
	assert.Equal(t, StatusCancelled, snapshot[1].Status)

	assert.Equal(t, StatusRunning, snapshot[2].Status)
	assert.True(t, snapshot[2].EndTime.IsZero())
}

func TestMetricsCollector_RestartKeepsOrder(t *testing.T) {
	mc := NewMetricsCollector()

	mc.StartStage(types.StageStart)
	mc.StartStage(types.StageConfirm)
	mc.StartStage(types.StageStart)
	mc.EndStage(types.StageStart, StatusFailed)

	snapshot := mc.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, types.StageStart, snapshot[0].Stage)
	assert.Equal(t, StatusFailed, snapshot[0].Status)
}

func TestMetricsCollector_EndUnknownStage(t *testing.T) {
	mc := NewMetricsCollector()
	mc.EndStage(types.StagePush, StatusFailed)
	assert.Empty(t, mc.Snapshot())
}
