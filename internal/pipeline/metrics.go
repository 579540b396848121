package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/types"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type StageMetrics struct {
	Stage     types.Stage
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Status    string
}

// MetricsCollector records how long each stage of a run took.
type MetricsCollector struct {
	order   []types.Stage
	metrics map[types.Stage]*StageMetrics
	mu      sync.RWMutex
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[types.Stage]*StageMetrics),
	}
}

func (mc *MetricsCollector) StartStage(stage types.Stage) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.metrics[stage]; !exists {
		mc.order = append(mc.order, stage)
	}
	mc.metrics[stage] = &StageMetrics{
		Stage:     stage,
		StartTime: time.Now(),
		Status:    StatusRunning,
	}
}

func (mc *MetricsCollector) EndStage(stage types.Stage, status string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if m, exists := mc.metrics[stage]; exists {
		m.EndTime = time.Now()
		m.Duration = m.EndTime.Sub(m.StartTime)
		m.Status = status
	}
}

// Snapshot returns the recorded stages in the order they started.
func (mc *MetricsCollector) Snapshot() []StageMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make([]StageMetrics, 0, len(mc.order))
	for _, stage := range mc.order {
		out = append(out, *mc.metrics[stage])
	}
	return out
}

func (mc *MetricsCollector) Log(logger *zap.Logger) {
	for _, m := range mc.Snapshot() {
		logger.Debug("stage finished",
			zap.String("stage", string(m.Stage)),
			zap.String("status", m.Status),
			zap.Duration("duration", m.Duration))
	}
}
