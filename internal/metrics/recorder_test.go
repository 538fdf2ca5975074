package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// countingRecorder shows the interface is satisfiable by simple in-memory recorders,
// which is how pipeline tests observe stage results.
type countingRecorder struct {
	NoopRecorder
	mu           sync.Mutex
	stageResults map[string]ResultLabel
}

func (c *countingRecorder) IncStageResult(stage string, result ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stageResults[stage] = result
}

func TestRecorderImplementations(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)

	c := &countingRecorder{stageResults: map[string]ResultLabel{}}
	var r Recorder = c
	r.IncStageResult("cleaning", ResultCanceled)
	r.ObserveStageDuration("cleaning", time.Millisecond)
	assert.Equal(t, ResultCanceled, c.stageResults["cleaning"])
}
