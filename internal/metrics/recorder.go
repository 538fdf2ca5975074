package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for a doctool run. Implementations must be safe
// for concurrent use; graphs are cleaned in parallel.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: success|failed|canceled
	ObserveProcess(tool string, d time.Duration, success bool)
	IncGraphsCleaned(mode string)
	IncSymbolsRemapped(kind string)
	IncUnconverted(kind, reason string)
	SetCleanConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)  {}
func (NoopRecorder) IncStageResult(string, ResultLabel)          {}
func (NoopRecorder) ObserveRunDuration(time.Duration)            {}
func (NoopRecorder) IncRunOutcome(string)                        {}
func (NoopRecorder) ObserveProcess(string, time.Duration, bool) {}
func (NoopRecorder) IncGraphsCleaned(string)                     {}
func (NoopRecorder) IncSymbolsRemapped(string)                   {}
func (NoopRecorder) IncUnconverted(string, string)               {}
func (NoopRecorder) SetCleanConcurrency(int)                     {}
