package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "doctool"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	reg              *prom.Registry
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	runDuration      prom.Histogram
	runOutcome       *prom.CounterVec
	processDuration  *prom.HistogramVec
	graphsCleaned    *prom.CounterVec
	symbolsRemapped  *prom.CounterVec
	unconverted      *prom.CounterVec
	cleanConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.ExponentialBuckets(1, 2, 12),
		})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"})
		pr.processDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Duration of external tool invocations",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 14),
		}, []string{"tool", "result"})
		pr.graphsCleaned = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "graphs_cleaned_total",
			Help:      "Symbol graphs cleaned by language mode",
		}, []string{"mode"})
		pr.symbolsRemapped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_remapped_total",
			Help:      "Declarations rewritten to Swift by symbol kind",
		}, []string{"kind"})
		pr.unconverted = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_unconverted_total",
			Help:      "Declarations left as extracted, by symbol kind and reason",
		}, []string{"kind", "reason"})
		pr.cleanConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "clean_concurrency",
			Help:      "Graphs cleaned in parallel during the last cleaning stage",
		})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome,
			pr.processDuration, pr.graphsCleaned, pr.symbolsRemapped, pr.unconverted, pr.cleanConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveProcess(tool string, d time.Duration, success bool) {
	if p == nil || p.processDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.processDuration.WithLabelValues(tool, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGraphsCleaned(mode string) {
	if p == nil || p.graphsCleaned == nil {
		return
	}
	p.graphsCleaned.WithLabelValues(mode).Inc()
}

func (p *PrometheusRecorder) IncSymbolsRemapped(kind string) {
	if p == nil || p.symbolsRemapped == nil {
		return
	}
	p.symbolsRemapped.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncUnconverted(kind, reason string) {
	if p == nil || p.unconverted == nil {
		return
	}
	p.unconverted.WithLabelValues(kind, reason).Inc()
}

func (p *PrometheusRecorder) SetCleanConcurrency(n int) {
	if p == nil || p.cleanConcurrency == nil {
		return
	}
	p.cleanConcurrency.Set(float64(n))
}

// WriteTextfile writes the registry to path in the text exposition format. The parent
// directory is created when missing.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
