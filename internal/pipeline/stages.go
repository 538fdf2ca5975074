package pipeline

import (
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/swiftusd/doctool/internal/catalog"
	"github.com/swiftusd/doctool/internal/clean"
	"github.com/swiftusd/doctool/internal/foundation/errors"
	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/metrics"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/procs"
)

// StageName identifies a build stage in logs, metrics and the report.
type StageName string

const (
	StageExtractNative StageName = "extract_native"
	StageExtractHost   StageName = "extract_host"
	StageSaveRaw       StageName = "save_raw"
	StageClean         StageName = "clean"
	StageAssemble      StageName = "assemble"
	StageConvert       StageName = "convert"
	StageBundle        StageName = "bundle"
	StagePreview       StageName = "preview"
)

// StageFunc does the work of one stage.
type StageFunc func(ctx context.Context, run *Run) error

// StageDef pairs a stage with the state the build is in while it runs. Stages without a
// state run outside the build state machine.
type StageDef struct {
	Name  StageName
	State State
	Fn    StageFunc
}

// Outcome is the final result of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report records what a run did.
type Report struct {
	RunID          string
	Start          time.Time
	End            time.Time
	Outcome        Outcome
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]metrics.ResultLabel
	Headers        int
	RawSaved       int
	Clean          clean.Report
	Articles       catalog.LinkReport
	BundleFiles    int
}

func newReport(runID string) *Report {
	return &Report{
		RunID:          runID,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]metrics.ResultLabel),
	}
}

// Run is the mutable state shared by the stages of one invocation.
type Run struct {
	Machine  Machine
	Report   *Report
	recorder metrics.Recorder
}

func (r *Run) recordStage(stage StageName, d time.Duration, res metrics.ResultLabel) {
	r.Report.StageDurations[stage] = d
	r.Report.StageResults[stage] = res
	r.recorder.ObserveStageDuration(string(stage), d)
	r.recorder.IncStageResult(string(stage), res)
}

// finish stamps the report and records the run outcome.
func (r *Run) finish(err error) {
	r.Report.End = time.Now()
	switch {
	case err == nil:
		r.Report.Outcome = OutcomeSuccess
	case errors.HasCategory(err, errors.CategoryCanceled):
		r.Report.Outcome = OutcomeCanceled
	default:
		r.Report.Outcome = OutcomeFailed
	}
	r.recorder.ObserveRunDuration(r.Report.End.Sub(r.Report.Start))
	r.recorder.IncRunOutcome(string(r.Report.Outcome))
}

// RunStages executes stages in order, recording timing and stopping on the first error.
// Cancellation is checked before every stage.
func RunStages(ctx context.Context, run *Run, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			err := errors.CanceledError("build interrupted").
				WithCause(ctx.Err()).WithContext("stage", string(st.Name)).Build()
			run.recordStage(st.Name, 0, metrics.ResultCanceled)
			return err
		default:
		}

		if st.State != "" {
			if err := run.Machine.Transition(st.State); err != nil {
				return err
			}
		}

		sctx := observability.WithStage(ctx, string(st.Name))
		observability.InfoContext(sctx, "Stage started", logfields.State(string(run.Machine.State())))
		t0 := time.Now()
		err := st.Fn(sctx, run)
		dur := time.Since(t0)

		if err != nil {
			err = classify(st.Name, err)
			res := metrics.ResultFatal
			if errors.HasCategory(err, errors.CategoryCanceled) {
				res = metrics.ResultCanceled
			}
			run.recordStage(st.Name, dur, res)
			observability.ErrorContext(sctx, "Stage failed",
				logfields.DurationMS(float64(dur.Milliseconds())), logfields.Error(err))
			return err
		}
		run.recordStage(st.Name, dur, metrics.ResultSuccess)
		observability.InfoContext(sctx, "Stage finished", logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

// classify gives every stage error a category. Errors that already carry one are kept.
func classify(stage StageName, err error) error {
	if _, ok := errors.AsClassified(err); ok {
		return err
	}
	var exit *procs.ExitError
	switch {
	case stderrors.As(err, &exit):
		return errors.ProcessError("external tool failed").
			WithCause(err).
			WithContext("stage", string(stage)).
			WithContext("tool", exit.Command.Tool).
			WithContext("exit_code", exit.Code).
			Build()
	case stderrors.Is(err, exec.ErrNotFound):
		return errors.ProcessError("external tool not found").WithCause(err).WithContext("stage", string(stage)).Build()
	case stderrors.Is(err, procs.ErrCanceled), stderrors.Is(err, context.Canceled):
		return errors.CanceledError("build interrupted").WithCause(err).WithContext("stage", string(stage)).Build()
	case stderrors.Is(err, fragment.ErrShape):
		return errors.ShapeError("declaration has an unexpected shape").WithCause(err).WithContext("stage", string(stage)).Build()
	default:
		return errors.FileSystemError("stage failed").WithCause(err).WithContext("stage", string(stage)).Build()
	}
}
