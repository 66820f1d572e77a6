// Package mission runs research missions: plan, execute each step, synthesize
// the results and lay them out as a mind-map batch.
package mission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/layout"
	"github.com/agenthands/deren/internal/core/ledger"
	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/core/synthesis"
)

// Progress is one update emitted while a mission runs.
type Progress struct {
	Message string  `json:"message"`
	Percent float64 `json:"progress"`
}

type ProgressFunc func(Progress)

// Progress messages.
const (
	MsgPlanning   = "Planning research strategy..."
	MsgExecuting  = "Executing research plan..."
	MsgSynthesize = "Synthesizing findings..."
	MsgMindMap    = "Creating mind map..."
	MsgCompleted  = "Mission completed"
)

// Status is a snapshot of the orchestrator.
type Status struct {
	IsActive       bool         `json:"is_active"`
	CurrentMission string       `json:"current_mission"`
	Tasks          []model.Task `json:"tasks"`
	Memory         Memory       `json:"memory"`
}

type Orchestrator struct {
	Ledger      *ledger.Ledger
	Session     *Session
	Planner     Planner
	Executor    *StepExecutor
	Synthesizer synthesis.Synthesizer
	Layout      *layout.Engine
	Logger      *zap.Logger

	// PhaseDelay follows every progress update, StepDelay every plan step.
	PhaseDelay time.Duration
	StepDelay  time.Duration

	active atomic.Bool
}

// NewOrchestrator wires the default planner, synthesizer and layout engine.
// invoker may be nil, in which case every step uses its templated result.
func NewOrchestrator(invoker Invoker, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Ledger:      ledger.New(),
		Session:     NewSession(),
		Planner:     StaticPlanner{},
		Executor:    NewStepExecutor(invoker, logger),
		Synthesizer: synthesis.Default,
		Layout:      layout.NewEngine(),
		Logger:      logger,
	}
}

func (o *Orchestrator) IsActive() bool {
	return o.active.Load()
}

func (o *Orchestrator) Status() Status {
	return Status{
		IsActive:       o.IsActive(),
		CurrentMission: o.Session.CurrentMission(),
		Tasks:          o.Ledger.Tasks(),
		Memory:         o.Session.Snapshot(),
	}
}

// run carries the state of a single Execute call.
type run struct {
	o          *Orchestrator
	ctx        context.Context
	mission    string
	onProgress ProgressFunc
	phase      string
	taskID     string
}

// Execute runs mission to completion and returns the generated batch. Only
// one mission runs at a time; a concurrent call fails with
// ErrMissionInProgress. Any failure is a *common.MissionExecutionError
// naming the phase, and no partial batch is returned.
func (o *Orchestrator) Execute(ctx context.Context, mission string, onProgress ProgressFunc) (model.Batch, error) {
	if !o.active.CompareAndSwap(false, true) {
		return model.Batch{}, common.ErrMissionInProgress
	}
	defer o.active.Store(false)

	start := time.Now()
	o.Session.begin(mission)
	o.Logger.Info("Mission started", zap.String("mission", mission))

	r := &run{o: o, ctx: ctx, mission: mission, onProgress: onProgress}
	batch, err := r.execute()
	if err != nil {
		if r.taskID != "" {
			_ = o.Ledger.Fail(r.taskID, err)
		}
		o.Logger.Error("Mission failed",
			zap.String("mission", mission),
			zap.String("phase", r.phase),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return model.Batch{}, &common.MissionExecutionError{Phase: r.phase, Err: err}
	}

	o.Logger.Info("Mission completed",
		zap.String("mission", mission),
		zap.Int("nodes", len(batch.Nodes)),
		zap.Int("connections", len(batch.Connections)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return batch, nil
}

func (r *run) execute() (model.Batch, error) {
	r.phase = common.PhasePlanning
	if err := r.progress(MsgPlanning, 10); err != nil {
		return model.Batch{}, err
	}
	plan, err := r.plan()
	if err != nil {
		return model.Batch{}, err
	}

	r.phase = common.PhaseExecution
	if err := r.progress(MsgExecuting, 25); err != nil {
		return model.Batch{}, err
	}
	results, err := r.executePlan(plan)
	if err != nil {
		return model.Batch{}, err
	}

	r.phase = common.PhaseSynthesis
	if err := r.progress(MsgSynthesize, 80); err != nil {
		return model.Batch{}, err
	}
	synth, err := r.synthesize(results)
	if err != nil {
		return model.Batch{}, err
	}

	r.phase = common.PhaseMindMap
	if err := r.progress(MsgMindMap, 95); err != nil {
		return model.Batch{}, err
	}
	batch := r.o.Layout.Build(r.mission, synth)

	if err := r.progress(MsgCompleted, 100); err != nil {
		return model.Batch{}, err
	}
	r.o.Session.finish(synth.Summary, rootID(batch), synth.KeyFindings)
	return batch, nil
}

// checkpoint reports cancellation of the run's context.
func (r *run) checkpoint() error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCancelled, err)
	}
	return nil
}

func (r *run) sleep(d time.Duration) error {
	if d <= 0 {
		return r.checkpoint()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.ctx.Done():
		return r.checkpoint()
	case <-t.C:
		return nil
	}
}

func (r *run) progress(message string, percent float64) error {
	if err := r.checkpoint(); err != nil {
		return err
	}
	if r.onProgress != nil {
		r.onProgress(Progress{Message: message, Percent: percent})
	}
	return r.sleep(r.o.PhaseDelay)
}

func (r *run) begin(taskType model.TaskType, description string) {
	task := r.o.Ledger.Add(r.o.Ledger.Create(taskType, description))
	r.taskID = task.ID
	r.o.Session.recordTask(task.ID)
}

func (r *run) complete(result any) {
	_ = r.o.Ledger.Complete(r.taskID, result)
	r.taskID = ""
}

func (r *run) plan() (Plan, error) {
	r.begin(model.TaskAnalyze, "Generate research plan for: "+r.mission)

	plan, err := r.o.Planner.Plan(r.ctx, r.mission)
	if err != nil {
		if r.ctx.Err() != nil {
			return Plan{}, r.checkpoint()
		}
		var pe *common.MissionPlanningError
		if !errors.As(err, &pe) {
			err = &common.MissionPlanningError{Reason: "planner failed", Err: err}
		}
		return Plan{}, err
	}
	if len(plan.Steps) == 0 {
		return Plan{}, &common.MissionPlanningError{Reason: "plan has no steps"}
	}
	if err := r.sleep(r.o.StepDelay); err != nil {
		return Plan{}, err
	}

	r.complete(plan)
	r.o.Logger.Debug("Plan ready", zap.Strings("steps", plan.Steps))
	return plan, nil
}

func (r *run) executePlan(plan Plan) ([]model.StepResult, error) {
	n := float64(len(plan.Steps))
	results := make([]model.StepResult, 0, len(plan.Steps))

	for i, step := range plan.Steps {
		if err := r.progress("Executing: "+step, 25+float64(i)/n*50); err != nil {
			return nil, err
		}

		r.begin(model.TaskSearch, step)
		if err := r.sleep(r.o.StepDelay); err != nil {
			return nil, err
		}
		result := r.o.Executor.Execute(r.ctx, r.mission, step)
		if err := r.checkpoint(); err != nil {
			return nil, err
		}
		r.complete(result)
		results = append(results, result)
	}
	return results, nil
}

func (r *run) synthesize(results []model.StepResult) (model.Synthesis, error) {
	r.begin(model.TaskAnalyze, "Synthesizing all research findings")
	if err := r.sleep(r.o.StepDelay); err != nil {
		return model.Synthesis{}, err
	}

	synth, err := r.o.Synthesizer.Synthesize(results)
	if err != nil {
		var se *common.SynthesisError
		if !errors.As(err, &se) {
			err = &common.SynthesisError{Reason: "synthesizer failed", Err: err}
		}
		return model.Synthesis{}, err
	}
	r.complete(synth)
	return synth, nil
}

func rootID(batch model.Batch) string {
	for _, n := range batch.Nodes {
		if n.Type == model.NodeRoot {
			return n.ID
		}
	}
	return ""
}
