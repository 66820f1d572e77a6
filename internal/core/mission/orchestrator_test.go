package mission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/core/synthesis"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(list *[]Progress) ProgressFunc {
	return func(p Progress) { *list = append(*list, p) }
}

func TestExecute_DefaultPlan(t *testing.T) {
	o := NewOrchestrator(nil, nil)

	var progress []Progress
	batch, err := o.Execute(context.Background(), "Climate change effects", collect(&progress))
	require.NoError(t, err)

	assert.Len(t, batch.Nodes, 13)
	assert.Len(t, batch.Connections, 15)
	for _, n := range batch.Nodes {
		assert.True(t, n.IsGenerated(), n.ID)
	}

	percents := make([]float64, 0, len(progress))
	for _, p := range progress {
		percents = append(percents, p.Percent)
	}
	assert.Equal(t, []float64{10, 25, 25, 35, 45, 55, 65, 80, 95, 100}, percents)
	assert.Equal(t, MsgPlanning, progress[0].Message)
	assert.Equal(t, "Executing: "+StepPrimarySources, progress[2].Message)
	assert.Equal(t, MsgCompleted, progress[len(progress)-1].Message)

	tasks := o.Ledger.Tasks()
	require.Len(t, tasks, 7)
	assert.Equal(t, model.TaskAnalyze, tasks[0].Type)
	assert.Equal(t, "Generate research plan for: Climate change effects", tasks[0].Description)
	assert.Equal(t, model.TaskSearch, tasks[1].Type)
	assert.Equal(t, "Synthesizing all research findings", tasks[6].Description)
	for _, task := range tasks {
		assert.Equal(t, model.TaskCompleted, task.Status)
	}

	status := o.Status()
	assert.False(t, status.IsActive)
	assert.Equal(t, "Climate change effects", status.CurrentMission)
	assert.Equal(t, synthesis.Summary, status.Memory.Working.ContextSummary)
	assert.Len(t, status.Memory.Working.RecentTasks, 7)
	assert.Len(t, status.Memory.LongTerm.SavedMaps, 1)
}

func TestExecute_CustomPlanProgress(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	o.Planner = StaticPlanner{Steps: []string{"Survey the field", "Interview staff"}}

	var progress []Progress
	batch, err := o.Execute(context.Background(), "Onboarding", collect(&progress))
	require.NoError(t, err)

	assert.Equal(t, 50.0, progress[3].Percent)
	// 1 root, 2 concepts, 3 findings, 4 sources.
	assert.Len(t, batch.Nodes, 10)
}

func TestExecute_RejectsConcurrentMission(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	planner := &BlockingPlanner{Entered: make(chan struct{}), Release: make(chan struct{})}
	o.Planner = planner

	done := make(chan error, 1)
	go func() {
		_, err := o.Execute(context.Background(), "first", nil)
		done <- err
	}()

	<-planner.Entered
	assert.True(t, o.IsActive())

	_, err := o.Execute(context.Background(), "second", nil)
	assert.ErrorIs(t, err, common.ErrMissionInProgress)

	close(planner.Release)
	require.NoError(t, <-done)
	assert.False(t, o.IsActive())
	assert.Equal(t, "first", o.Session.CurrentMission())
}

func TestExecute_Cancelled(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var progress []Progress
	batch, err := o.Execute(ctx, "Cancel me", func(p Progress) {
		progress = append(progress, p)
		if p.Percent == 35 {
			cancel()
		}
	})
	require.Error(t, err)
	assert.Empty(t, batch.Nodes)
	assert.ErrorIs(t, err, common.ErrCancelled)

	var execErr *common.MissionExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, common.PhaseExecution, execErr.Phase)

	assert.Equal(t, 35.0, progress[len(progress)-1].Percent)
	// Cancelled between steps: the plan and first step finished, nothing is in flight.
	tasks := o.Ledger.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, model.TaskCompleted, tasks[1].Status)
	assert.False(t, o.IsActive())
}

func TestExecute_CancelledMidStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := NewOrchestrator(&CancellingInvoker{Cancel: cancel}, nil)

	_, err := o.Execute(ctx, "Cancel me", nil)
	assert.ErrorIs(t, err, common.ErrCancelled)

	tasks := o.Ledger.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, model.TaskFailed, tasks[1].Status)
	assert.Equal(t, StepPrimarySources, tasks[1].Description)
}

func TestExecute_PlanningFailure(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	o.Planner = FailingPlanner{Err: errors.New("model offline")}

	var progress []Progress
	_, err := o.Execute(context.Background(), "Doomed", collect(&progress))

	var execErr *common.MissionExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, common.PhasePlanning, execErr.Phase)
	var planErr *common.MissionPlanningError
	assert.ErrorAs(t, err, &planErr)

	assert.Len(t, progress, 1)
	tasks := o.Ledger.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskFailed, tasks[0].Status)
	assert.Contains(t, tasks[0].Error, "model offline")
	assert.False(t, o.IsActive())
}

func TestExecute_EmptyPlan(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	o.Planner = StaticPlanner{Steps: []string{}}

	_, err := o.Execute(context.Background(), "Nothing to do", nil)
	var planErr *common.MissionPlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, "plan has no steps", planErr.Reason)
}

func TestExecute_SynthesisFailure(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	o.Synthesizer = synthesis.Func(func([]model.StepResult) (model.Synthesis, error) {
		return model.Synthesis{}, &common.SynthesisError{Reason: "nothing to combine"}
	})

	_, err := o.Execute(context.Background(), "Mission", nil)
	var execErr *common.MissionExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, common.PhaseSynthesis, execErr.Phase)
	var synthErr *common.SynthesisError
	assert.ErrorAs(t, err, &synthErr)

	// The orchestrator is usable again afterwards.
	o.Synthesizer = synthesis.Default
	_, err = o.Execute(context.Background(), "Mission", nil)
	assert.NoError(t, err)
}

func TestExecute_SynthesisPlainErrorIsWrapped(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	boom := errors.New("combiner crashed")
	o.Synthesizer = synthesis.Func(func([]model.StepResult) (model.Synthesis, error) {
		return model.Synthesis{}, boom
	})

	_, err := o.Execute(context.Background(), "Mission", nil)
	var synthErr *common.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.ErrorIs(t, err, boom)

	tasks := o.Ledger.Tasks()
	assert.Equal(t, model.TaskFailed, tasks[len(tasks)-1].Status)
}

func TestExecute_CancelledAtCompletionLeavesMemoryUntouched(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel while the layout is being built, after the last phase checkpoint.
	o.Layout.NewID = func() string {
		cancel()
		return "id"
	}

	var progress []Progress
	_, err := o.Execute(ctx, "Almost done", collect(&progress))
	assert.ErrorIs(t, err, common.ErrCancelled)
	assert.Equal(t, 95.0, progress[len(progress)-1].Percent)

	mem := o.Session.Snapshot()
	assert.Empty(t, mem.LongTerm.SavedMaps)
	assert.Empty(t, mem.LongTerm.KnowledgeBase)
}
