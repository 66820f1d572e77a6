package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/graph"
	"github.com/agenthands/deren/internal/core/mission"
	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/metrics"
)

func newTestDeren(repo GraphRepository) *Deren {
	d := NewDeren(graph.NewStore(nil), mission.NewOrchestrator(nil, nil), repo, metrics.NewCollector("deren_test"), nil)
	counter := 0
	d.NewID = func() string {
		counter++
		return fmt.Sprintf("uuid-%d", counter)
	}
	return d
}

func TestIsCanvasCommand(t *testing.T) {
	assert.True(t, IsCanvasCommand("create canvas page"))
	assert.True(t, IsCanvasCommand("Please open a NEW PAGE"))
	assert.False(t, IsCanvasCommand("research canvas painting techniques"))
}

func TestHandleCommand_Canvas(t *testing.T) {
	d := newTestDeren(nil)

	var progress []mission.Progress
	res, err := d.HandleCommand(context.Background(), "create canvas page", func(p mission.Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, CommandCanvas, res.Kind)
	require.NotNil(t, res.Canvas)
	assert.Equal(t, "canvas-uuid-1", res.Canvas.ID)
	assert.Equal(t, CanvasPageLabel, res.Canvas.Label)
	assert.Equal(t, model.NodeCanvas, res.Canvas.Type)
	assert.GreaterOrEqual(t, res.Canvas.Position.X, 200.0)
	assert.Less(t, res.Canvas.Position.X, 600.0)
	assert.GreaterOrEqual(t, res.Canvas.Position.Y, 200.0)
	assert.Less(t, res.Canvas.Position.Y, 500.0)

	assert.Empty(t, progress)
	assert.Zero(t, d.Orchestrator.Ledger.Len())

	nodes, _ := d.Graph.Snapshot()
	assert.Len(t, nodes, 1)
}

func TestHandleCommand_Mission(t *testing.T) {
	d := newTestDeren(nil)
	require.NoError(t, d.Seed())

	res, err := d.HandleCommand(context.Background(), "Climate change effects", nil)
	require.NoError(t, err)
	assert.Equal(t, CommandMission, res.Kind)
	assert.Len(t, res.Batch.Nodes, 13)

	stats := d.Stats()
	assert.Equal(t, 17, stats.Nodes)
	assert.Equal(t, 19, stats.Connections)
	assert.Equal(t, 13, stats.Generated)
	assert.Equal(t, 7, stats.Tasks)
	assert.GreaterOrEqual(t, stats.Clusters, 1)
	assert.Equal(t, 17.0, testutil.ToFloat64(d.Metrics.GraphNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Missions.WithLabelValues(metrics.StatusCompleted)))

	// A second mission replaces the generated batch and keeps the seed.
	_, err = d.HandleCommand(context.Background(), "Ocean currents", nil)
	require.NoError(t, err)
	assert.Equal(t, 17, d.Stats().Nodes)
}

func TestHandleCommand_Empty(t *testing.T) {
	d := newTestDeren(nil)
	_, err := d.HandleCommand(context.Background(), "   ", nil)
	assert.True(t, common.IsValidationKind(err, common.InvalidField))
}

func TestHandleCommand_MissionFailureLeavesGraph(t *testing.T) {
	d := newTestDeren(nil)
	require.NoError(t, d.Seed())
	d.Orchestrator.Planner = mission.StaticPlanner{Steps: []string{}}

	_, err := d.HandleCommand(context.Background(), "Broken", nil)
	var execErr *common.MissionExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 4, d.Stats().Nodes)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Missions.WithLabelValues(metrics.StatusFailed)))
}

func TestManualEditing(t *testing.T) {
	d := newTestDeren(nil)

	a, err := d.CreateResearchNode(model.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "node-uuid-1", a.ID)
	assert.Equal(t, ResearchNodeLabel, a.Label)
	assert.Equal(t, model.NodeConcept, a.Type)

	b, err := d.CreateCanvasPage(model.Position{X: 30, Y: 40})
	require.NoError(t, err)

	conn, err := d.Connect(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "conn_node-uuid-1_canvas-uuid-2", conn.ID)
	assert.Equal(t, model.RelatesTo, conn.Type)
	assert.Equal(t, ManualStrength, conn.Strength)

	_, err = d.Connect(a.ID, "ghost")
	assert.True(t, common.IsValidationKind(err, common.DanglingConnection))

	a.Label = "Edited"
	require.NoError(t, d.UpdateNode(a))
	got, ok := d.Graph.Node(a.ID)
	require.True(t, ok)
	assert.Equal(t, "Edited", got.Label)

	require.NoError(t, d.RemoveNode(a.ID))
	assert.Equal(t, Stats{Nodes: 1}, d.Stats())

	d.Clear()
	assert.Equal(t, Stats{}, d.Stats())
}

func TestMission_UserEdgeToGeneratedNodeSurvivesRoundTrip(t *testing.T) {
	d := newTestDeren(nil)
	ctx := context.Background()

	first, err := d.HandleCommand(ctx, "first mission", nil)
	require.NoError(t, err)
	mine, err := d.CreateResearchNode(model.Position{X: 5, Y: 5})
	require.NoError(t, err)
	_, err = d.Connect(mine.ID, first.Batch.Nodes[0].ID)
	require.NoError(t, err)

	_, err = d.HandleCommand(ctx, "second mission", nil)
	require.NoError(t, err)
	_, ok := d.Graph.Node(mine.ID)
	assert.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, d.SaveProject(&buf, "round trip"))
	_, err = d.LoadProject(&buf)
	require.NoError(t, err)
	assert.Equal(t, 14, d.Stats().Nodes)
	assert.Equal(t, 15, d.Stats().Connections)
}

func TestAddNode_RejectsReservedPrefix(t *testing.T) {
	d := newTestDeren(nil)
	err := d.AddNode(model.NewNode(model.GeneratedPrefix+"mine", "Mine", model.NodeConcept, model.Position{}, ""))
	assert.True(t, common.IsValidationKind(err, common.InvalidField))
	assert.Zero(t, d.Stats().Nodes)
}

func TestPersistRestore(t *testing.T) {
	repo := &MockRepository{}
	d := newTestDeren(repo)
	require.NoError(t, d.Seed())

	require.NoError(t, d.Persist(context.Background()))
	assert.Equal(t, 1, repo.Saves)
	assert.Len(t, repo.Nodes, 4)

	d.Clear()
	require.NoError(t, d.Restore(context.Background()))
	assert.Equal(t, 4, d.Stats().Nodes)
	assert.Equal(t, 4, d.Stats().Connections)

	repo.Err = errors.New("connection refused")
	assert.Error(t, d.Persist(context.Background()))
	assert.Error(t, d.Restore(context.Background()))
	assert.Equal(t, 4, d.Stats().Nodes)
}

func TestPersist_NoRepository(t *testing.T) {
	d := newTestDeren(nil)
	assert.ErrorIs(t, d.Persist(context.Background()), ErrNoRepository)
	assert.ErrorIs(t, d.Restore(context.Background()), ErrNoRepository)
}

func TestSearch(t *testing.T) {
	d := newTestDeren(nil)
	require.NoError(t, d.AddNode(model.NewNode("a", "Solar power", model.NodeConcept, model.Position{}, "")))
	require.NoError(t, d.AddNode(model.NewNode("b", "Wind farms", model.NodeConcept, model.Position{}, "")))
	require.NoError(t, d.AddNode(model.NewNode("c", "Tax policy", model.NodeConcept, model.Position{}, "")))

	hits, err := d.Search(context.Background(), "solar", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Node.ID)

	d.Tools = &MockEmbedTool{Vectors: map[string][]float32{
		"renewables":    {1, 0},
		"Solar power\n": {0.9, 0.1},
		"Wind farms\n":  {0.8, 0.2},
		"Tax policy\n":  {0, 1},
	}}
	hits, err = d.Search(context.Background(), "renewables", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Node.ID)
	assert.Equal(t, "b", hits[1].Node.ID)
}
