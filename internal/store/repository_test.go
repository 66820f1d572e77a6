package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/driver"
)

func TestSaveGraph_ClearsThenWrites(t *testing.T) {
	d := &MockDriver{}
	repo := NewGraphRepository(d, "research", nil)

	a := model.NewNode("a", "A", model.NodeRoot, model.Position{X: 1, Y: 2}, "")
	b := model.NewNode("b", "B", model.NodeConcept, model.Position{}, "")
	conn := model.NewConnection("a", "b", model.RelatesTo, 0.8)

	require.NoError(t, repo.SaveGraph(context.Background(), []model.Node{a, b}, []model.Connection{conn}))

	assert.Equal(t, 1, d.Batches)
	require.Len(t, d.Executed, 4)
	assert.Equal(t, driver.DeleteMapQuery, d.Executed[0].Query)
	assert.Equal(t, driver.SaveMindNodeQuery, d.Executed[1].Query)
	assert.Equal(t, "research", d.Executed[1].Params["map"])
	assert.Equal(t, 1.0, d.Executed[1].Params["x"])
	assert.Equal(t, []string{}, d.Executed[1].Params["paths"])
	assert.Equal(t, driver.SaveConnectionQuery, d.Executed[3].Query)
	assert.Equal(t, "conn_a_b", d.Executed[3].Params["id"])
}

func TestSaveGraph_PropagatesErrors(t *testing.T) {
	d := &MockDriver{Err: errors.New("down")}
	repo := NewGraphRepository(d, "", nil)
	assert.Equal(t, DefaultMap, repo.Map)

	err := repo.SaveGraph(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "down")
	assert.Empty(t, d.Executed)
}

func TestLoadGraph_DecodesRecords(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	nodeRec := &neo4j.Record{
		Keys: []string{"id", "label", "type", "x", "y", "content", "paths", "timestamp", "confidence", "tags"},
		Values: []any{"canvas-1", "Canvas", "canvas", 250.0, int64(300), "notes",
			[]any{"M 0 0 L 1 1"}, ts.Format(time.RFC3339Nano), 0.9, []any{"sketch"}},
	}
	connRec := &neo4j.Record{
		Keys:   []string{"id", "from", "to", "type", "strength"},
		Values: []any{"conn_x_y", "x", "y", "supports", 0.7},
	}
	d := &MockDriver{ResultQueue: []neo4j.EagerResult{
		{Records: []*neo4j.Record{nodeRec}},
		{Records: []*neo4j.Record{connRec}},
	}}

	nodes, conns, err := NewGraphRepository(d, "m", nil).LoadGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, model.NodeCanvas, nodes[0].Type)
	assert.Equal(t, model.Position{X: 250, Y: 300}, nodes[0].Position)
	assert.Equal(t, []string{"M 0 0 L 1 1"}, nodes[0].Paths)
	assert.Equal(t, []string{"sketch"}, nodes[0].Metadata.Tags)
	assert.True(t, ts.Equal(nodes[0].Metadata.Timestamp))
	assert.Equal(t, 0.9, nodes[0].Metadata.Confidence)

	require.Len(t, conns, 1)
	assert.Equal(t, model.Supports, conns[0].Type)
	assert.Equal(t, 0.7, conns[0].Strength)
}
