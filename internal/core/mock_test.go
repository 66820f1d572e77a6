package core

import (
	"context"

	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/tools"
)

type MockRepository struct {
	Nodes       []model.Node
	Connections []model.Connection
	Err         error
	Saves       int
}

func (m *MockRepository) SaveGraph(ctx context.Context, nodes []model.Node, conns []model.Connection) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saves++
	m.Nodes = append([]model.Node{}, nodes...)
	m.Connections = append([]model.Connection{}, conns...)
	return nil
}

func (m *MockRepository) LoadGraph(ctx context.Context) ([]model.Node, []model.Connection, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Nodes, m.Connections, nil
}

// MockEmbedTool answers embed calls from Vectors keyed by input text.
type MockEmbedTool struct {
	Vectors map[string][]float32
}

func (m *MockEmbedTool) Invoke(ctx context.Context, name string, in tools.Input) tools.Result {
	if name != tools.Embed {
		return tools.Fail(name, tools.ReasonNotRegistered, nil)
	}
	vec, ok := m.Vectors[in.Text]
	if !ok {
		return tools.Fail(name, tools.ReasonProvider, nil)
	}
	return tools.Success(tools.Embedding{Vector: vec})
}
