package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agenthands/deren/internal/core/model"
)

// NodeSaver persists a single node.
type NodeSaver interface {
	SaveNode(ctx context.Context, node model.Node) error
}

// StoreTool persists the input node through saver. A node without an id is
// given one.
func StoreTool(saver NodeSaver) Tool {
	return ToolFunc{
		ToolName: StoreNode,
		Fn: func(ctx context.Context, in Input) Result {
			if in.Node == nil {
				return Fail(StoreNode, ReasonBadInput, fmt.Errorf("no node given"))
			}
			node := in.Node.Clone()
			if node.ID == "" {
				node.ID = uuid.NewString()
			}
			if err := saver.SaveNode(ctx, node); err != nil {
				return Fail(StoreNode, ReasonProvider, err)
			}
			return Success(Stored{NodeID: node.ID, Stored: true})
		},
	}
}
