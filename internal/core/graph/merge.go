package graph

import "github.com/agenthands/deren/internal/core/model"

// MergeGenerated discards every generated entry from the existing collections
// and appends the batch. User-authored entries are kept in order, except user
// connections left pointing at a discarded generated node. Applying the same
// batch twice yields the same collections as applying it once.
func MergeGenerated(nodes []model.Node, conns []model.Connection, batch model.Batch) ([]model.Node, []model.Connection) {
	outNodes := make([]model.Node, 0, len(nodes)+len(batch.Nodes))
	for _, n := range nodes {
		if !model.IsGenerated(n.ID) {
			outNodes = append(outNodes, n.Clone())
		}
	}
	for _, n := range batch.Nodes {
		outNodes = append(outNodes, n.Clone())
	}

	ids := make(map[string]struct{}, len(outNodes))
	for _, n := range outNodes {
		ids[n.ID] = struct{}{}
	}

	outConns := make([]model.Connection, 0, len(conns)+len(batch.Connections))
	for _, c := range conns {
		if model.IsGenerated(c.ID) {
			continue
		}
		_, okFrom := ids[c.From]
		_, okTo := ids[c.To]
		if okFrom && okTo {
			outConns = append(outConns, c)
		}
	}
	outConns = append(outConns, batch.Connections...)

	return outNodes, outConns
}
