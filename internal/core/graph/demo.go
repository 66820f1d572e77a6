package graph

import "github.com/agenthands/deren/internal/core/model"

// DemoGraph is the starter map shown on a fresh canvas.
func DemoGraph() ([]model.Node, []model.Connection) {
	nodes := []model.Node{
		model.NewNode("demo-root", "DEREN Research System", model.NodeRoot, model.Position{X: 0, Y: 0},
			"Your AI-powered research companion for deep investigation and knowledge synthesis"),
		model.NewNode("demo-concept-1", "AI Research Agent", model.NodeConcept, model.Position{X: -300, Y: -200},
			"Autonomous reasoning and task execution capabilities"),
		model.NewNode("demo-concept-2", "Visual Mind Mapping", model.NodeConcept, model.Position{X: 300, Y: -200},
			"Interactive knowledge graph visualization"),
		model.NewNode("demo-finding-1", "Human-AI Collaboration", model.NodeFinding, model.Position{X: 0, Y: 250},
			"Seamless integration of human intuition and AI analysis"),
	}
	conns := []model.Connection{
		model.NewConnection("demo-root", "demo-concept-1", model.RelatesTo, 0.9),
		model.NewConnection("demo-root", "demo-concept-2", model.RelatesTo, 0.9),
		model.NewConnection("demo-root", "demo-finding-1", model.Supports, 0.8),
		model.NewConnection("demo-concept-1", "demo-finding-1", model.Supports, 0.7),
	}
	return nodes, conns
}

// Seed replaces the graph with DemoGraph.
func (s *Store) Seed() error {
	nodes, conns := DemoGraph()
	return s.Replace(nodes, conns)
}
