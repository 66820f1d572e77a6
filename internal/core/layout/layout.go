// Package layout places a mission's synthesis on concentric rings around a
// root node. Positions depend only on ring sizes, so identical counts always
// produce bit-identical coordinates.
package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/deren/internal/core/model"
)

const (
	ConceptRadius = 350.0
	FindingRadius = 550.0
	SourceRadius  = 250.0
	SourceSlots   = 4

	ConceptStrength = 0.8
	FindingStrength = 0.9
	LinkStrength    = 0.7
	SourceStrength  = 0.6
)

var sourceAngles = [SourceSlots]float64{math.Pi / 4, 3 * math.Pi / 4, 5 * math.Pi / 4, 7 * math.Pi / 4}

var sourceLabels = [SourceSlots]string{"Primary Sources", "Expert Opinions", "Research Data", "Case Studies"}

// Placement holds ring positions for one layout.
type Placement struct {
	Root     model.Position
	Concepts []model.Position
	Findings []model.Position
	Sources  [SourceSlots]model.Position
}

func polar(radius, angle float64) model.Position {
	return model.Position{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
}

// ConceptAngle is 2πi/c. Callers guarantee c > 0.
func ConceptAngle(i, c int) float64 {
	return float64(i) / float64(c) * 2 * math.Pi
}

// FindingAngle is offset by π/m so findings sit between concepts.
func FindingAngle(j, m int) float64 {
	return float64(j)/float64(m)*2*math.Pi + math.Pi/float64(m)
}

// Positions computes the placement for c concepts and m findings.
func Positions(c, m int) Placement {
	p := Placement{
		Concepts: make([]model.Position, 0, max(c, 0)),
		Findings: make([]model.Position, 0, max(m, 0)),
	}
	for i := 0; i < c; i++ {
		p.Concepts = append(p.Concepts, polar(ConceptRadius, ConceptAngle(i, c)))
	}
	for j := 0; j < m; j++ {
		p.Findings = append(p.Findings, polar(FindingRadius, FindingAngle(j, m)))
	}
	for k, a := range sourceAngles {
		p.Sources[k] = polar(SourceRadius, a)
	}
	return p
}

// IDFunc returns a unique suffix for generated node ids.
type IDFunc func() string

// Engine turns a synthesis into a generated batch.
type Engine struct {
	NewID IDFunc
}

func NewEngine() *Engine {
	return &Engine{NewID: uuid.NewString}
}

func (e *Engine) nodeID(kind string) string {
	return fmt.Sprintf("%s%s-%s", model.GeneratedPrefix, kind, e.NewID())
}

// Build lays out the synthesis for mission and returns the generated batch.
// Every node and connection id carries model.GeneratedPrefix.
func (e *Engine) Build(mission string, s model.Synthesis) model.Batch {
	c, m := len(s.KeyFindings), len(s.Recommendations)
	p := Positions(c, m)

	nodes := make([]model.Node, 0, 1+c+m+SourceSlots)
	conns := make([]model.Connection, 0, c+m+min(c, m)+SourceSlots)

	root := model.NewNode(e.nodeID("root"), mission, model.NodeRoot, p.Root, s.Summary)
	root.Metadata.Confidence = s.Confidence
	nodes = append(nodes, root)

	concepts := make([]model.Node, c)
	for i, finding := range s.KeyFindings {
		n := model.NewNode(
			e.nodeID("concept"),
			strings.Replace(finding, "Finding ", "Research Area ", 1),
			model.NodeConcept,
			p.Concepts[i],
			"Detailed analysis of "+finding,
		)
		concepts[i] = n
		nodes = append(nodes, n)
		conns = append(conns, model.NewGeneratedConnection(root.ID, n.ID, model.RelatesTo, ConceptStrength))
	}

	for j, rec := range s.Recommendations {
		n := model.NewNode(
			e.nodeID("finding"),
			fmt.Sprintf("Key Insight %d", j+1),
			model.NodeFinding,
			p.Findings[j],
			rec,
		)
		nodes = append(nodes, n)
		conns = append(conns, model.NewGeneratedConnection(root.ID, n.ID, model.Supports, FindingStrength))
		if j < c {
			conns = append(conns, model.NewGeneratedConnection(concepts[j].ID, n.ID, model.Supports, LinkStrength))
		}
	}

	for k, label := range sourceLabels {
		n := model.NewNode(
			e.nodeID("source"),
			label,
			model.NodeSource,
			p.Sources[k],
			"Supporting documentation and references for "+strings.ToLower(label),
		)
		nodes = append(nodes, n)
		conns = append(conns, model.NewGeneratedConnection(root.ID, n.ID, model.DependsOn, SourceStrength))
	}

	return model.Batch{Nodes: nodes, Connections: conns}
}
