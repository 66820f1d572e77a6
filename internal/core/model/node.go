package model

import (
	"strings"
	"time"
)

// GeneratedPrefix marks nodes and connections produced by a mission run.
// Everything carrying it is replaced wholesale by the next mission.
const GeneratedPrefix = "ai-gen-"

type NodeType string

const (
	NodeRoot     NodeType = "root"
	NodeConcept  NodeType = "concept"
	NodeFinding  NodeType = "finding"
	NodeQuestion NodeType = "question"
	NodeSource   NodeType = "source"
	NodeCanvas   NodeType = "canvas"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeMetadata struct {
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	Tags       []string  `json:"tags"`
}

type Node struct {
	ID       string   `json:"id" validate:"required"`
	Label    string   `json:"label"`
	Type     NodeType `json:"type" validate:"required,oneof=root concept finding question source canvas"`
	Position Position `json:"position"`
	Content  string   `json:"content"`
	// Paths holds SVG path data drawn on canvas pages.
	Paths         []string     `json:"paths,omitempty"`
	Relationships []string     `json:"relationships"`
	Metadata      NodeMetadata `json:"metadata"`
}

func NewNode(id, label string, nodeType NodeType, pos Position, content string) Node {
	return Node{
		ID:            id,
		Label:         label,
		Type:          nodeType,
		Position:      pos,
		Content:       content,
		Relationships: []string{},
		Metadata: NodeMetadata{
			Timestamp:  time.Now().UTC(),
			Confidence: 1.0,
			Tags:       []string{},
		},
	}
}

// AddTag inserts tag unless already present.
func (n *Node) AddTag(tag string) {
	for _, t := range n.Metadata.Tags {
		if t == tag {
			return
		}
	}
	n.Metadata.Tags = append(n.Metadata.Tags, tag)
}

// Clone returns a copy that shares no slices with n.
func (n Node) Clone() Node {
	c := n
	c.Paths = append([]string(nil), n.Paths...)
	c.Relationships = append([]string{}, n.Relationships...)
	c.Metadata.Tags = append([]string{}, n.Metadata.Tags...)
	return c
}

func IsGenerated(id string) bool {
	return strings.HasPrefix(id, GeneratedPrefix)
}

// IsGenerated reports whether the node came from a mission batch.
func (n Node) IsGenerated() bool {
	return IsGenerated(n.ID)
}
