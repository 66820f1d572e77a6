// Package store persists mind maps to a Bolt graph database (Memgraph or Neo4j).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/driver"
)

const DefaultMap = "default"

// GraphRepository stores one named map per MindNode.map property.
type GraphRepository struct {
	Driver driver.GraphDriver
	Map    string
	logger *zap.Logger
}

func NewGraphRepository(d driver.GraphDriver, mapName string, logger *zap.Logger) *GraphRepository {
	if mapName == "" {
		mapName = DefaultMap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphRepository{Driver: d, Map: mapName, logger: logger}
}

func (r *GraphRepository) nodeParams(n model.Node) map[string]any {
	paths := n.Paths
	if paths == nil {
		paths = []string{}
	}
	tags := n.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":         n.ID,
		"map":        r.Map,
		"label":      n.Label,
		"type":       string(n.Type),
		"x":          n.Position.X,
		"y":          n.Position.Y,
		"content":    n.Content,
		"paths":      paths,
		"timestamp":  n.Metadata.Timestamp.UTC().Format(time.RFC3339Nano),
		"confidence": n.Metadata.Confidence,
		"tags":       tags,
	}
}

// SaveNode upserts a single node.
func (r *GraphRepository) SaveNode(ctx context.Context, n model.Node) error {
	if _, err := r.Driver.ExecuteQuery(ctx, driver.SaveMindNodeQuery, r.nodeParams(n)); err != nil {
		return fmt.Errorf("failed to save node %s: %w", n.ID, err)
	}
	return nil
}

// SaveGraph replaces the stored map with nodes and conns in one transaction.
func (r *GraphRepository) SaveGraph(ctx context.Context, nodes []model.Node, conns []model.Connection) error {
	stmts := make([]driver.Statement, 0, 1+len(nodes)+len(conns))
	stmts = append(stmts, driver.Statement{Query: driver.DeleteMapQuery, Params: map[string]any{"map": r.Map}})
	for _, n := range nodes {
		stmts = append(stmts, driver.Statement{Query: driver.SaveMindNodeQuery, Params: r.nodeParams(n)})
	}
	for _, c := range conns {
		stmts = append(stmts, driver.Statement{Query: driver.SaveConnectionQuery, Params: map[string]any{
			"id":       c.ID,
			"from":     c.From,
			"to":       c.To,
			"type":     string(c.Type),
			"strength": c.Strength,
			"map":      r.Map,
		}})
	}

	if err := r.Driver.ExecuteWrite(ctx, stmts); err != nil {
		return fmt.Errorf("failed to persist map %s: %w", r.Map, err)
	}

	r.logger.Info("Persisted map",
		zap.String("map", r.Map),
		zap.Int("nodes", len(nodes)),
		zap.Int("connections", len(conns)),
	)
	return nil
}

// LoadGraph reads the stored map back.
func (r *GraphRepository) LoadGraph(ctx context.Context) ([]model.Node, []model.Connection, error) {
	params := map[string]any{"map": r.Map}

	nodeRes, err := r.Driver.ExecuteQuery(ctx, driver.GetMapNodesQuery, params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	nodes := make([]model.Node, 0, len(nodeRes.Records))
	for _, rec := range nodeRes.Records {
		nodes = append(nodes, nodeFromRecord(rec))
	}

	connRes, err := r.Driver.ExecuteQuery(ctx, driver.GetMapConnectionsQuery, params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load connections: %w", err)
	}
	conns := make([]model.Connection, 0, len(connRes.Records))
	for _, rec := range connRes.Records {
		conns = append(conns, model.Connection{
			ID:       stringField(rec, "id"),
			From:     stringField(rec, "from"),
			To:       stringField(rec, "to"),
			Type:     model.ConnectionType(stringField(rec, "type")),
			Strength: floatField(rec, "strength"),
		})
	}
	return nodes, conns, nil
}

func nodeFromRecord(rec *neo4j.Record) model.Node {
	n := model.NewNode(
		stringField(rec, "id"),
		stringField(rec, "label"),
		model.NodeType(stringField(rec, "type")),
		model.Position{X: floatField(rec, "x"), Y: floatField(rec, "y")},
		stringField(rec, "content"),
	)
	n.Paths = stringsField(rec, "paths")
	if len(n.Paths) == 0 {
		n.Paths = nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, stringField(rec, "timestamp")); err == nil {
		n.Metadata.Timestamp = ts
	}
	n.Metadata.Confidence = floatField(rec, "confidence")
	n.Metadata.Tags = stringsField(rec, "tags")
	return n
}

func stringField(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func floatField(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	}
	return 0
}

func stringsField(rec *neo4j.Record, key string) []string {
	out := []string{}
	v, _ := rec.Get(key)
	switch list := v.(type) {
	case []interface{}:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, list...)
	}
	return out
}
