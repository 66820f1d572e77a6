// Package graph owns the canonical mind map. All mutation goes through Store so
// the node and connection invariants hold between calls.
package graph

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/model"
)

type Store struct {
	mu          sync.RWMutex
	nodes       []model.Node
	connections []model.Connection
	logger      *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Snapshot returns deep copies of the current collections.
func (s *Store) Snapshot() ([]model.Node, []model.Connection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNodes(s.nodes), append([]model.Connection{}, s.connections...)
}

func (s *Store) Counts() (nodes, connections int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.connections)
}

func (s *Store) Node(id string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.nodes[i].Clone(), true
	}
	return model.Node{}, false
}

// ApplyGenerated swaps the previous mission output for batch.
func (s *Store) ApplyGenerated(batch model.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes, s.connections = MergeGenerated(s.nodes, s.connections, batch)
	s.logger.Info("Applied generated batch",
		zap.Int("batch_nodes", len(batch.Nodes)),
		zap.Int("batch_connections", len(batch.Connections)),
		zap.Int("total_nodes", len(s.nodes)),
	)
}

// errReservedID is returned for user-authored ids carrying the generated prefix.
var errReservedID = fmt.Errorf("id prefix %q is reserved for generated entries", model.GeneratedPrefix)

// AddNode appends a user-authored node.
func (s *Store) AddNode(node model.Node) error {
	if model.IsGenerated(node.ID) {
		return &common.ValidationError{Kind: common.InvalidField, ID: node.ID, Err: errReservedID}
	}
	if err := node.Validate(); err != nil {
		return &common.ValidationError{Kind: common.InvalidField, ID: node.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(node.ID) >= 0 {
		return &common.ValidationError{Kind: common.DuplicateNode, ID: node.ID}
	}
	s.nodes = append(s.nodes, node.Clone())
	return nil
}

// UpdateNode replaces the stored node with the same id.
func (s *Store) UpdateNode(node model.Node) error {
	if err := node.Validate(); err != nil {
		return &common.ValidationError{Kind: common.InvalidField, ID: node.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(node.ID)
	if i < 0 {
		return &common.ValidationError{Kind: common.UnknownNode, ID: node.ID}
	}
	s.nodes[i] = node.Clone()
	return nil
}

// RemoveNode deletes the node and every connection with it as an endpoint.
func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &common.ValidationError{Kind: common.UnknownNode, ID: id}
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)

	kept := s.connections[:0]
	removed := 0
	for _, c := range s.connections {
		if c.From == id || c.To == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.connections = kept

	s.logger.Debug("Removed node", zap.String("node_id", id), zap.Int("connections_removed", removed))
	return nil
}

// AddConnection rejects connections whose endpoints are absent and ids already in use.
func (s *Store) AddConnection(conn model.Connection) error {
	if model.IsGenerated(conn.ID) {
		return &common.ValidationError{Kind: common.InvalidField, ID: conn.ID, Err: errReservedID}
	}
	if err := conn.Validate(); err != nil {
		return &common.ValidationError{Kind: common.InvalidField, ID: conn.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, endpoint := range []string{conn.From, conn.To} {
		if s.indexOf(endpoint) < 0 {
			return &common.ValidationError{
				Kind: common.DanglingConnection,
				ID:   conn.ID,
				Err:  fmt.Errorf("endpoint %q does not exist", endpoint),
			}
		}
	}
	for _, c := range s.connections {
		if c.ID == conn.ID {
			return &common.ValidationError{Kind: common.DuplicateConnection, ID: conn.ID}
		}
	}
	s.connections = append(s.connections, conn)
	return nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.connections = nil
}

// Replace swaps in a full graph after checking it.
func (s *Store) Replace(nodes []model.Node, conns []model.Connection) error {
	if err := CheckGraph(nodes, conns); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = cloneNodes(nodes)
	s.connections = append([]model.Connection{}, conns...)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// CheckGraph validates a whole graph: field constraints, unique ids and
// endpoints that resolve.
func CheckGraph(nodes []model.Node, conns []model.Connection) error {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return &common.ValidationError{Kind: common.InvalidField, ID: n.ID, Err: err}
		}
		if _, dup := ids[n.ID]; dup {
			return &common.ValidationError{Kind: common.DuplicateNode, ID: n.ID}
		}
		ids[n.ID] = struct{}{}
	}

	connIDs := make(map[string]struct{}, len(conns))
	for _, c := range conns {
		if err := c.Validate(); err != nil {
			return &common.ValidationError{Kind: common.InvalidField, ID: c.ID, Err: err}
		}
		if _, dup := connIDs[c.ID]; dup {
			return &common.ValidationError{Kind: common.DuplicateConnection, ID: c.ID}
		}
		connIDs[c.ID] = struct{}{}
		_, okFrom := ids[c.From]
		_, okTo := ids[c.To]
		if !okFrom || !okTo {
			return &common.ValidationError{Kind: common.DanglingConnection, ID: c.ID}
		}
	}
	return nil
}

func cloneNodes(nodes []model.Node) []model.Node {
	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
