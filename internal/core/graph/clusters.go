package graph

import (
	"sort"

	"github.com/agenthands/deren/internal/core/model"
)

// MaxPropagationRounds bounds label propagation.
const MaxPropagationRounds = 20

// Cluster is a group of nodes that are more tightly connected to each other
// than to the rest of the map.
type Cluster struct {
	Label   string   `json:"label"`
	NodeIDs []string `json:"node_ids"`
}

// Clusters groups nodes by label propagation over connections weighted by
// strength. Direction is ignored. Singletons are dropped. Ties go to the
// lexicographically largest label so the result is deterministic.
func Clusters(nodes []model.Node, conns []model.Connection) []Cluster {
	if len(nodes) == 0 {
		return nil
	}

	adj := make(map[string]map[string]float64, len(nodes))
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		adj[n.ID] = make(map[string]float64)
		labels[n.ID] = n.ID
	}
	for _, c := range conns {
		if _, ok := adj[c.From]; !ok {
			continue
		}
		if _, ok := adj[c.To]; !ok {
			continue
		}
		adj[c.From][c.To] += c.Strength
		adj[c.To][c.From] += c.Strength
	}

	for round := 0; round < MaxPropagationRounds; round++ {
		changed := 0
		for _, n := range nodes {
			neighbors := adj[n.ID]
			if len(neighbors) == 0 {
				continue
			}

			weights := make(map[string]float64)
			best := 0.0
			for v, w := range neighbors {
				weights[labels[v]] += w
				if weights[labels[v]] > best {
					best = weights[labels[v]]
				}
			}

			var candidates []string
			for label, w := range weights {
				if best-w < 1e-9 {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			next := candidates[len(candidates)-1]

			if labels[n.ID] != next {
				labels[n.ID] = next
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[string][]string)
	for _, n := range nodes {
		groups[labels[n.ID]] = append(groups[labels[n.ID]], n.ID)
	}

	var clusters []Cluster
	for label, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		clusters = append(clusters, Cluster{Label: label, NodeIDs: ids})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].NodeIDs) != len(clusters[j].NodeIDs) {
			return len(clusters[i].NodeIDs) > len(clusters[j].NodeIDs)
		}
		return clusters[i].Label < clusters[j].Label
	})
	return clusters
}

// Clusters runs Clusters on the current graph.
func (s *Store) Clusters() []Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clusters(s.nodes, s.connections)
}
