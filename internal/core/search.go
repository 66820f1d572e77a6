package core

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/tools"
)

const DefaultSearchLimit = 5

// SearchHit is a node ranked against a query.
type SearchHit struct {
	Node  model.Node `json:"node"`
	Score float64    `json:"score"`
}

// Search ranks nodes by a text match on label or content plus, when the
// embed tool is available, cosine similarity between embeddings.
func (d *Deren) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	nodes, _ := d.Graph.Snapshot()
	queryVector := d.embed(ctx, query)
	needle := strings.ToLower(query)

	hits := make([]SearchHit, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score := 0.0
		if strings.Contains(strings.ToLower(n.Label), needle) || strings.Contains(strings.ToLower(n.Content), needle) {
			score = 1
		}
		if queryVector != nil {
			if vec := d.embed(ctx, n.Label+"\n"+n.Content); vec != nil {
				score += cosine(queryVector, vec)
			}
		}
		if score > 0 {
			hits = append(hits, SearchHit{Node: n, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// embed returns nil when no embed tool is registered or it fails.
func (d *Deren) embed(ctx context.Context, text string) []float32 {
	if d.Tools == nil {
		return nil
	}
	res := d.Tools.Invoke(ctx, tools.Embed, tools.Input{Text: text})
	if !res.OK() {
		return nil
	}
	emb, ok := res.Data.(tools.Embedding)
	if !ok {
		return nil
	}
	return emb.Vector
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
