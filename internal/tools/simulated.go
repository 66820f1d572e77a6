package tools

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/deren/internal/core/common"
)

// EmbeddingDimensions is the vector size produced by the simulated embedder.
const EmbeddingDimensions = 384

// wait suspends for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// simulated wraps fn with a latency suspension point and an empty-input check.
func simulated(name string, delay time.Duration, fn func(in Input) (any, error)) Tool {
	return ToolFunc{
		ToolName: name,
		Fn: func(ctx context.Context, in Input) Result {
			if err := wait(ctx, delay); err != nil {
				return Fail(name, ReasonCancelled, err)
			}
			data, err := fn(in)
			if err != nil {
				return Fail(name, ReasonBadInput, err)
			}
			return Success(data)
		},
	}
}

func requireText(in Input) error {
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("empty input")
	}
	return nil
}

// Simulated returns offline providers for every capability. They produce
// templated payloads and never reach the network. delay scales each tool's
// latency; zero disables it.
func Simulated(delay time.Duration) []Tool {
	scale := func(weight float64) time.Duration {
		return time.Duration(float64(delay) * weight)
	}

	return []Tool{
		simulated(SearchWeb, scale(0.8), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return []SearchHit{{
				Title:   "Search result for " + in.Text,
				URL:     "https://example.com",
				Snippet: "Relevant information found...",
			}}, nil
		}),
		simulated(FetchURL, scale(0.6), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return Page{URL: in.Text, Content: "Content from " + in.Text, Title: "Example Page"}, nil
		}),
		simulated(Summarize, scale(0.5), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return SummaryData{
				Summary:   "Summary of: " + common.Truncate(in.Text, 50),
				KeyPoints: []string{"Point 1", "Point 2"},
			}, nil
		}),
		simulated(ExtractData, scale(0.4), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return Extracted{
				Entities: []string{"Entity 1", "Entity 2"},
				Facts:    []string{"Fact 1", "Fact 2"},
			}, nil
		}),
		simulated(StoreNode, scale(0.3), func(in Input) (any, error) {
			if in.Node == nil {
				return nil, fmt.Errorf("no node given")
			}
			return Stored{NodeID: uuid.NewString(), Stored: true}, nil
		}),
		simulated(AskFollowup, scale(1.0), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return Answer{Answer: "Analysis of: " + in.Text, Confidence: 0.8}, nil
		}),
		simulated(Embed, scale(0.2), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return Embedding{Vector: PseudoVector(in.Text, EmbeddingDimensions)}, nil
		}),
		simulated(ReadFile, scale(0.3), func(in Input) (any, error) {
			if err := requireText(in); err != nil {
				return nil, err
			}
			return FileData{Path: in.Text, Content: "File content from " + in.Text, Type: "text"}, nil
		}),
	}
}

// PseudoVector returns a deterministic vector in [0,1) seeded by text.
func PseudoVector(text string, dims int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = r.Float32()
	}
	return vec
}
