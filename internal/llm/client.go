// Package llm adapts hosted model APIs to the two calls the mission tools
// need: a text completion and an embedding.
package llm

import (
	"context"
	"errors"

	"github.com/agenthands/deren/internal/config"
)

// DefaultSystem frames every completion as mind-map research work. Tool
// prompts ask for JSON, so the persona keeps answers terse.
const DefaultSystem = "You are the research assistant behind a visual mind map. " +
	"Answer concisely. When asked for JSON, reply with JSON only."

const defaultMaxTokens = 1024

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("llm: empty response")

// LLMClient generates a text completion for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns text into a dense vector.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options tune every completion a client issues.
type Options struct {
	System      string
	Temperature *float32
	MaxTokens   int
}

// OptionsFrom fills unset fields from the package defaults and clamps the
// tuning values to ranges every provider accepts.
func OptionsFrom(cfg config.LLMConfig) Options {
	o := Options{System: cfg.System, MaxTokens: cfg.MaxTokens}
	if o.System == "" {
		o.System = DefaultSystem
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature != nil {
		t := min(max(*cfg.Temperature, 0), 1)
		o.Temperature = &t
	}
	return o
}
