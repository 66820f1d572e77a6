package tools

import (
	"net/http"
	"time"

	"github.com/agenthands/deren/internal/config"
	"github.com/agenthands/deren/internal/llm"
)

// Providers selects the backends for the default capability set. Nil fields
// leave the simulated provider in place.
type Providers struct {
	LLM        llm.LLMClient
	Embedder   llm.EmbedderClient
	Saver      NodeSaver
	HTTPClient *http.Client
	Prompts    *Prompts
}

// DefaultTools builds one provider per capability, preferring real backends
// where p supplies them.
func DefaultTools(cfg config.ToolsConfig, delay time.Duration, p Providers) []Tool {
	byName := make(map[string]Tool, len(Names))
	for _, t := range Simulated(delay) {
		byName[t.Name()] = t
	}

	if p.LLM != nil {
		prompts := DefaultPrompts
		if p.Prompts != nil {
			prompts = *p.Prompts
		}
		for _, t := range LLMTools(p.LLM, prompts) {
			byName[t.Name()] = t
		}
	}
	if p.Embedder != nil {
		byName[Embed] = EmbedTool(p.Embedder)
	}
	if p.Saver != nil {
		byName[StoreNode] = StoreTool(p.Saver)
	}
	if cfg.LiveFetch {
		byName[FetchURL] = FetchTool(p.HTTPClient, cfg.FetchTimeout.Duration, cfg.MaxFetchSize)
	}
	if cfg.FileRoot != "" {
		byName[ReadFile] = FileTool(cfg.FileRoot, cfg.MaxFetchSize)
	}

	out := make([]Tool, 0, len(Names))
	for _, name := range Names {
		out = append(out, byName[name])
	}
	return out
}

// RegisterDefaults registers DefaultTools on r.
func RegisterDefaults(r *Registry, cfg config.ToolsConfig, delay time.Duration, p Providers) error {
	for _, t := range DefaultTools(cfg, delay, p) {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
