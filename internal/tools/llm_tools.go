package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/llm"
)

// Prompts used by the LLM-backed providers. Each takes the input text as its
// only %s argument and asks for a JSON object.
type Prompts struct {
	Summarize   string
	ExtractData string
	AskFollowup string
}

var DefaultPrompts = Prompts{
	Summarize: `Summarize the following text for a research mind map.
Respond with JSON: {"summary": "...", "key_points": ["...", "..."]}

Text:
%s`,
	ExtractData: `Extract the named entities and the factual statements from the following text.
Respond with JSON: {"entities": ["..."], "facts": ["..."]}

Text:
%s`,
	AskFollowup: `Answer the following research question concisely and rate your confidence between 0 and 1.
Respond with JSON: {"answer": "...", "confidence": 0.0}

Question:
%s`,
}

// generative builds a provider that renders prompt, calls the model and
// parses the JSON response into T.
func generative[T any](name string, client llm.LLMClient, prompt string) Tool {
	return ToolFunc{
		ToolName: name,
		Fn: func(ctx context.Context, in Input) Result {
			if err := requireText(in); err != nil {
				return Fail(name, ReasonBadInput, err)
			}
			response, err := client.Generate(ctx, fmt.Sprintf(prompt, in.Text))
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return Fail(name, ReasonCancelled, err)
				}
				return Fail(name, ReasonProvider, fmt.Errorf("failed to generate: %w", err))
			}
			out, err := common.ParseJSON[T](response)
			if err != nil {
				return Fail(name, ReasonProvider, fmt.Errorf("failed to parse response: %w", err))
			}
			return Success(out)
		},
	}
}

// LLMTools returns summarize, extract_data and ask_followup backed by client.
func LLMTools(client llm.LLMClient, prompts Prompts) []Tool {
	return []Tool{
		generative[SummaryData](Summarize, client, prompts.Summarize),
		generative[Extracted](ExtractData, client, prompts.ExtractData),
		generative[Answer](AskFollowup, client, prompts.AskFollowup),
	}
}

// EmbedTool returns an embed provider backed by embedder.
func EmbedTool(embedder llm.EmbedderClient) Tool {
	return ToolFunc{
		ToolName: Embed,
		Fn: func(ctx context.Context, in Input) Result {
			if err := requireText(in); err != nil {
				return Fail(Embed, ReasonBadInput, err)
			}
			vec, err := embedder.Embed(ctx, in.Text)
			if err != nil {
				return Fail(Embed, ReasonProvider, fmt.Errorf("failed to embed: %w", err))
			}
			return Success(Embedding{Vector: vec})
		},
	}
}
