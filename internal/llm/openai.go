package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to OpenAI or any server speaking its wire protocol.
type OpenAIClient struct {
	api            *openai.Client
	model          string
	embeddingModel openai.EmbeddingModel
	opts           Options
}

func NewOpenAIClient(apiKey, model, embeddingModel, baseURL string, opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	em := openai.SmallEmbedding3
	if embeddingModel != "" {
		em = openai.EmbeddingModel(embeddingModel)
	}
	return &OpenAIClient{
		api:            openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: em,
		opts:           opts,
	}
}

func (c *OpenAIClient) request(prompt string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.opts.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.opts.Temperature != nil {
		req.Temperature = *c.opts.Temperature
	}
	return req
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.request(prompt))
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", c.model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed %s: %w", c.embeddingModel, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Data[0].Embedding, nil
}
