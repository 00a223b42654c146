// Package openai adapts the OpenAI Chat Completions and Embeddings APIs to
// the gateway.Gateway interface.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
)

// Options configure the OpenAI gateway adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	EmbeddingModel      string
	Temperature         float64
	MaxCompletionTokens int64
}

// Gateway wraps the OpenAI client behind the generic gateway.Gateway interface.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		EmbeddingModel:      string(openai.EmbeddingModelTextEmbedding3Small),
		Temperature:         0.8,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Generate performs a non-streaming chat completion and returns the text of
// the first choice.
func (g *Gateway) Generate(ctx context.Context, req gateway.Request) (string, error) {
	params := g.buildParams(req)
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", gateway.ClassifyError(fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", core.ErrInferenceMalformed)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Gateway) buildParams(req gateway.Request) openai.ChatCompletionNewParams {
	model := g.opts.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := g.opts.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := g.opts.MaxCompletionTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

// Embed returns the embedding vector for a single text.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(g.opts.EmbeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, gateway.ClassifyError(fmt.Errorf("openai embeddings error: %w", err))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", core.ErrInferenceMalformed)
	}
	return resp.Data[0].Embedding, nil
}
