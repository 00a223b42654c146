// Package anthropic adapts the Anthropic Messages API to the gateway.Gateway
// interface. The Messages API has no embeddings endpoint, so Embed reports an
// unsupported operation; pair this adapter with a lexical memory store or an
// embedding-capable gateway.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
)

// Options configures the Anthropic gateway adapter (temperature, model id,
// max tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Gateway wraps the Anthropic Messages API behind the generic gateway.Gateway interface.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic gateway from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.8,
		MaxTokens:   1024,
	}
}

// Generate performs a non-streaming message completion and concatenates the
// text blocks of the response.
func (g *Gateway) Generate(ctx context.Context, req gateway.Request) (string, error) {
	model := g.opts.Model
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}
	temperature := g.opts.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := g.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", gateway.ClassifyError(fmt.Errorf("anthropic api error: %w", err))
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", core.ErrInferenceMalformed)
	}
	return text, nil
}

// Embed is not supported by the Messages API.
func (g *Gateway) Embed(context.Context, string) ([]float64, error) {
	return nil, fmt.Errorf("%w: anthropic gateway does not support embeddings", core.ErrInferenceMalformed)
}
