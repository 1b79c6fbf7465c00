package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
)

// AnthropicConfig configures the Claude backend.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// Anthropic is an llm.Provider over the official Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (a *Anthropic) Name() string { return "anthropic:" + a.model }

func (a *Anthropic) buildParams(req llm.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Options.Temperature != 0 {
		params.Temperature = anthropic.Float(req.Options.Temperature)
	}
	if req.Options.TopP != 0 {
		params.TopP = anthropic.Float(req.Options.TopP)
	}
	return params
}

func (a *Anthropic) Invoke(ctx context.Context, req llm.Request, onChunk func(chunk string)) (string, error) {
	params := a.buildParams(req)

	if !req.Options.Streaming {
		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
		}
		var full strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				full.WriteString(block.Text)
			}
		}
		if onChunk != nil && full.Len() > 0 {
			onChunk(full.String())
		}
		return full.String(), nil
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	var full strings.Builder
	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		textDelta, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok || textDelta.Text == "" {
			continue
		}
		full.WriteString(textDelta.Text)
		if onChunk != nil {
			onChunk(textDelta.Text)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
	}

	return full.String(), nil
}
