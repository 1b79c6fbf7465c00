package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
)

// OpenAICompatConfig configures an OpenAI-wire-compatible backend. The same
// client shape serves OpenAI itself, Groq, and DeepSeek by overriding
// BaseURL; DisplayName distinguishes them in logs and the rate limiter.
type OpenAICompatConfig struct {
	DisplayName string
	APIKey      string
	BaseURL     string
	Model       string
}

// OpenAICompat is an llm.Provider over the official openai-go chat
// completions API, reused for any OpenAI-API-compatible backend.
type OpenAICompat struct {
	client      openai.Client
	model       string
	displayName string
}

func NewOpenAICompat(cfg OpenAICompatConfig) *OpenAICompat {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAICompat{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		displayName: cfg.DisplayName,
	}
}

func (p *OpenAICompat) Name() string { return p.displayName + ":" + p.model }

func (p *OpenAICompat) buildParams(req llm.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Options.Temperature != 0 {
		params.Temperature = openai.Float(req.Options.Temperature)
	}
	if req.Options.TopP != 0 {
		params.TopP = openai.Float(req.Options.TopP)
	}
	return params
}

func (p *OpenAICompat) Invoke(ctx context.Context, req llm.Request, onChunk func(chunk string)) (string, error) {
	params := p.buildParams(req)

	if !req.Options.Streaming {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: no choices returned", llm.ErrMalformedResponse)
		}
		text := resp.Choices[0].Message.Content
		if onChunk != nil {
			onChunk(text)
		}
		return text, nil
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
	}

	return full.String(), nil
}
