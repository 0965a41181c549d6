package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client       *genai.Client
	embedContent func(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
	timeout      time.Duration
	retryDelay   time.Duration
}

func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("embedding: GEMINI_API_KEY is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClient{
		client:       client,
		embedContent: client.EmbeddingModel(model).EmbedContent,
		timeout:      timeout,
		retryDelay:   500 * time.Millisecond,
	}, nil
}

func (c *GeminiClient) Name() string { return ProviderGemini }

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	input := genai.Text(embeddingInput(text))
	return withRetry(ctx, c.timeout, c.retryDelay, func(ctx context.Context) ([]float32, error) {
		resp, err := c.embedContent(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, errors.New("gemini embed: response contained no vector")
		}
		return resp.Embedding.Values, nil
	})
}
