// Package embedding provides text embedding clients for OpenAI-compatible
// HTTP endpoints and Google Gemini.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"

	DefaultOpenAIEndpoint = "https://api.openai.com/v1/embeddings"
	DefaultOpenAIModel    = "text-embedding-3-small"
	DefaultGeminiModel    = "text-embedding-004"
	DefaultTimeout        = 15 * time.Second
)

// ErrNotConfigured is returned by New when no provider is selected.
var ErrNotConfigured = errors.New("embedding: no provider configured")

type Config struct {
	Provider     string
	APIKey       string // OpenAI-compatible bearer key
	Endpoint     string
	Model        string
	GeminiAPIKey string
	Timeout      time.Duration
}

type Client interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// New builds the client selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case "", ProviderNone:
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
	}
}

// embeddingInput trims text and replaces an empty result with a single space,
// which every provider accepts.
func embeddingInput(text string) string {
	input := strings.TrimSpace(text)
	if input == "" {
		return " "
	}
	return input
}

// HTTPError is a non-2xx answer from an embedding endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("embedding http %d: %s", e.StatusCode, e.Body)
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// IsTransient reports whether a failed call is worth one more attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatus(httpErr.StatusCode)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// withRetry runs call under a per-attempt timeout and retries it once when
// the first failure is transient and the caller's context is still live.
func withRetry(ctx context.Context, timeout time.Duration, retryDelay time.Duration, call func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		vec, err := call(attemptCtx)
		cancel()
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) {
			break
		}
	}
	return nil, lastErr
}
