package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/platepal/platepal/internal/database"
)

// DirectTransport talks to an OpenAI-compatible provider directly using
// the credential from the local store, bypassing the gateway.
type DirectTransport struct {
	baseURL   string
	model     string
	maxTokens int
	timeout   time.Duration
	store     database.Store
	logger    *slog.Logger
}

// NewDirectTransport creates a direct-mode transport for an
// OpenAI-compatible provider at baseURL.
func NewDirectTransport(baseURL, model string, maxTokens int, timeout time.Duration, store database.Store, logger *slog.Logger) *DirectTransport {
	return &DirectTransport{
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		store:     store,
		logger:    logger.With("component", "direct_transport"),
	}
}

func (t *DirectTransport) Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error) {
	apiKey, err := t.store.GetCredential(ctx, database.CredentialProviderKey)
	if err != nil {
		return "", fmt.Errorf("failed to read provider credential: %w", err)
	}
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = t.baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: t.timeout}
	client := openai.NewClientWithConfig(clientCfg)

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := client.CreateChatCompletion(timeoutCtx, openai.ChatCompletionRequest{
		Model:       t.model,
		Messages:    chatMessages,
		Temperature: temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			t.logger.ErrorContext(ctx, "Provider returned error status",
				"status", apiErr.HTTPStatusCode, "error", err)
			return "", &UpstreamError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		t.logger.ErrorContext(ctx, "Provider request failed", "error", err)
		return "", fmt.Errorf("%w: provider request failed: %v", ErrTransport, err)
	}

	t.logger.DebugContext(ctx, "Provider request completed",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		t.logger.WarnContext(ctx, "Provider returned no completion content, using fallback")
		return noResponseFallback, nil
	}

	return resp.Choices[0].Message.Content, nil
}
